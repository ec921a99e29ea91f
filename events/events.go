package events

import "time"

// MessageLevel indicates the severity of a run or discovery message.
type MessageLevel int

const (
	// LevelInfo is an informational message.
	LevelInfo MessageLevel = iota
	// LevelWarning is a warning message.
	LevelWarning
	// LevelError is an error message.
	LevelError
)

// String returns the string representation of the message level.
func (l MessageLevel) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Message is a free-form diagnostic emitted during a run or a discovery pass.
// Run and discovery messages share this type and the same delivery channel.
type Message struct {
	Level MessageLevel
	Text  string
}

// TestOutcome is the terminal state of a single test.
type TestOutcome int

const (
	// OutcomeNone means the test produced no definite outcome.
	OutcomeNone TestOutcome = iota
	// OutcomePassed means the test passed.
	OutcomePassed
	// OutcomeFailed means the test failed.
	OutcomeFailed
	// OutcomeSkipped means the test was not executed.
	OutcomeSkipped
)

// String returns the string representation of the outcome.
func (o TestOutcome) String() string {
	switch o {
	case OutcomePassed:
		return "passed"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "none"
	}
}

// TestResult captures the completion record of a single executed test.
// After emission it should be treated as immutable.
type TestResult struct {
	TestName     string
	Outcome      TestOutcome
	Duration     time.Duration
	ErrorMessage string
}

// RunStatistics aggregates result counts for a run in progress or completed.
type RunStatistics struct {
	ExecutedTests int64
	OutcomeCounts map[TestOutcome]int64
}

// StatsChange notifies that new results completed since the previous
// notification. NewResults preserves completion order.
type StatsChange struct {
	NewResults []TestResult
	Stats      *RunStatistics
}

// Attachment is a single file produced during a run.
type Attachment struct {
	Path        string
	Description string
}

// AttachmentSet groups the attachments produced by one component, keyed by
// the component's URI.
type AttachmentSet struct {
	URI         string
	DisplayName string
	Attachments []Attachment
}

// RunComplete is the single terminal event of a run.
type RunComplete struct {
	Stats          *RunStatistics
	Canceled       bool
	Aborted        bool
	Err            error
	AttachmentSets []AttachmentSet
	Elapsed        time.Duration
}

// DataCollectionMessage is a diagnostic raised by a data collector attached to
// the run. SourceURI is empty when the message did not originate from a
// specific collector.
type DataCollectionMessage struct {
	SourceURI    string
	FriendlyName string
	Level        MessageLevel
	Text         string
}
