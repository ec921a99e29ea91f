// Package testloom provides the logger lifecycle core of a test-execution
// platform: an extension registry resolving logger identities to constructible
// plugins, a gated ordered event hub fanning lifecycle events out to every
// initialized logger, and a manager owning registration, source binding and
// the enable/close state machine. Most hosts interact with this package by:
//  1. Creating a Session via New() with the extension registry for the run
//  2. Adding loggers and binding run/discovery event sources via the Manager
//  3. Calling EnableLogging once setup is complete, then closing the Session
//     when the run ends
//
// A Session owns at most one Manager, created lazily on first use; this is
// the per-run replacement for a process-wide singleton. All defaults are safe
// for tests; hosts typically supply a structured logger and an output
// directory.
package testloom

import (
	"sync"

	"github.com/google/uuid"

	"github.com/testloom/testloom/extension"
	"github.com/testloom/testloom/hub"
	"github.com/testloom/testloom/loggers"
	"github.com/testloom/testloom/logging"
)

// Options configures a Session.
type Options struct {
	// Registry resolves logger identities. Defaults to an empty registry,
	// under which every AddLogger fails with extension.ErrNotFound.
	Registry *extension.Registry

	// Logger receives diagnostics from the session's components. Defaults to
	// NoOp.
	Logger logging.Logger

	// OutputDirectory is handed to every plugin through the reserved
	// output-directory parameter.
	OutputDirectory string

	// Metrics, when set, instruments the session's event hub with prometheus
	// counters registered against it.
	Metrics hub.Registerer
}

// Session is the owning context for one test run's logging. It enforces
// at-most-one active Manager per session: the manager is created lazily on
// first access, under the session lock, and torn down by Close.
type Session struct {
	mu      sync.Mutex
	id      string
	opts    Options
	manager *loggers.Manager
	closed  bool
}

// New creates a Session with optional overrides.
func New(optFns ...func(o *Options)) *Session {
	opts := Options{
		Registry: extension.NewRegistry(),
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Session{id: uuid.NewString(), opts: opts}
}

// ID returns the session's correlation identifier.
func (s *Session) ID() string { return s.id }

// Manager returns the session's logger manager, creating it on first call.
// Concurrent first access yields the same instance. After Close the existing
// manager is returned; its operations fail with loggers.ErrClosed.
func (s *Session) Manager() *loggers.Manager {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.manager == nil {
		var hubOpts []hub.Option
		if s.opts.Metrics != nil {
			hubOpts = append(hubOpts, hub.WithMetrics(s.opts.Metrics))
		}
		s.manager = loggers.NewManager(s.opts.Registry, func(o *loggers.Options) {
			o.Logger = s.opts.Logger
			o.Hub = hub.New(hubOpts...)
			o.OutputDirectory = s.opts.OutputDirectory
		})
		s.opts.Logger.Debug("logger manager created", "session_id", s.id)
	}
	return s.manager
}

// Close tears the session down, closing its manager if one was created.
// Idempotent and never fails.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.manager != nil {
		return s.manager.Close()
	}
	return nil
}
