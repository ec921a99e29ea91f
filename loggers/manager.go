package loggers

import (
	"fmt"
	"strings"
	"sync"

	"github.com/testloom/testloom/events"
	"github.com/testloom/testloom/extension"
	"github.com/testloom/testloom/hub"
	"github.com/testloom/testloom/logging"
)

var (
	// ErrClosed is returned by every public operation invoked after Close,
	// except Close itself, which is always a no-op once closed.
	ErrClosed = fmt.Errorf("logger manager closed")

	// ErrNoIdentity is returned by AddLogger when the identity is empty.
	ErrNoIdentity = fmt.Errorf("logger identity is empty")

	// ErrNilSource is returned when a nil event source is registered or
	// unregistered.
	ErrNilSource = fmt.Errorf("event source is nil")
)

// Message templates for data-collection diagnostics forwarded as run
// messages. Localization of the template text is a hosting concern; the
// selection between the two is not.
const (
	frameworkMessageTemplate = "Data collection framework message"
	collectorMessageTemplate = "Data collector message"
)

// runBinding holds the live subscriptions tying a run source's callback
// channels to the manager's forwarding handlers.
type runBinding struct {
	source events.RunSource
	subs   []*events.Subscription
}

type discoveryBinding struct {
	source events.DiscoverySource
	subs   []*events.Subscription
}

// Options configures a Manager.
type Options struct {
	// Logger receives the manager's own diagnostics. Defaults to NoOp.
	Logger logging.Logger

	// Hub is the event hub the manager dispatches through. A fresh hub is
	// created when nil.
	Hub *hub.Hub

	// OutputDirectory is the default value of the reserved output-directory
	// parameter handed to every plugin.
	OutputDirectory string
}

// Manager owns logger registration and the logging lifecycle of one test
// session. An identity is initialized at most once per manager; whether the
// attempt succeeded or failed, it is never attempted again. All state is
// guarded by a single mutex; event dispatch itself is serialized by the hub.
type Manager struct {
	mu        sync.Mutex
	registry  *extension.Registry
	hub       *hub.Hub
	log       logging.Logger
	outputDir string

	attempted map[string]struct{}
	run       *runBinding
	discovery *discoveryBinding
	closed    bool
}

// NewManager constructs a manager resolving extensions through registry.
func NewManager(registry *extension.Registry, optFns ...func(*Options)) *Manager {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Hub == nil {
		opts.Hub = hub.New()
	}
	return &Manager{
		registry:  registry,
		hub:       opts.Hub,
		log:       opts.Logger,
		outputDir: opts.OutputDirectory,
		attempted: make(map[string]struct{}),
	}
}

// Hub exposes the manager's event hub, e.g. for handing its Sink surface to
// components that subscribe directly.
func (m *Manager) Hub() *hub.Hub { return m.hub }

// AddLogger resolves identity through the extension registry, constructs the
// plugin and initializes it against the event hub. Adding an identity that
// was already attempted (case-insensitive) returns nil without
// re-initializing. An unresolvable identity returns an error wrapping
// extension.ErrNotFound and leaves the attempted set untouched. A plugin
// whose construction or initialization fails does not fail the call: the
// failure is converted to an error-severity message on the hub so surviving
// loggers observe it, and the identity is still marked attempted so it is
// never retried.
func (m *Manager) AddLogger(identity string, params map[string]string) error {
	if identity == "" {
		return ErrNoIdentity
	}
	key, err := extension.CanonicalIdentity(identity)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if _, done := m.attempted[key]; done {
		return nil
	}
	desc, ok := m.registry.Resolve(identity)
	if !ok {
		return fmt.Errorf("resolve logger %q: %w", identity, extension.ErrNotFound)
	}

	m.attempted[key] = struct{}{}
	merged := NewParams(m.outputDir, params)
	if err := initialize(desc, m.hub, merged); err != nil {
		m.log.Error("logger initialization failed", "identity", desc.Identity, "error", err)
		failure := events.Message{
			Level: events.LevelError,
			Text:  fmt.Sprintf("Logger %s failed to initialize: %v", desc.Identity, err),
		}
		if raiseErr := m.hub.RaiseMessage(failure); raiseErr != nil {
			m.log.Debug("dropping initialization failure message", "error", raiseErr)
		}
		return nil
	}
	m.log.Info("logger initialized", "identity", desc.Identity, "friendlyName", desc.FriendlyName)
	return nil
}

func initialize(desc extension.Descriptor, sink hub.Sink, params Params) error {
	plugin := desc.New()
	if plugin == nil {
		return fmt.Errorf("factory for %s returned no plugin", desc.Identity)
	}
	return plugin.Initialize(sink, params)
}

// ResolveIdentityByFriendlyName maps a human-readable alias to its identity,
// matching case-insensitively. Returns false on an unknown alias or after
// Close.
func (m *Manager) ResolveIdentityByFriendlyName(name string) (string, bool) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return "", false
	}
	for _, fn := range m.registry.FriendlyNames() {
		if strings.EqualFold(fn.Name, name) {
			return fn.Identity, true
		}
	}
	return "", false
}

// RegisterRunSource subscribes the manager's forwarding handlers to all four
// of the source's callback channels.
//
// Registering a new source while a previous one is still bound replaces the
// stored binding without releasing the previous subscriptions, leaving the
// old source's callbacks wired. Callers must UnregisterRunSource the previous
// source first.
func (m *Manager) RegisterRunSource(src events.RunSource) error {
	if src == nil {
		return ErrNilSource
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.run = &runBinding{
		source: src,
		subs: []*events.Subscription{
			src.SubscribeMessage(m.forwardMessage),
			src.SubscribeStatsChange(m.forwardStatsChange),
			src.SubscribeComplete(m.forwardRunComplete),
			src.SubscribeDataCollectionMessage(m.forwardDataCollectionMessage),
		},
	}
	m.log.Debug("run source registered")
	return nil
}

// UnregisterRunSource releases the stored run binding when it belongs to the
// given source. A source other than the currently bound one is a no-op, since
// the manager only holds handles for the binding it stored.
func (m *Manager) UnregisterRunSource(src events.RunSource) error {
	if src == nil {
		return ErrNilSource
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.run != nil && m.run.source == src {
		closeSubs(m.run.subs)
		m.run = nil
		m.log.Debug("run source unregistered")
	}
	return nil
}

// RegisterDiscoverySource subscribes the manager's forwarding handler to the
// source's message channel. The rebinding caveat on RegisterRunSource applies
// here as well.
func (m *Manager) RegisterDiscoverySource(src events.DiscoverySource) error {
	if src == nil {
		return ErrNilSource
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.discovery = &discoveryBinding{
		source: src,
		subs:   []*events.Subscription{src.SubscribeMessage(m.forwardMessage)},
	}
	m.log.Debug("discovery source registered")
	return nil
}

// UnregisterDiscoverySource releases the stored discovery binding when it
// belongs to the given source.
func (m *Manager) UnregisterDiscoverySource(src events.DiscoverySource) error {
	if src == nil {
		return ErrNilSource
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.discovery != nil && m.discovery.source == src {
		closeSubs(m.discovery.subs)
		m.discovery = nil
		m.log.Debug("discovery source unregistered")
	}
	return nil
}

// EnableLogging switches the hub from buffering to live delivery, flushing
// everything raised so far. Safe to call more than once.
func (m *Manager) EnableLogging() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.hub.Enable()
	m.log.Debug("logging enabled")
	return nil
}

// SendRunError feeds an out-of-band error message into the same path as
// source-originated run messages, so failures raised outside the run pipeline
// reach loggers identically.
func (m *Manager) SendRunError(msg events.Message) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.mu.Unlock()
	return m.hub.RaiseMessage(msg)
}

// Close tears the manager down: stored source bindings are released, the hub
// is closed, and every later public operation returns ErrClosed. Idempotent
// and never fails.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if m.run != nil {
		closeSubs(m.run.subs)
		m.run = nil
	}
	if m.discovery != nil {
		closeSubs(m.discovery.subs)
		m.discovery = nil
	}
	m.hub.Close()
	m.log.Debug("logger manager closed")
	return nil
}

func closeSubs(subs []*events.Subscription) {
	for _, s := range subs {
		s.Close()
	}
}

// forwardMessage relays run and discovery messages; both kinds share the
// hub's message channel.
func (m *Manager) forwardMessage(msg events.Message) {
	if err := m.hub.RaiseMessage(msg); err != nil {
		m.log.Debug("dropping message", "error", err)
	}
}

// forwardStatsChange fans a batch of newly completed results out as one
// test-result event each, preserving the batch's order.
func (m *Manager) forwardStatsChange(change events.StatsChange) {
	for _, result := range change.NewResults {
		if err := m.hub.RaiseTestResult(result); err != nil {
			m.log.Debug("dropping test result", "test", result.TestName, "error", err)
			return
		}
	}
}

func (m *Manager) forwardRunComplete(complete events.RunComplete) {
	if err := m.hub.CompleteRun(complete); err != nil {
		m.log.Debug("dropping run completion", "error", err)
	}
}

// forwardDataCollectionMessage renders a collector diagnostic as a run
// message: the generic framework template when no collector URI is present,
// the per-collector template naming the collector otherwise.
func (m *Manager) forwardDataCollectionMessage(msg events.DataCollectionMessage) {
	var text string
	if msg.SourceURI == "" {
		text = fmt.Sprintf("%s: %s", frameworkMessageTemplate, msg.Text)
	} else {
		text = fmt.Sprintf("%s: [%s] %s", collectorMessageTemplate, msg.FriendlyName, msg.Text)
	}
	m.forwardMessage(events.Message{Level: msg.Level, Text: text})
}
