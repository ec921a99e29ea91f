package hub

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/testloom/testloom/events"
)

var (
	// ErrClosed is returned when an event is raised on a closed hub.
	ErrClosed = fmt.Errorf("event hub closed")
)

// Handler is the set of callbacks a logger provides to receive lifecycle
// events. Implementations must tolerate being called from any goroutine;
// calls are serialized by the hub and never interleave.
type Handler interface {
	// HandleMessage receives run and discovery messages.
	HandleMessage(m events.Message)

	// HandleTestResult receives one completed test result.
	HandleTestResult(r events.TestResult)

	// HandleRunComplete receives the terminal run event.
	HandleRunComplete(c events.RunComplete)
}

// Sink is the subscribe-only surface of the hub handed to logger plugins
// during initialization.
type Sink interface {
	Subscribe(h Handler) *Subscription
}

// Subscription is the opaque handle returned by Subscribe. Close releases the
// registration; closing twice is a no-op.
type Subscription struct {
	id   string
	once sync.Once
	hub  *Hub
}

// Close releases the subscription. Idempotent.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.unsubscribe(s.id) })
}

type eventKind int

const (
	kindMessage eventKind = iota
	kindTestResult
	kindRunComplete
)

func (k eventKind) String() string {
	switch k {
	case kindMessage:
		return "message"
	case kindTestResult:
		return "test_result"
	default:
		return "run_complete"
	}
}

// pending holds one buffered event; kind selects the populated field.
type pending struct {
	kind     eventKind
	message  events.Message
	result   events.TestResult
	complete events.RunComplete
}

type subscriber struct {
	id      string
	handler Handler
}

// Hub is the event dispatcher. A new hub starts in buffering mode: raises are
// queued until Enable switches it to live delivery. The single mutex is held
// across delivery, so two concurrent raises never interleave their
// per-subscriber calls and subscription never observes a partial delivery.
type Hub struct {
	mu      sync.Mutex
	subs    []subscriber
	buffer  []pending
	enabled bool
	closed  bool
	metrics *metrics
}

// Option configures a Hub.
type Option func(*Hub)

// WithMetrics instruments the hub with prometheus counters registered against
// reg.
func WithMetrics(reg Registerer) Option {
	return func(h *Hub) { h.metrics = newMetrics(reg) }
}

// New constructs a hub in buffering mode with no subscribers.
func New(opts ...Option) *Hub {
	h := &Hub{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a handler and returns its subscription handle.
// Subscribing is valid at any point in the hub's life, including after Enable;
// a late subscriber does not receive events that were already flushed.
func (h *Hub) Subscribe(handler Handler) *Subscription {
	id := uuid.NewString()
	h.mu.Lock()
	h.subs = append(h.subs, subscriber{id: id, handler: handler})
	h.metrics.setSubscribers(len(h.subs))
	h.mu.Unlock()
	return &Subscription{id: id, hub: h}
}

func (h *Hub) unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.subs {
		if s.id == id {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			break
		}
	}
	h.metrics.setSubscribers(len(h.subs))
}

// Enable performs the one-shot transition from buffering to live delivery.
// All buffered events are flushed, in raise order, to the subscribers present
// now; the flush happens once, so later subscribers never see them. Calling
// Enable again, or on a closed hub, is a no-op.
func (h *Hub) Enable() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.enabled || h.closed {
		return
	}
	for _, p := range h.buffer {
		h.deliverLocked(p)
	}
	h.buffer = nil
	h.enabled = true
}

// RaiseMessage dispatches a run or discovery message.
func (h *Hub) RaiseMessage(m events.Message) error {
	return h.raise(pending{kind: kindMessage, message: m})
}

// RaiseTestResult dispatches one completed test result.
func (h *Hub) RaiseTestResult(r events.TestResult) error {
	return h.raise(pending{kind: kindTestResult, result: r})
}

// CompleteRun dispatches the terminal run event.
func (h *Hub) CompleteRun(c events.RunComplete) error {
	return h.raise(pending{kind: kindRunComplete, complete: c})
}

func (h *Hub) raise(p pending) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		h.metrics.dropped()
		return ErrClosed
	}
	if !h.enabled {
		h.buffer = append(h.buffer, p)
		h.metrics.buffered()
		return nil
	}
	h.deliverLocked(p)
	return nil
}

// deliverLocked fans one event out to every subscriber in subscription order.
// Called with the mutex held; a blocking handler stalls the caller and any
// concurrent raise until it returns.
func (h *Hub) deliverLocked(p pending) {
	for _, s := range h.subs {
		switch p.kind {
		case kindMessage:
			s.handler.HandleMessage(p.message)
		case kindTestResult:
			s.handler.HandleTestResult(p.result)
		case kindRunComplete:
			s.handler.HandleRunComplete(p.complete)
		}
	}
	h.metrics.delivered(p.kind, len(h.subs))
}

// Close shuts the hub down: pending buffered events are discarded, the
// subscriber list is cleared and every subsequent raise returns ErrClosed.
// Idempotent.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.buffer = nil
	h.subs = nil
	h.metrics.setSubscribers(0)
}
