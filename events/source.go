package events

import (
	"sync"

	"github.com/google/uuid"
)

// Subscription is the opaque handle returned by a Subscribe call. Closing it
// releases the registration; closing more than once is a no-op. Rebinding a
// handler always requires releasing the prior handle first.
type Subscription struct {
	id      string
	once    sync.Once
	release func(id string)
}

// Close releases the subscription. Idempotent.
func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.release != nil {
			s.release(s.id)
		}
	})
}

// RunSource is the contract a run-event producer satisfies. Each channel is
// independent; handlers are invoked synchronously on the producer's stack in
// subscription order.
type RunSource interface {
	SubscribeMessage(fn func(Message)) *Subscription
	SubscribeStatsChange(fn func(StatsChange)) *Subscription
	SubscribeComplete(fn func(RunComplete)) *Subscription
	SubscribeDataCollectionMessage(fn func(DataCollectionMessage)) *Subscription
}

// DiscoverySource is the contract a discovery-event producer satisfies.
type DiscoverySource interface {
	SubscribeMessage(fn func(Message)) *Subscription
}

// handlerList is an ordered, mutex-guarded registry of handlers of type T.
type handlerList[T any] struct {
	mu       sync.Mutex
	handlers []handlerEntry[T]
}

type handlerEntry[T any] struct {
	id string
	fn func(T)
}

func (l *handlerList[T]) subscribe(fn func(T)) *Subscription {
	id := uuid.NewString()
	l.mu.Lock()
	l.handlers = append(l.handlers, handlerEntry[T]{id: id, fn: fn})
	l.mu.Unlock()
	return &Subscription{id: id, release: l.remove}
}

func (l *handlerList[T]) remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, h := range l.handlers {
		if h.id == id {
			l.handlers = append(l.handlers[:i], l.handlers[i+1:]...)
			return
		}
	}
}

// emit invokes every handler in subscription order. The snapshot is taken
// under the lock so a concurrent subscribe never observes a partial delivery.
func (l *handlerList[T]) emit(ev T) {
	l.mu.Lock()
	snapshot := make([]handlerEntry[T], len(l.handlers))
	copy(snapshot, l.handlers)
	l.mu.Unlock()
	for _, h := range snapshot {
		h.fn(ev)
	}
}

// RunEmitter is a producer-side RunSource implementation. A test engine embeds
// one and calls the Emit* methods as the run progresses.
type RunEmitter struct {
	messages    handlerList[Message]
	stats       handlerList[StatsChange]
	complete    handlerList[RunComplete]
	collections handlerList[DataCollectionMessage]
}

// NewRunEmitter constructs an empty RunEmitter.
func NewRunEmitter() *RunEmitter { return &RunEmitter{} }

// SubscribeMessage registers a handler for run messages.
func (e *RunEmitter) SubscribeMessage(fn func(Message)) *Subscription {
	return e.messages.subscribe(fn)
}

// SubscribeStatsChange registers a handler for stats-change notifications.
func (e *RunEmitter) SubscribeStatsChange(fn func(StatsChange)) *Subscription {
	return e.stats.subscribe(fn)
}

// SubscribeComplete registers a handler for the run-complete event.
func (e *RunEmitter) SubscribeComplete(fn func(RunComplete)) *Subscription {
	return e.complete.subscribe(fn)
}

// SubscribeDataCollectionMessage registers a handler for collector messages.
func (e *RunEmitter) SubscribeDataCollectionMessage(fn func(DataCollectionMessage)) *Subscription {
	return e.collections.subscribe(fn)
}

// EmitMessage delivers a run message to all subscribed handlers.
func (e *RunEmitter) EmitMessage(m Message) { e.messages.emit(m) }

// EmitStatsChange delivers a stats-change notification to all subscribed handlers.
func (e *RunEmitter) EmitStatsChange(c StatsChange) { e.stats.emit(c) }

// EmitComplete delivers the run-complete event to all subscribed handlers.
func (e *RunEmitter) EmitComplete(c RunComplete) { e.complete.emit(c) }

// EmitDataCollectionMessage delivers a collector message to all subscribed handlers.
func (e *RunEmitter) EmitDataCollectionMessage(m DataCollectionMessage) { e.collections.emit(m) }

// DiscoveryEmitter is a producer-side DiscoverySource implementation.
type DiscoveryEmitter struct {
	messages handlerList[Message]
}

// NewDiscoveryEmitter constructs an empty DiscoveryEmitter.
func NewDiscoveryEmitter() *DiscoveryEmitter { return &DiscoveryEmitter{} }

// SubscribeMessage registers a handler for discovery messages.
func (e *DiscoveryEmitter) SubscribeMessage(fn func(Message)) *Subscription {
	return e.messages.subscribe(fn)
}

// EmitMessage delivers a discovery message to all subscribed handlers.
func (e *DiscoveryEmitter) EmitMessage(m Message) { e.messages.emit(m) }
