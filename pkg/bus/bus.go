// Package bus provides the typed publish/subscribe channel that carries
// all coordination between wellness components.
//
// No component calls another directly: the mood tracker, heart-rate
// aggregator, gate, counselor, recorder and dashboard all communicate
// through named topics. A single dispatch goroutine processes each event
// to completion before the next, so subscriber state needs no locking
// against other subscribers and events of a topic arrive in emission order.
package bus

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Topic names an event stream on the bus.
type Topic string

// Wellness topics.
const (
	// TopicEmotionChange carries edge-triggered emotion transitions.
	TopicEmotionChange Topic = "emotionchange"

	// TopicHeartRate carries per-sample heart-rate readings with the
	// rolling average.
	TopicHeartRate Topic = "heartrate"

	// TopicStressDetected carries sustained high heart-rate alerts.
	TopicStressDetected Topic = "stressdetected"

	// TopicIntent carries UI intents (e.g. toggle listening). The UI
	// never mutates component state directly; it publishes intents and
	// state owners apply them.
	TopicIntent Topic = "intent"
)

// Event is a single bus notification.
type Event struct {
	Topic   Topic
	At      time.Time
	Payload any
}

// Handler processes one event. Handlers run on the dispatch goroutine
// and must not block; slow work belongs in a goroutine owned by the
// subscriber.
type Handler func(Event)

// Bus is the process-wide event channel.
type Bus struct {
	mu          sync.Mutex
	cond        *sync.Cond
	subs        map[Topic][]Handler
	tapAll      []Handler
	queue       []Event
	dispatching bool
	closed      bool

	logger *slog.Logger
}

// New creates a bus. Call Run in a goroutine to start dispatching.
func New() *Bus {
	b := &Bus{
		subs:   make(map[Topic][]Handler),
		logger: slog.Default().With("component", "bus"),
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Subscribe registers a handler for one topic.
// Subscriptions should be completed before Run starts; the bus does not
// replay events to late subscribers.
func (b *Bus) Subscribe(topic Topic, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], h)
}

// SubscribeAll registers a handler for every topic. Used by the dataset
// recorder and the dashboard fan-out.
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tapAll = append(b.tapAll, h)
}

// Publish enqueues an event stamped with the current time.
// It never blocks and never drops: the queue is unbounded because the
// gating and recording invariants depend on complete, ordered delivery.
func (b *Bus) Publish(topic Topic, payload any) {
	b.PublishAt(topic, time.Now(), payload)
}

// PublishAt enqueues an event with an explicit timestamp.
func (b *Bus) PublishAt(topic Topic, at time.Time, payload any) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.queue = append(b.queue, Event{Topic: topic, At: at, Payload: payload})
	b.mu.Unlock()
	b.cond.Broadcast()
}

// Run dispatches queued events in order until ctx is cancelled.
// This should be called in a goroutine.
func (b *Bus) Run(ctx context.Context) {
	// Wake the loop when the context ends so it can observe closure.
	stop := context.AfterFunc(ctx, func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()
		b.cond.Broadcast()
	})
	defer stop()

	for {
		b.mu.Lock()
		for len(b.queue) == 0 && !b.closed {
			b.cond.Wait()
		}
		if b.closed && len(b.queue) == 0 {
			b.mu.Unlock()
			return
		}
		evt := b.queue[0]
		b.queue = b.queue[1:]
		b.dispatching = true
		handlers := append([]Handler(nil), b.subs[evt.Topic]...)
		handlers = append(handlers, b.tapAll...)
		b.mu.Unlock()

		for _, h := range handlers {
			h(evt)
		}

		b.mu.Lock()
		b.dispatching = false
		b.mu.Unlock()
		b.cond.Broadcast()
	}
}

// Drain blocks until the queue is empty and no event is mid-dispatch.
// Used for graceful shutdown and by tests to make delivery deterministic.
func (b *Bus) Drain() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.queue) > 0 || b.dispatching {
		b.cond.Wait()
	}
}

// Pending returns the number of queued, undelivered events.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}
