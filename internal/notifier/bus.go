// Package notifier is the process-wide notification bridge: producers call
// Notify, the durable record is written, and the event is republished on an
// in-process bus the connection layer subscribes to. Producers never hold a
// reference to a live connection.
package notifier

import (
	"sync"
	"time"
)

// Event is the payload republished after a notification record is persisted.
type Event struct {
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// Bus is a concurrency-safe publish/subscribe fan-out. Subscribers are
// snapshotted before invocation, so subscribe/unsubscribe during a publish
// never blocks or deadlocks other publishers.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Event)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Event))}
}

// Subscribe registers a handler and returns its cancel function.
func (b *Bus) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers the event to every current subscriber, synchronously and
// outside the lock.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	handlers := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(evt)
	}
}
