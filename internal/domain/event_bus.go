package domain

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// EventBus defines the interface for publishing domain events.
// This interface allows the domain layer to publish events without depending on infrastructure.
type EventBus interface {
	// Publish delivers the event to every currently-registered subscriber,
	// synchronously and in registration order.
	Publish(ctx context.Context, event DomainEvent) error

	// Subscribe registers a handler and returns a function that removes it.
	Subscribe(handler func(DomainEvent)) (unsubscribe func())
}

// subscription pairs a handler with a registration token so unsubscribe is
// stable even when earlier handlers are removed.
type subscription struct {
	id      uint64
	handler func(DomainEvent)
}

// InMemoryEventBus is a process-wide fan-out bus used when the in-memory
// repository backs the store: independently-constructed read views subscribe
// to learn about mutations made through other views. With a durable backend,
// nothing subscribes and the bus is inert.
//
// Delivery is synchronous and ordered. A panicking subscriber is recovered
// and logged so it cannot prevent later subscribers from running.
type InMemoryEventBus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
	logger *zap.Logger
}

// NewInMemoryEventBus creates a new event bus. Pass nil to disable logging.
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{logger: logger}
}

// Subscribe registers a handler and returns its unsubscribe function.
func (b *InMemoryEventBus) Subscribe(handler func(DomainEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, sub := range b.subs {
			if sub.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish invokes every registered handler with the event.
func (b *InMemoryEventBus) Publish(ctx context.Context, event DomainEvent) error {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, sub := range subs {
		b.deliver(sub, event)
	}
	return nil
}

// deliver runs one handler, isolating panics so the fan-out continues.
func (b *InMemoryEventBus) deliver(sub subscription, event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event subscriber panicked",
				zap.String("event_type", event.EventType()),
				zap.String("aggregate_id", event.AggregateID()),
				zap.Any("panic", r),
			)
		}
	}()
	sub.handler(event)
}

// SubscriberCount returns the number of registered handlers (for tests).
func (b *InMemoryEventBus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
