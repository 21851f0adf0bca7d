package shared

import (
	"context"
	"sync"
)

// EventHandler handles a single domain event.
type EventHandler func(ctx context.Context, event DomainEvent) error

// InMemoryEventBus is a synchronous in-process event bus.
// Handlers run in registration order; a failing handler does not stop
// delivery to the remaining handlers.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
	onError  func(event DomainEvent, err error)
}

// NewInMemoryEventBus creates a new in-memory event bus.
// onError is invoked for every handler failure and may be nil.
func NewInMemoryEventBus(onError func(event DomainEvent, err error)) *InMemoryEventBus {
	return &InMemoryEventBus{
		handlers: make(map[string][]EventHandler),
		onError:  onError,
	}
}

// Subscribe registers a handler for the given event type.
func (b *InMemoryEventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish delivers events to all subscribed handlers.
// Handler errors are reported through onError and never propagated.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...DomainEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, event := range events {
		for _, handler := range b.handlers[event.EventType()] {
			if err := handler(ctx, event); err != nil && b.onError != nil {
				b.onError(event, err)
			}
		}
	}
}

var _ EventPublisher = (*InMemoryEventBus)(nil)
