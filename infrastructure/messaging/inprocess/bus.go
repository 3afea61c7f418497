// Package inprocess delivers domain events to subscribers in the same
// process.
package inprocess

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"recipebook/application/ports"
	"recipebook/domain/events"
)

// Handler receives a published event.
type Handler func(ctx context.Context, event events.DomainEvent)

// Bus fans events out to subscribers synchronously.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

var _ ports.EventPublisher = (*Bus)(nil)

// NewBus creates a bus with no subscribers
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{handlers: make(map[string][]Handler), logger: logger}
}

// Subscribe registers handler for eventType. An empty eventType receives
// every event.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish calls every matching handler in subscription order.
func (b *Bus) Publish(ctx context.Context, domainEvents ...events.DomainEvent) error {
	for _, event := range domainEvents {
		b.mu.RLock()
		targets := append(append([]Handler(nil), b.handlers[event.GetEventType()]...), b.handlers[""]...)
		b.mu.RUnlock()

		b.logger.Debug("Dispatching event",
			zap.String("event_type", event.GetEventType()),
			zap.Int("subscribers", len(targets)),
		)
		for _, h := range targets {
			h(ctx, event)
		}
	}
	return nil
}
