package ports

import (
	"context"

	"recipebook/domain/events"
)

// EventPublisher delivers domain events to interested readers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...events.DomainEvent) error
}

// Authorizer decides whether a caller-supplied secret grants admin access.
type Authorizer interface {
	Authorize(ctx context.Context, secret string) error
}

// Metrics records counters and timings, labelled by operation name.
type Metrics interface {
	StartTimer(metric, label string) Timer
	Increment(metric, label string)
}

// Timer measures one operation.
type Timer interface {
	Stop()
}
