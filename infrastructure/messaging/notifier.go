// Package messaging turns committed writes into CollectionChanged events.
package messaging

import (
	"context"
	"time"

	"go.uber.org/zap"

	"recipebook/application/ports"
	"recipebook/domain/events"
)

// ChangeNotifier publishes a CollectionChanged event for every successful
// write. Publication failures are logged and never reach the writer.
type ChangeNotifier struct {
	publisher ports.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewChangeNotifier creates a notifier over publisher
func NewChangeNotifier(publisher ports.EventPublisher, logger *zap.Logger) *ChangeNotifier {
	return &ChangeNotifier{publisher: publisher, logger: logger, now: time.Now}
}

// CollectionsChanged implements bus.ChangeNotifier
func (n *ChangeNotifier) CollectionsChanged(ctx context.Context, operation string, collections []string) {
	if len(collections) == 0 {
		return
	}
	event := events.NewCollectionChanged(operation, collections, n.now().UTC())
	if err := n.publisher.Publish(ctx, event); err != nil {
		n.logger.Warn("Failed to publish collection change",
			zap.String("operation", operation),
			zap.Strings("collections", collections),
			zap.Error(err),
		)
	}
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

// Publish implements ports.EventPublisher
func (NoopPublisher) Publish(context.Context, ...events.DomainEvent) error { return nil }
