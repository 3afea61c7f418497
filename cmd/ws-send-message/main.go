// Package main implements the change broadcasting Lambda. It consumes
// collection.changed events from EventBridge and pushes a notification to
// every open WebSocket connection.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"recipebook/domain/events"
	"recipebook/infrastructure/config"
	"recipebook/infrastructure/di"
	"recipebook/infrastructure/realtime"
)

// Broadcaster fans one message out to every connection.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg realtime.Message) (realtime.BroadcastResult, error)
}

type sendHandler struct {
	broadcaster Broadcaster
	logger      *zap.Logger
}

// parseChange decodes the event detail. Events of any other type are
// ignored and reported as not ok.
func parseChange(event awsevents.CloudWatchEvent) (events.CollectionChanged, bool, error) {
	var change events.CollectionChanged
	if event.DetailType != events.EventTypeCollectionChanged {
		return change, false, nil
	}
	if err := json.Unmarshal(event.Detail, &change); err != nil {
		return change, false, fmt.Errorf("failed to decode event detail: %w", err)
	}
	if len(change.Collections) == 0 {
		return change, false, nil
	}
	return change, true, nil
}

func (h *sendHandler) handle(ctx context.Context, event awsevents.CloudWatchEvent) error {
	change, ok, err := parseChange(event)
	if err != nil {
		// Redelivery cannot fix a malformed event.
		h.logger.Error("Dropping malformed event", zap.String("event_id", event.ID), zap.Error(err))
		return nil
	}
	if !ok {
		h.logger.Debug("Ignoring event", zap.String("detail_type", event.DetailType))
		return nil
	}

	result, err := h.broadcaster.Broadcast(ctx, realtime.MessageFor(change))
	if err != nil {
		return err
	}
	h.logger.Info("Change broadcast",
		zap.Strings("collections", change.Collections),
		zap.String("operation", change.Operation),
		zap.Int("sent", result.Sent),
	)
	return nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeBroadcaster(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	h := &sendHandler{broadcaster: container.Broadcaster, logger: container.Logger}
	lambda.Start(h.handle)
}
