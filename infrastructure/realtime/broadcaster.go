package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"go.uber.org/zap"

	"recipebook/domain/events"
)

// MessageTypeCollectionChanged is the type field of change notifications.
const MessageTypeCollectionChanged = "collection.changed"

// Message is the payload posted to every client.
type Message struct {
	Type        string   `json:"type"`
	Collections []string `json:"collections"`
	Timestamp   int64    `json:"timestamp"`
}

// MessageFor builds the client notification for a change event.
func MessageFor(e events.CollectionChanged) Message {
	return Message{
		Type:        MessageTypeCollectionChanged,
		Collections: e.Collections,
		Timestamp:   e.GetTimestamp().Unix(),
	}
}

// Poster sends data to one connection.
type Poster interface {
	PostToConnection(ctx context.Context, params *apigatewaymanagementapi.PostToConnectionInput, optFns ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error)
}

// PosterFactory returns a Poster for a "<domain>/<stage>" endpoint.
type PosterFactory func(endpoint string) Poster

// NewPosterFactory builds management API clients from cfg.
func NewPosterFactory(cfg aws.Config) PosterFactory {
	return func(endpoint string) Poster {
		return apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
			o.BaseEndpoint = aws.String("https://" + endpoint)
		})
	}
}

// Registry is the connection store the broadcaster reads and prunes.
type Registry interface {
	List(ctx context.Context) ([]Connection, error)
	Remove(ctx context.Context, connectionID string) error
}

// BroadcastResult counts the outcome of one broadcast.
type BroadcastResult struct {
	Sent    int
	Removed int
	Failed  int
}

// Broadcaster posts messages to every registered connection.
type Broadcaster struct {
	registry        Registry
	posters         PosterFactory
	defaultEndpoint string
	logger          *zap.Logger
}

// NewBroadcaster creates a broadcaster. defaultEndpoint is used for
// connections stored without one.
func NewBroadcaster(registry Registry, posters PosterFactory, defaultEndpoint string, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, posters: posters, defaultEndpoint: defaultEndpoint, logger: logger}
}

// Broadcast posts msg to every connection. Connections API Gateway reports
// as gone are removed from the registry.
func (b *Broadcaster) Broadcast(ctx context.Context, msg Message) (BroadcastResult, error) {
	var result BroadcastResult

	data, err := json.Marshal(msg)
	if err != nil {
		return result, fmt.Errorf("failed to marshal message: %w", err)
	}

	conns, err := b.registry.List(ctx)
	if err != nil {
		return result, err
	}

	byEndpoint := make(map[string][]string)
	for _, c := range conns {
		endpoint := c.Endpoint
		if endpoint == "" {
			endpoint = b.defaultEndpoint
		}
		byEndpoint[endpoint] = append(byEndpoint[endpoint], c.ConnectionID)
	}

	for endpoint, ids := range byEndpoint {
		poster := b.posters(endpoint)
		for _, id := range ids {
			_, err := poster.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
				ConnectionId: aws.String(id),
				Data:         data,
			})
			var gone *apigwtypes.GoneException
			switch {
			case err == nil:
				result.Sent++
			case errors.As(err, &gone):
				if rmErr := b.registry.Remove(ctx, id); rmErr != nil {
					b.logger.Warn("Failed to remove stale connection", zap.String("connection_id", id), zap.Error(rmErr))
				}
				result.Removed++
			default:
				b.logger.Warn("Failed to post to connection", zap.String("connection_id", id), zap.Error(err))
				result.Failed++
			}
		}
	}

	b.logger.Info("Broadcast complete",
		zap.Int("sent", result.Sent),
		zap.Int("removed", result.Removed),
		zap.Int("failed", result.Failed),
	)

	if result.Failed > 0 && result.Sent == 0 {
		return result, errors.New("all message sends failed")
	}
	return result, nil
}
