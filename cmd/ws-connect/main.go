// Package main implements the WebSocket $connect and $disconnect Lambda.
// Connections are recorded so change notifications can reach them; the
// catalog is public, so no credentials are required.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"recipebook/infrastructure/config"
	"recipebook/infrastructure/di"
)

// ConnectionStore records open WebSocket connections.
type ConnectionStore interface {
	Register(ctx context.Context, connectionID, endpoint string) error
	Remove(ctx context.Context, connectionID string) error
}

type connectHandler struct {
	connections ConnectionStore
	logger      *zap.Logger
}

func (h *connectHandler) handle(ctx context.Context, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	rc := req.RequestContext
	logger := h.logger.With(
		zap.String("connection_id", rc.ConnectionID),
		zap.String("route", rc.RouteKey),
	)

	switch rc.RouteKey {
	case "$disconnect":
		if err := h.connections.Remove(ctx, rc.ConnectionID); err != nil {
			logger.Warn("Failed to remove connection", zap.Error(err))
		}
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
	default:
		endpoint := fmt.Sprintf("%s/%s", rc.DomainName, rc.Stage)
		if err := h.connections.Register(ctx, rc.ConnectionID, endpoint); err != nil {
			logger.Error("Failed to register connection", zap.Error(err))
			return events.APIGatewayProxyResponse{
				StatusCode: http.StatusInternalServerError,
				Body:       `{"error":"internal server error"}`,
			}, nil
		}
		logger.Info("WebSocket connection established", zap.String("endpoint", endpoint))
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
	}
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

	h := &connectHandler{connections: container.Connections, logger: container.Logger}
	lambda.Start(h.handle)
}
