package di

import (
	"go.uber.org/zap"

	"recipebook/application/commands/bus"
	"recipebook/application/ports"
	querybus "recipebook/application/queries/bus"
	"recipebook/infrastructure/config"
	"recipebook/infrastructure/realtime"
	"recipebook/pkg/auth"
	"recipebook/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Store       ports.Store
	Publisher   ports.EventPublisher
	Cache       *InMemoryCache
	CommandBus  *bus.CommandBus
	QueryBus    *querybus.QueryBus
	Authorizer  ports.Authorizer
	RateLimiter auth.RateLimiter
	Collector   *observability.Collector
	CloudWatch  *observability.CloudWatchMetrics
	Tracer      *observability.Tracer
}

// BroadcastContainer holds what the WebSocket lambdas need
type BroadcastContainer struct {
	Logger      *zap.Logger
	Connections *realtime.ConnectionRegistry
	Broadcaster *realtime.Broadcaster
}
