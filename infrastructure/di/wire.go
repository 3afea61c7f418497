//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"recipebook/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideStore,
	ProvideEventPublisher,
	ProvideChangeNotifier,
	ProvideInMemoryCache,
	ProvideTracer,
	ProvideCollector,
	ProvideCloudWatchMetrics,
	ProvideMetrics,
	ProvideAuthorizer,
	ProvideRateLimiter,
	ProvideNormalizer,
	ProvideOrphanDetector,
	ProvideCatalog,
	ProvideSuggester,
	ProvideImporter,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// BroadcastSet wires the WebSocket lambdas
var BroadcastSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideConnectionRegistry,
	ProvideBroadcaster,
	wire.Struct(new(BroadcastContainer), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}

// InitializeBroadcaster wires the WebSocket registry and broadcaster
func InitializeBroadcaster(ctx context.Context, cfg *config.Config) (*BroadcastContainer, error) {
	wire.Build(BroadcastSet)
	return nil, nil
}
