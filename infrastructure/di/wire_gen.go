// Injector bodies matching the provider sets in wire.go.

//go:build !wireinject
// +build !wireinject

package di

import (
	"context"

	"recipebook/infrastructure/config"
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	awsConfig, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	client := ProvideDynamoDBClient(awsConfig)
	store, cleanup, err := ProvideStore(cfg, client, logger)
	if err != nil {
		return nil, nil, err
	}
	eventPublisher, cleanup2, err := ProvideEventPublisher(cfg, awsConfig, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	changeNotifier := ProvideChangeNotifier(eventPublisher, logger)
	inMemoryCache := ProvideInMemoryCache()
	tracer := ProvideTracer(cfg)
	collector := ProvideCollector()
	cloudWatchMetrics := ProvideCloudWatchMetrics(cfg, awsConfig, logger)
	metrics := ProvideMetrics(collector, cloudWatchMetrics)
	authorizer := ProvideAuthorizer(cfg)
	rateLimiter := ProvideRateLimiter(cfg, client)
	normalizer := ProvideNormalizer(store, logger)
	orphanDetector := ProvideOrphanDetector(store, logger)
	catalog := ProvideCatalog(store)
	suggester := ProvideSuggester(catalog)
	importer := ProvideImporter(normalizer, store, logger)
	commandBus, err := ProvideCommandBus(cfg, store, normalizer, orphanDetector, importer, authorizer, inMemoryCache, changeNotifier, tracer, metrics, logger)
	if err != nil {
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	queryBus, err := ProvideQueryBus(cfg, catalog, suggester, orphanDetector, inMemoryCache, tracer, metrics)
	if err != nil {
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	container := &Container{
		Config:      cfg,
		Logger:      logger,
		Store:       store,
		Publisher:   eventPublisher,
		Cache:       inMemoryCache,
		CommandBus:  commandBus,
		QueryBus:    queryBus,
		Authorizer:  authorizer,
		RateLimiter: rateLimiter,
		Collector:   collector,
		CloudWatch:  cloudWatchMetrics,
		Tracer:      tracer,
	}
	return container, func() {
		cleanup2()
		cleanup()
	}, nil
}

// InitializeBroadcaster wires the WebSocket registry and broadcaster
func InitializeBroadcaster(ctx context.Context, cfg *config.Config) (*BroadcastContainer, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	awsConfig, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client := ProvideDynamoDBClient(awsConfig)
	connectionRegistry := ProvideConnectionRegistry(cfg, client, logger)
	broadcaster := ProvideBroadcaster(cfg, connectionRegistry, awsConfig, logger)
	return &BroadcastContainer{
		Logger:      logger,
		Connections: connectionRegistry,
		Broadcaster: broadcaster,
	}, nil
}
