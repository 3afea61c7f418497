package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"recipebook/application/commands/bus"
	commandhandlers "recipebook/application/commands/handlers"
	"recipebook/application/ports"
	querybus "recipebook/application/queries/bus"
	queryhandlers "recipebook/application/queries/handlers"
	"recipebook/application/services"
	"recipebook/infrastructure/config"
	"recipebook/infrastructure/messaging"
	"recipebook/infrastructure/messaging/eventbridge"
	"recipebook/infrastructure/messaging/inprocess"
	"recipebook/infrastructure/messaging/natsbus"
	"recipebook/infrastructure/persistence/dynamodb"
	"recipebook/infrastructure/persistence/memory"
	"recipebook/infrastructure/persistence/sqlite"
	"recipebook/infrastructure/realtime"
	"recipebook/pkg/auth"
	"recipebook/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	return observability.NewLogger(cfg.Environment, cfg.LogLevel)
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideStore opens the configured storage driver
func ProvideStore(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) (ports.Store, func(), error) {
	var store ports.Store
	switch cfg.StorageDriver {
	case config.StorageDynamoDB:
		store = dynamodb.NewStore(client, cfg.DynamoDBTable, cfg.IndexName, logger)
	case config.StorageSQLite:
		s, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		store = s
	case config.StorageMemory:
		store = memory.NewStore()
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	logger.Info("Storage ready", zap.String("driver", cfg.StorageDriver))
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

// ProvideEventPublisher creates the configured change-event publisher
func ProvideEventPublisher(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) (ports.EventPublisher, func(), error) {
	noCleanup := func() {}
	switch cfg.EventBus {
	case config.EventBusEventBridge:
		client := awseventbridge.NewFromConfig(awsCfg)
		return eventbridge.NewPublisher(client, cfg.EventBusName, logger), noCleanup, nil
	case config.EventBusNATS:
		p, err := natsbus.Connect(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			return nil, nil, err
		}
		return p, func() {
			if err := p.Close(); err != nil {
				logger.Warn("Failed to drain NATS connection", zap.Error(err))
			}
		}, nil
	case config.EventBusInProcess:
		return inprocess.NewBus(logger), noCleanup, nil
	default:
		return messaging.NoopPublisher{}, noCleanup, nil
	}
}

// ProvideChangeNotifier creates the notifier the command bus reports writes to
func ProvideChangeNotifier(publisher ports.EventPublisher, logger *zap.Logger) *messaging.ChangeNotifier {
	return messaging.NewChangeNotifier(publisher, logger)
}

// ProvideInMemoryCache creates the query result cache
func ProvideInMemoryCache() *InMemoryCache {
	return NewInMemoryCache()
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer("recipebook", cfg.EnableTracing)
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector() *observability.Collector {
	return observability.NewCollector("recipebook")
}

// ProvideCloudWatchMetrics creates the CloudWatch recorder. It only sends
// data when metrics are enabled in Lambda.
func ProvideCloudWatchMetrics(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) *observability.CloudWatchMetrics {
	namespace := fmt.Sprintf("%s/%s", cfg.MetricsNamespace, cfg.Environment)
	if !cfg.EnableMetrics || !cfg.IsLambda {
		return observability.NewCloudWatchMetrics(namespace, nil, logger)
	}
	return observability.NewCloudWatchMetrics(namespace, awscloudwatch.NewFromConfig(awsCfg), logger)
}

// ProvideMetrics fans bus metrics out to Prometheus and CloudWatch
func ProvideMetrics(collector *observability.Collector, cw *observability.CloudWatchMetrics) ports.Metrics {
	return observability.MultiMetrics{collector, cw}
}

// ProvideAuthorizer creates the shared-secret authorizer
func ProvideAuthorizer(cfg *config.Config) ports.Authorizer {
	return auth.NewSharedSecretAuthorizer(cfg.AdminSecret)
}

// ProvideRateLimiter limits failed admin attempts. Lambda instances share
// nothing, so they count in DynamoDB when the table is available.
func ProvideRateLimiter(cfg *config.Config, client *awsdynamodb.Client) auth.RateLimiter {
	if cfg.IsLambda && cfg.StorageDriver == config.StorageDynamoDB {
		return auth.NewDistributedRateLimiter(client, cfg.DynamoDBTable, cfg.AdminRateLimit, time.Minute, "ADMIN")
	}
	return auth.NewPerMinuteLimiter(cfg.AdminRateLimit)
}

// ProvideNormalizer creates the name normalizer
func ProvideNormalizer(store ports.Store, logger *zap.Logger) *services.Normalizer {
	return services.NewNormalizer(store.References(), logger)
}

// ProvideOrphanDetector creates the orphan detector
func ProvideOrphanDetector(store ports.Store, logger *zap.Logger) *services.OrphanDetector {
	return services.NewOrphanDetector(store.References(), store.Recipes(), logger)
}

// ProvideCatalog creates the read-model catalog
func ProvideCatalog(store ports.Store) *services.Catalog {
	return services.NewCatalog(store.References(), store.Recipes(), store.Pairings())
}

// ProvideSuggester creates the name suggester
func ProvideSuggester(catalog *services.Catalog) *services.Suggester {
	return services.NewSuggester(catalog)
}

// ProvideImporter creates the seed importer
func ProvideImporter(normalizer *services.Normalizer, store ports.Store, logger *zap.Logger) *services.Importer {
	return services.NewImporter(normalizer, store.References(), store.Recipes(), store.Pairings(), logger)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	cfg *config.Config,
	store ports.Store,
	normalizer *services.Normalizer,
	orphans *services.OrphanDetector,
	importer *services.Importer,
	authorizer ports.Authorizer,
	cache *InMemoryCache,
	notifier *messaging.ChangeNotifier,
	tracer *observability.Tracer,
	metrics ports.Metrics,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()

	var invalidator bus.Invalidator
	if cfg.EnableQueryCache {
		invalidator = cache
	}

	commandBus.Use(
		bus.AuthorizationMiddleware(authorizer),
		bus.LoggingMiddleware(observability.NewBusLogger(logger)),
		bus.TracingMiddleware(tracer),
		bus.MetricsMiddleware(metrics),
		bus.InvalidationMiddleware(invalidator, notifier),
		bus.ValidationMiddleware(),
	)

	err := commandhandlers.RegisterAll(commandBus, commandhandlers.Dependencies{
		Store:      store,
		Normalizer: normalizer,
		Orphans:    orphans,
		Importer:   importer,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register command handlers: %w", err)
	}
	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	cfg *config.Config,
	catalog *services.Catalog,
	suggester *services.Suggester,
	orphans *services.OrphanDetector,
	cache *InMemoryCache,
	tracer *observability.Tracer,
	metrics ports.Metrics,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	queryBus.Use(
		querybus.NewTracingMiddleware(tracer),
		querybus.NewMetricsMiddleware(metrics),
	)
	if cfg.EnableQueryCache {
		queryBus.Use(querybus.NewCachingMiddleware(cache, cfg.CacheTTLSeconds))
	}

	if err := queryhandlers.RegisterAll(queryBus, catalog, suggester, orphans); err != nil {
		return nil, fmt.Errorf("failed to register query handlers: %w", err)
	}
	return queryBus, nil
}

// ProvideConnectionRegistry creates the WebSocket connection registry
func ProvideConnectionRegistry(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) *realtime.ConnectionRegistry {
	return realtime.NewConnectionRegistry(client, cfg.ConnectionsTable, logger)
}

// ProvideBroadcaster creates the change broadcaster
func ProvideBroadcaster(cfg *config.Config, registry *realtime.ConnectionRegistry, awsCfg aws.Config, logger *zap.Logger) *realtime.Broadcaster {
	return realtime.NewBroadcaster(registry, realtime.NewPosterFactory(awsCfg), cfg.WebSocketEndpoint, logger)
}
