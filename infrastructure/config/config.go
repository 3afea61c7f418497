package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	StorageMemory   = "memory"
	StorageDynamoDB = "dynamodb"
	StorageSQLite   = "sqlite"
)

// Event bus kinds
const (
	EventBusNone        = "none"
	EventBusInProcess   = "inprocess"
	EventBusEventBridge = "eventbridge"
	EventBusNATS        = "nats"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Storage
	StorageDriver string
	AWSRegion     string
	DynamoDBTable string
	IndexName     string // GSI1 - listing by entity type
	SQLitePath    string

	// Change events
	EventBus     string
	EventBusName string
	NATSURL      string
	NATSSubject  string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// WebSocket configuration
	WebSocketEndpoint string
	ConnectionsTable  string

	// Logging
	LogLevel    string
	DebugErrors bool

	// Authentication
	AdminSecret    string
	AdminRateLimit int // failed attempts per minute per client

	// Query cache
	EnableQueryCache bool
	CacheTTLSeconds  int

	// Feature flags
	EnableMetrics    bool
	MetricsNamespace string
	EnableTracing    bool
	EnableCORS       bool
	AllowedOrigins   []string
}

// LoadConfig loads configuration from environment variables, after
// applying .env.local and .env when present. Variables already set in the
// process environment win.
func LoadConfig() (*Config, error) {
	if err := loadDotEnv(".env.local", ".env"); err != nil {
		return nil, err
	}

	isLambda := getEnv("AWS_LAMBDA_FUNCTION_NAME", "") != "" || getEnvBool("IS_LAMBDA", false)

	cfg := &Config{
		ServerAddress: ":" + strings.TrimPrefix(getEnv("PORT", "8080"), ":"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", ""),
		IndexName:     getEnv("INDEX_NAME", "GSI1"),
		SQLitePath:    getEnv("SQLITE_PATH", "recipebook.db"),

		EventBus:     strings.ToLower(getEnv("EVENT_BUS", EventBusNone)),
		EventBusName: getEnv("EVENT_BUS_NAME", "recipebook-events"),
		NATSURL:      getEnv("NATS_URL", ""),
		NATSSubject:  getEnv("NATS_SUBJECT", "recipebook.collection.changed"),

		IsLambda:           isLambda,
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		WebSocketEndpoint: getEnv("WEBSOCKET_ENDPOINT", ""),
		ConnectionsTable:  getEnv("CONNECTIONS_TABLE", "recipebook-connections"),

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DebugErrors: getEnvBool("DEBUG_ERRORS", false),

		AdminSecret:    os.Getenv("ADMIN_SECRET"),
		AdminRateLimit: getEnvInt("ADMIN_RATE_LIMIT", 10),

		// Lambda instances do not share memory, so caching is opt-in there.
		EnableQueryCache: getEnvBool("ENABLE_QUERY_CACHE", !isLambda),
		CacheTTLSeconds:  getEnvInt("CACHE_TTL_SECONDS", 300),

		EnableMetrics:    getEnvBool("ENABLE_METRICS", false),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "RecipeBook"),
		EnableTracing:    getEnvBool("ENABLE_TRACING", false),
		EnableCORS:       getEnvBool("ENABLE_CORS", true),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "*")),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StorageDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required for the dynamodb storage driver")
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.EventBus {
	case EventBusNone, EventBusInProcess:
	case EventBusEventBridge:
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required for the eventbridge event bus")
		}
	case EventBusNATS:
		if c.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required for the nats event bus")
		}
	default:
		return fmt.Errorf("unknown EVENT_BUS %q", c.EventBus)
	}

	if c.IsProduction() && c.AdminSecret == "" {
		return fmt.Errorf("ADMIN_SECRET is required in production")
	}
	if c.AdminRateLimit <= 0 {
		return fmt.Errorf("ADMIN_RATE_LIMIT must be positive")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func loadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
