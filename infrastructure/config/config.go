package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	EventBusName  string

	// Lambda configuration
	IsLambda bool

	// Push configuration
	WebSocketEndpoint string

	// Cache tuning
	CacheListTTL      time.Duration
	CacheCountTTL     time.Duration
	CacheDuplicateTTL time.Duration

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool
	EnableEvents  bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "eu-central-1"),
		DynamoDBTable: getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "teamsqa")),
		EventBusName:  getEnv("EVENT_BUS_NAME", "teamsqa-events"),

		IsLambda: getEnvBool("IS_LAMBDA", os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""),

		WebSocketEndpoint: getEnv("WEBSOCKET_ENDPOINT", ""),

		CacheListTTL:      getEnvDuration("CACHE_LIST_TTL", 30*time.Second),
		CacheCountTTL:     getEnvDuration("CACHE_COUNT_TTL", 120*time.Second),
		CacheDuplicateTTL: getEnvDuration("CACHE_DUPLICATE_TTL", 10*time.Second),

		// Authentication
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "teamsqa-backend"),

		// Logging and features
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
		EnableEvents:  getEnvBool("ENABLE_EVENTS", false),
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
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required")
		}
		if c.EnableEvents && c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required when events are enabled")
		}
	}
	if c.CacheListTTL <= 0 || c.CacheCountTTL <= 0 || c.CacheDuplicateTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
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

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
