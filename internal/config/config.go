package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Storage drivers accepted by STORAGE_DRIVER
const (
	StorageFile     = "file"
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Config holds application configuration
type Config struct {
	ServerAddr       string
	StorageDriver    string
	DataDir          string
	DatabaseURL      string
	RedisURL         string
	RabbitMQURL      string
	RabbitMQPrefetch int
	Secret           string
	FrontendURL      string
	RateLimit        string
	EnableHSTS       bool
	OpenAIKey        string
	AIModel          string
	AIBaseURL        string
	CatalogPath      string
	TrackingInterval time.Duration
	DLQRetention     time.Duration
	WorkerDebugMode  bool
	ServerDebugMode  bool
	OTELEnabled      bool
	OTELEndpoint     string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	e := env(getenv)
	cfg := &Config{
		ServerAddr:       e.str("SERVER_ADDR", "127.0.0.1:8080"),
		StorageDriver:    e.str("STORAGE_DRIVER", StorageFile),
		DataDir:          e.str("DATA_DIR", "./data"),
		DatabaseURL:      e.str("DATABASE_URL", ""),
		RedisURL:         e.str("REDIS_URL", ""),
		RabbitMQURL:      e.str("RABBITMQ_URL", ""),
		RabbitMQPrefetch: e.int("RABBITMQ_PREFETCH", 1),
		Secret:           e.str("PSYCOMED_SECRET", ""),
		FrontendURL:      e.str("FRONTEND_URL", "http://localhost:3000"),
		RateLimit:        e.str("RATE_LIMIT", "10-M"),
		EnableHSTS:       e.bool("ENABLE_HSTS", false),
		OpenAIKey:        e.str("OPENAI_API_KEY", ""),
		AIModel:          e.str("AI_MODEL", ""),
		AIBaseURL:        e.str("AI_BASE_URL", ""),
		CatalogPath:      e.str("CATALOG_PATH", ""),
		TrackingInterval: e.duration("TRACKING_INTERVAL", time.Minute),
		DLQRetention:     e.duration("DLQ_RETENTION", 7*24*time.Hour),
		WorkerDebugMode:  e.bool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:  e.bool("SERVER_DEBUG_MODE", false),
		OTELEnabled:      e.bool("OTEL_ENABLED", false),
		OTELEndpoint:     e.str("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.StorageDriver {
	case StorageFile:
		if c.DataDir == "" {
			errs = append(errs, errors.New("DATA_DIR is required for the file storage driver"))
		}
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres storage driver"))
		}
	case StorageRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis storage driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	if c.TrackingInterval <= 0 {
		errs = append(errs, errors.New("TRACKING_INTERVAL must be positive"))
	}
	if c.RabbitMQPrefetch < 1 {
		errs = append(errs, errors.New("RABBITMQ_PREFETCH must be at least 1"))
	}
	return errors.Join(errs...)
}

type env func(string) string

func (e env) str(key, defaultValue string) string {
	if value := e(key); value != "" {
		return value
	}
	return defaultValue
}

func (e env) bool(key string, defaultValue bool) bool {
	if value := e(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func (e env) int(key string, defaultValue int) int {
	if value := e(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (e env) duration(key string, defaultValue time.Duration) time.Duration {
	if value := e(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
