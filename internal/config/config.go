package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // embedded zoneinfo

	"github.com/joho/godotenv"
	"github.com/ulule/limiter/v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultSQLiteURL = "file:devotional.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
)

// Config holds application configuration
type Config struct {
	DatabaseDriver     string
	DatabaseURL        string
	ServerPort         string
	FrontendURL        string
	EnableHSTS         bool
	OpenAIKey          string
	AIModel            string
	AIBaseURL          string
	RedisURL           string
	RabbitMQURL        string
	RabbitMQPrefetch   int
	RateLimit          string
	Timezone           *time.Location
	LogFile            string
	VerseCacheTTL      time.Duration
	SessionIdleTimeout time.Duration
	WorkerDebugMode    bool
	ServerDebugMode    bool
	OTELEnabled        bool
	OTELEndpoint       string
}

// AIConfigured reports whether a generative service credential is present
func (c *Config) AIConfigured() bool {
	return c.OpenAIKey != ""
}

// Load reads an optional .env file (ENV_FILE, default ".env") and then
// loads configuration from environment variables
func Load() (*Config, error) {
	if err := loadDotEnv(getEnv(os.Getenv, "ENV_FILE", ".env")); err != nil {
		return nil, err
	}
	return parse(os.Getenv)
}

// loadDotEnv fills unset variables from path. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to read %s: %w", path, err)
}

func parse(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DatabaseDriver:     getEnv(getenv, "DATABASE_DRIVER", DriverSQLite),
		DatabaseURL:        getEnv(getenv, "DATABASE_URL", ""),
		ServerPort:         getEnv(getenv, "SERVER_PORT", "8080"),
		FrontendURL:        getEnv(getenv, "FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:         getEnvBool(getenv, "ENABLE_HSTS", false),
		OpenAIKey:          getEnv(getenv, "OPENAI_API_KEY", ""),
		AIModel:            getEnv(getenv, "AI_MODEL", "gpt-4o-mini"),
		AIBaseURL:          getEnv(getenv, "AI_BASE_URL", ""),
		RedisURL:           getEnv(getenv, "REDIS_URL", ""),
		RabbitMQURL:        getEnv(getenv, "RABBITMQ_URL", ""),
		RabbitMQPrefetch:   getEnvInt(getenv, "RABBITMQ_PREFETCH", 1),
		RateLimit:          getEnv(getenv, "RATE_LIMIT", "30-M"),
		LogFile:            getEnv(getenv, "LOG_FILE", ""),
		VerseCacheTTL:      getEnvDuration(getenv, "VERSE_CACHE_TTL", 7*24*time.Hour),
		SessionIdleTimeout: getEnvDuration(getenv, "SESSION_IDLE_TIMEOUT", 2*time.Hour),
		WorkerDebugMode:    getEnvBool(getenv, "WORKER_DEBUG_MODE", false),
		ServerDebugMode:    getEnvBool(getenv, "SERVER_DEBUG_MODE", false),
		OTELEnabled:        getEnvBool(getenv, "OTEL_ENABLED", false),
		OTELEndpoint:       getEnv(getenv, "OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	switch cfg.DatabaseDriver {
	case DriverSQLite:
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = defaultSQLiteURL
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DATABASE_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, cfg.DatabaseDriver)
	}

	tz := getEnv(getenv, "APP_TIMEZONE", "America/Sao_Paulo")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", tz, err)
	}
	cfg.Timezone = loc

	if _, err := limiter.NewRateFromFormatted(cfg.RateLimit); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT %q: %w", cfg.RateLimit, err)
	}

	if cfg.RabbitMQPrefetch < 1 {
		return nil, fmt.Errorf("RABBITMQ_PREFETCH must be at least 1")
	}

	return cfg, nil
}

func getEnv(getenv func(string) string, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(getenv func(string) string, key string, defaultValue bool) bool {
	if value := getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(getenv func(string) string, key string, defaultValue int) int {
	if value := getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(getenv func(string) string, key string, defaultValue time.Duration) time.Duration {
	if value := getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
