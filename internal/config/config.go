package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"sold2move/internal/validation"
)

// Cache backends
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr         string
	CORSOrigins        string // Comma-separated allowed origins
	RateLimitPerMinute int

	// Logging
	LogLevel  string
	LogFormat string // "json" or "text"; empty picks by Env

	// Cache store
	CacheBackend string // postgres or sqlite
	DatabaseURL  string
	SQLitePath   string
	RedisURL     string        // optional hot tier
	HotCacheTTL  time.Duration // TTL of the hot copy only

	// Skip-trace provider
	ProviderBaseURL       string
	ProviderAPIKey        string
	ProviderSkipTracePath string
	ProviderTimeout       time.Duration // 0 means no client-side timeout

	// Inbound auth (Supabase-compatible JWT issuer)
	AuthIssuer   string
	AuthJWKSURL  string
	AuthAudience string

	// Stale entry reporting
	StaleReportInterval time.Duration
	StaleAfter          time.Duration

	// Path to the optional YAML overlay
	ConfigFile string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		Env:                getEnv("ENV", "development"),
		ServerAddr:         getEnv("SERVER_ADDR", ":3000"),
		CORSOrigins:        getEnv("CORS_ORIGINS", "*"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),

		CacheBackend: getEnv("CACHE_BACKEND", BackendPostgres),
		DatabaseURL:  getEnv("DATABASE_URL", "postgres://localhost:5432/sold2move?sslmode=disable"),
		SQLitePath:   getEnv("SQLITE_PATH", "sold2move.db"),
		RedisURL:     getEnv("REDIS_URL", ""),
		HotCacheTTL:  getEnvDuration("HOT_CACHE_TTL", 24*time.Hour),

		ProviderBaseURL:       getEnv("PROVIDER_BASE_URL", "https://api.batchdata.com"),
		ProviderAPIKey:        getEnv("PROVIDER_API_KEY", ""),
		ProviderSkipTracePath: getEnv("PROVIDER_SKIP_TRACE_PATH", "/api/v1/property/skip-trace"),
		ProviderTimeout:       getEnvDuration("PROVIDER_TIMEOUT", 0),

		AuthIssuer:   getEnv("AUTH_ISSUER", ""),
		AuthJWKSURL:  getEnv("AUTH_JWKS_URL", ""),
		AuthAudience: getEnv("AUTH_AUDIENCE", "authenticated"),

		StaleReportInterval: getEnvDuration("STALE_REPORT_INTERVAL", 6*time.Hour),
		StaleAfter:          getEnvDuration("STALE_AFTER", 180*24*time.Hour),

		ConfigFile: getEnv("CONFIG_FILE", "config.yaml"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logrus.Warnf("Invalid %s value: %s, using default %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logrus.Warnf("Invalid %s value: %s, using default %v", key, value, fallback)
		return fallback
	}
	return d
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsAuthEnabled returns true if JWT verification is configured.
func (c *Config) IsAuthEnabled() bool {
	return c.AuthIssuer != "" && c.AuthJWKSURL != ""
}

// Validate checks the settings the lookup service cannot run without.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s backend", BackendPostgres)
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the %s backend", BackendSQLite)
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	return c.ValidateProvider()
}

// ValidateProvider checks the skip-trace provider settings.
// Outside development the provider URL must use https since it receives the API key.
func (c *Config) ValidateProvider() error {
	if c.ProviderAPIKey == "" {
		return fmt.Errorf("PROVIDER_API_KEY is required")
	}
	check := validation.ValidateSecureURL
	if c.IsDev() {
		check = validation.ValidateURL
	}
	if valid, msg := check(c.ProviderBaseURL); !valid {
		return fmt.Errorf("PROVIDER_BASE_URL: %s", msg)
	}
	if c.AuthJWKSURL != "" {
		if valid, msg := validation.ValidateURL(c.AuthJWKSURL); !valid {
			return fmt.Errorf("AUTH_JWKS_URL: %s", msg)
		}
	}
	return nil
}
