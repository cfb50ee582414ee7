package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/platinummonkey/signup/pkg/httputil"
	"github.com/platinummonkey/signup/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database storage.Config

	// Catalog seeding and cache configuration
	Catalog CatalogConfig
	Cache   CacheConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string

	CORSOrigins  []string
	MaxBodyBytes int64
	RateLimit    httputil.RateLimitConfig
}

// CatalogConfig holds catalog seeding settings
type CatalogConfig struct {
	// SeedFile is applied at startup when set
	SeedFile string
	// WatchSeed re-applies SeedFile whenever it changes
	WatchSeed bool
}

// CacheConfig holds catalog cache settings
type CacheConfig struct {
	Enabled         bool
	L1Size          int
	TTL             time.Duration
	RedisURL        string
	RefreshSchedule string
}

// WizardConfig holds settings of the terminal wizard. It is loaded on its
// own since the client needs no database.
type WizardConfig struct {
	// FailureStep is the step a failed submission returns to
	FailureStep int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel  string
	LogFormat string

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration from environment variables. Values from a
// .env file in the working directory fill variables that are not set.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		Server:        loadServerConfig(),
		Database:      loadDatabaseConfig(),
		Catalog:       loadCatalogConfig(),
		Cache:         loadCacheConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	rl := httputil.DefaultRateLimitConfig()
	rl.RequestsPerSecond = getEnvFloat("SIGNUP_SUBMIT_RATE", rl.RequestsPerSecond)
	rl.Burst = getEnvInt("SIGNUP_SUBMIT_BURST", rl.Burst)
	rl.MaxClients = getEnvInt("SIGNUP_SUBMIT_MAX_CLIENTS", rl.MaxClients)
	rl.TrustProxy = getEnvBool("SIGNUP_TRUST_PROXY", false)

	return ServerConfig{
		Host:            getEnv("SIGNUP_HOST", "0.0.0.0"),
		Port:            getEnv("SIGNUP_PORT", "3001"),
		ReadTimeout:     getEnvDuration("SIGNUP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("SIGNUP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("SIGNUP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("SIGNUP_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("SIGNUP_HEALTH_PORT", "9090"),
		CORSOrigins:     getEnvList("SIGNUP_CORS_ORIGINS", []string{"*"}),
		MaxBodyBytes:    getEnvInt64("SIGNUP_MAX_BODY_BYTES", 64<<10),
		RateLimit:       rl,
	}
}

// loadDatabaseConfig loads database configuration from environment.
// SIGNUP_DATABASE_URL takes precedence over DATABASE_URL.
func loadDatabaseConfig() storage.Config {
	cfg := storage.DefaultConfig()

	cfg.Driver = getEnv("SIGNUP_DATABASE_DRIVER", cfg.Driver)
	cfg.DSN = getEnv("SIGNUP_DATABASE_URL", getEnv("DATABASE_URL", ""))
	if maxConns := getEnvInt("SIGNUP_DATABASE_MAX_CONNS", 0); maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns := getEnvInt("SIGNUP_DATABASE_MIN_CONNS", 0); minConns > 0 {
		cfg.MinConns = minConns
	}
	if timeout := getEnvDuration("SIGNUP_DATABASE_TIMEOUT", 0); timeout > 0 {
		cfg.Timeout = timeout
	}
	cfg.AutoMigrate = getEnvBool("SIGNUP_DATABASE_AUTO_MIGRATE", cfg.AutoMigrate)

	return cfg
}

// loadCacheConfig loads catalog cache configuration from environment
func loadCatalogConfig() CatalogConfig {
	return CatalogConfig{
		SeedFile:  getEnv("SIGNUP_CATALOG_SEED_FILE", ""),
		WatchSeed: getEnvBool("SIGNUP_CATALOG_WATCH", false),
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:         getEnvBool("SIGNUP_CACHE_ENABLED", true),
		L1Size:          getEnvInt("SIGNUP_CACHE_L1_SIZE", 16),
		TTL:             getEnvDuration("SIGNUP_CACHE_TTL", 5*time.Minute),
		RedisURL:        getEnv("SIGNUP_REDIS_URL", ""),
		RefreshSchedule: getEnv("SIGNUP_CACHE_REFRESH_SCHEDULE", "@every 5m"),
	}
}

// LoadWizardConfig loads the wizard settings from environment variables
func LoadWizardConfig() (*WizardConfig, error) {
	cfg := &WizardConfig{
		FailureStep: getEnvInt("SIGNUP_FAILURE_STEP", 1),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid wizard configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the failure step
func (c *WizardConfig) Validate() error {
	if c.FailureStep < 1 || c.FailureStep > 4 {
		return fmt.Errorf("invalid failure step: %d (must be between 1 and 4)", c.FailureStep)
	}
	return nil
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           getEnv("SIGNUP_LOG_LEVEL", "info"),
		LogFormat:          getEnv("SIGNUP_LOG_FORMAT", "json"),
		MetricsEnabled:     getEnvBool("SIGNUP_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("SIGNUP_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("SIGNUP_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("SIGNUP_OTEL_SERVICE_NAME", "signup-api"),
		OTelServiceVersion: getEnv("SIGNUP_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("SIGNUP_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}
	if c.Server.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("submit rate must be positive")
	}

	if err := c.Database.Validate(); err != nil {
		return err
	}

	if c.Catalog.WatchSeed && c.Catalog.SeedFile == "" {
		return fmt.Errorf("catalog watch requires a seed file")
	}

	if c.Cache.Enabled {
		if c.Cache.L1Size <= 0 {
			return fmt.Errorf("cache L1 size must be positive")
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache TTL must be positive")
		}
	}

	switch strings.ToLower(c.Observability.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Observability.LogFormat)
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// Addr returns the API listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// HealthAddr returns the health/metrics listen address
func (s ServerConfig) HealthAddr() string {
	return s.Host + ":" + s.HealthPort
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns a float environment variable or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList returns a comma separated environment variable or a default
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
