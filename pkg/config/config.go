package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BDeshi155/pdf-gpt/pkg/observability"
	"github.com/BDeshi155/pdf-gpt/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Blob          storage.Config
	Session       SessionConfig
	OAuth         OAuthConfig
	Billing       BillingConfig
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
	BaseURL         string
	AllowedOrigins  []string
	MaxUploadBytes  int64

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	ConnTimeout  time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL        string
	Password   string
	DB         int
	MaxRetries int
	PoolSize   int
}

// SessionConfig controls session lifetime and profile refresh
type SessionConfig struct {
	// TTL is how long a session token stays valid.
	TTL time.Duration

	// RefreshInterval is how often role and admin flag are re-read
	// from the profile store while a session is in use.
	RefreshInterval time.Duration

	// StalenessWindow bounds how long a cached identity may be served
	// when the profile store is unreachable. Past the window the
	// session fails closed.
	StalenessWindow time.Duration

	// CookieName is the session cookie name.
	CookieName string

	// CookieSecure marks the session cookie Secure.
	CookieSecure bool
}

// OAuthConfig holds identity provider credentials
type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string
	RedirectBaseURL    string
}

// BillingConfig holds payment provider settings
type BillingConfig struct {
	// WebhookSecret signs inbound webhook payloads with HMAC-SHA256.
	WebhookSecret string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Database:      loadDatabaseConfig(),
		Redis:         loadRedisConfig(),
		Blob:          loadBlobConfig(),
		Session:       loadSessionConfig(),
		OAuth:         loadOAuthConfig(),
		Billing:       loadBillingConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("PDFGPT_HOST", "0.0.0.0"),
		Port:            getEnv("PDFGPT_PORT", "8080"),
		ReadTimeout:     getEnvDuration("PDFGPT_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("PDFGPT_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:     getEnvDuration("PDFGPT_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("PDFGPT_SHUTDOWN_TIMEOUT", 30*time.Second),
		BaseURL:         getEnv("PDFGPT_BASE_URL", "http://localhost:8080"),
		AllowedOrigins:  strings.Split(getEnv("PDFGPT_ALLOWED_ORIGINS", "*"), ","),
		MaxUploadBytes:  getEnvInt64("PDFGPT_MAX_UPLOAD_BYTES", 50*1024*1024),
		HealthPort:      getEnv("PDFGPT_HEALTH_PORT", "9090"),
	}
}

// loadDatabaseConfig loads PostgreSQL configuration from environment
func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:          getEnv("PDFGPT_POSTGRES_URL", ""),
		MaxOpenConns: getEnvInt("PDFGPT_POSTGRES_MAX_CONNS", 20),
		MaxIdleConns: getEnvInt("PDFGPT_POSTGRES_IDLE_CONNS", 2),
		ConnTimeout:  getEnvDuration("PDFGPT_POSTGRES_TIMEOUT", 10*time.Second),
	}
}

// loadRedisConfig loads Redis configuration from environment
func loadRedisConfig() RedisConfig {
	return RedisConfig{
		URL:        getEnv("PDFGPT_REDIS_URL", "localhost:6379"),
		Password:   getEnv("PDFGPT_REDIS_PASSWORD", ""),
		DB:         getEnvInt("PDFGPT_REDIS_DB", 0),
		MaxRetries: getEnvInt("PDFGPT_REDIS_MAX_RETRIES", 3),
		PoolSize:   getEnvInt("PDFGPT_REDIS_POOL_SIZE", 10),
	}
}

// loadBlobConfig loads blob storage configuration from environment
func loadBlobConfig() storage.Config {
	cfg := storage.DefaultConfig()

	if storageType := getEnv("PDFGPT_STORAGE_TYPE", ""); storageType != "" {
		cfg.Type = storageType
	}
	if fsRoot := getEnv("PDFGPT_FILESYSTEM_ROOT", ""); fsRoot != "" {
		cfg.FilesystemRoot = fsRoot
	}
	if s3Endpoint := getEnv("PDFGPT_S3_ENDPOINT", ""); s3Endpoint != "" {
		cfg.S3Endpoint = s3Endpoint
	}
	if s3Region := getEnv("PDFGPT_S3_REGION", ""); s3Region != "" {
		cfg.S3Region = s3Region
	}
	if s3Bucket := getEnv("PDFGPT_S3_BUCKET", ""); s3Bucket != "" {
		cfg.S3Bucket = s3Bucket
	}
	if s3AccessKey := getEnv("PDFGPT_S3_ACCESS_KEY", ""); s3AccessKey != "" {
		cfg.S3AccessKey = s3AccessKey
	}
	if s3SecretKey := getEnv("PDFGPT_S3_SECRET_KEY", ""); s3SecretKey != "" {
		cfg.S3SecretKey = s3SecretKey
	}
	if s3UsePathStyle := getEnv("PDFGPT_S3_USE_PATH_STYLE", ""); s3UsePathStyle != "" {
		cfg.S3UsePathStyle = strings.ToLower(s3UsePathStyle) == "true"
	}

	return cfg
}

// loadSessionConfig loads session configuration from environment
func loadSessionConfig() SessionConfig {
	return SessionConfig{
		TTL:             getEnvDuration("PDFGPT_SESSION_TTL", 30*24*time.Hour),
		RefreshInterval: getEnvDuration("PDFGPT_SESSION_REFRESH_INTERVAL", 5*time.Minute),
		StalenessWindow: getEnvDuration("PDFGPT_SESSION_STALENESS_WINDOW", 15*time.Minute),
		CookieName:      getEnv("PDFGPT_SESSION_COOKIE", "pdfgpt_session"),
		CookieSecure:    getEnvBool("PDFGPT_SESSION_COOKIE_SECURE", true),
	}
}

// loadOAuthConfig loads identity provider configuration from environment
func loadOAuthConfig() OAuthConfig {
	return OAuthConfig{
		GoogleClientID:     getEnv("PDFGPT_GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("PDFGPT_GOOGLE_CLIENT_SECRET", ""),
		GitHubClientID:     getEnv("PDFGPT_GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: getEnv("PDFGPT_GITHUB_CLIENT_SECRET", ""),
		RedirectBaseURL:    getEnv("PDFGPT_OAUTH_REDIRECT_BASE", getEnv("PDFGPT_BASE_URL", "http://localhost:8080")),
	}
}

// loadBillingConfig loads payment provider configuration from environment
func loadBillingConfig() BillingConfig {
	return BillingConfig{
		WebhookSecret: getEnv("PDFGPT_BILLING_WEBHOOK_SECRET", ""),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       observability.ParseLogLevel(getEnv("PDFGPT_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("PDFGPT_METRICS_ENABLED", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}

	switch c.Blob.Type {
	case "filesystem":
		if c.Blob.FilesystemRoot == "" {
			return fmt.Errorf("filesystem root is required for filesystem storage")
		}
	case "s3":
		if c.Blob.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be filesystem or s3)", c.Blob.Type)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	if c.Session.RefreshInterval <= 0 {
		return fmt.Errorf("session refresh interval must be positive")
	}
	if c.Session.StalenessWindow < c.Session.RefreshInterval {
		return fmt.Errorf("session staleness window must be at least the refresh interval")
	}

	return nil
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

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
