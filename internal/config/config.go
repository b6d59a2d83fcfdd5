package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lorrc/ticket-board/internal/core/domain"
	"golang.org/x/text/language"
)

// Snapshot store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Upstream ticket source
	Remote RemoteConfig

	// Board defaults
	Board BoardConfig

	// Snapshot store selection
	Store StoreConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// JWT configuration
	JWT JWTConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// WebSocket configuration
	WebSocket WebSocketConfig

	// CORS configuration
	CORS CORSConfig

	// Logging configuration
	Logging LoggingConfig

	// Application metadata
	App AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// RemoteConfig holds the upstream API configuration
type RemoteConfig struct {
	URL     string
	Timeout time.Duration
	// RefreshInterval of zero fetches once at startup only.
	RefreshInterval time.Duration
}

// BoardConfig holds the options a client gets when it picks none
type BoardConfig struct {
	DefaultGrouping string
	DefaultOrdering string
	Locale          string
}

// StoreConfig selects where the last-known snapshot is kept
type StoreConfig struct {
	Backend string // memory, postgres, redis
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	AutoMigrate     bool
}

// RedisConfig holds redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
	TTL      time.Duration
}

// JWTConfig holds JWT configuration. An empty secret leaves refresh open.
type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	RefreshRPS        float64 // Stricter limit for the refresh endpoint
	RefreshBurst      int
}

// WebSocketConfig holds WebSocket configuration
type WebSocketConfig struct {
	AllowedOrigins  []string
	ReadBufferSize  int
	WriteBufferSize int
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text, console
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv reads the configuration without validating it.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", ":8080"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Remote: RemoteConfig{
			URL:             getEnvOrDefault("REMOTE_URL", "https://api.quicksell.co/v1/internal/frontend-assignment"),
			Timeout:         getDurationOrDefault("REMOTE_TIMEOUT", 10*time.Second),
			RefreshInterval: getDurationOrDefault("REMOTE_REFRESH_INTERVAL", 0),
		},
		Board: BoardConfig{
			DefaultGrouping: getEnvOrDefault("BOARD_DEFAULT_GROUPING", string(domain.DefaultGrouping)),
			DefaultOrdering: getEnvOrDefault("BOARD_DEFAULT_ORDERING", string(domain.DefaultOrdering)),
			Locale:          getEnvOrDefault("BOARD_LOCALE", domain.DefaultLocale.String()),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(getEnvOrDefault("SNAPSHOT_STORE", StoreMemory)),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxConns:        getIntOrDefault("DB_MAX_CONNS", 10),
			MinConns:        getIntOrDefault("DB_MIN_CONNS", 1),
			ConnMaxLifetime: getDurationOrDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getDurationOrDefault("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			AutoMigrate:     getBoolOrDefault("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntOrDefault("REDIS_DB", 0),
			Key:      getEnvOrDefault("REDIS_KEY", "ticket-board:snapshot:latest"),
			TTL:      getDurationOrDefault("REDIS_TTL", 0),
		},
		JWT: JWTConfig{
			Secret:   os.Getenv("JWT_SECRET"),
			TokenTTL: getDurationOrDefault("JWT_TOKEN_TTL", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolOrDefault("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getFloatOrDefault("RATE_LIMIT_RPS", 10),
			BurstSize:         getIntOrDefault("RATE_LIMIT_BURST", 20),
			RefreshRPS:        getFloatOrDefault("RATE_LIMIT_REFRESH_RPS", 0.2),
			RefreshBurst:      getIntOrDefault("RATE_LIMIT_REFRESH_BURST", 2),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins:  getStringSliceOrDefault("WS_ALLOWED_ORIGINS", []string{}),
			ReadBufferSize:  getIntOrDefault("WS_READ_BUFFER_SIZE", 1024),
			WriteBufferSize: getIntOrDefault("WS_WRITE_BUFFER_SIZE", 4096),
		},
		CORS: CORSConfig{
			AllowedOrigins: getStringSliceOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
			MaxAge:         getIntOrDefault("CORS_MAX_AGE", 300),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		App: AppConfig{
			Name:        getEnvOrDefault("APP_NAME", "ticket-board"),
			Version:     getEnvOrDefault("APP_VERSION", "dev"),
			Environment: getEnvOrDefault("APP_ENV", "development"),
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	// Board defaults
	if _, err := c.Board.ViewOptions(); err != nil {
		errs = append(errs, fmt.Sprintf("BOARD_DEFAULT_GROUPING/BOARD_DEFAULT_ORDERING: %v", err))
	}
	if _, err := c.Board.Language(); err != nil {
		errs = append(errs, fmt.Sprintf("BOARD_LOCALE: %v", err))
	}

	// Upstream
	if u, err := url.Parse(c.Remote.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, "REMOTE_URL must be an absolute http(s) URL")
	}
	if c.Remote.Timeout <= 0 {
		errs = append(errs, "REMOTE_TIMEOUT must be positive")
	}
	if c.Remote.RefreshInterval < 0 {
		errs = append(errs, "REMOTE_REFRESH_INTERVAL cannot be negative")
	}

	// Store backends
	switch c.Store.Backend {
	case StoreMemory:
	case StorePostgres:
		if c.Database.URL == "" {
			errs = append(errs, "DATABASE_URL is required when SNAPSHOT_STORE=postgres")
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, "REDIS_ADDR is required when SNAPSHOT_STORE=redis")
		}
	default:
		errs = append(errs, fmt.Sprintf("SNAPSHOT_STORE must be one of %s, %s, %s", StoreMemory, StorePostgres, StoreRedis))
	}

	switch c.Logging.Format {
	case "json", "text", "console":
	default:
		errs = append(errs, "LOG_FORMAT must be json, text or console")
	}

	// Security validations
	if c.IsProduction() {
		if len(c.JWT.Secret) < 32 {
			errs = append(errs, "JWT_SECRET must be at least 32 characters in production")
		}

		if len(c.WebSocket.AllowedOrigins) == 0 {
			errs = append(errs, "WS_ALLOWED_ORIGINS must be set in production")
		}
	}

	// Logical validations
	if c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, "DB_MIN_CONNS cannot be greater than DB_MAX_CONNS")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// ViewOptions parses the configured default grouping and ordering.
func (b BoardConfig) ViewOptions() (domain.ViewOptions, error) {
	grouping, err := domain.ParseGrouping(b.DefaultGrouping)
	if err != nil {
		return domain.ViewOptions{}, err
	}
	ordering, err := domain.ParseOrdering(b.DefaultOrdering)
	if err != nil {
		return domain.ViewOptions{}, err
	}
	return domain.ViewOptions{Grouping: grouping, Ordering: ordering}, nil
}

// Language parses the locale used to collate titles.
func (b BoardConfig) Language() (language.Tag, error) {
	return domain.ParseLocale(b.Locale)
}

// RefreshProtected reports whether refresh requires a bearer token.
func (c *Config) RefreshProtected() bool {
	return c.JWT.Secret != ""
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// String returns a redacted string representation of the config (safe for logging)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: %s, Remote: %s, Store: %s, DB: %s, Redis: %s, JWT: [REDACTED], RateLimit: %v, Environment: %s}",
		c.Server.Port,
		c.Remote.URL,
		c.Store.Backend,
		redactURL(c.Database.URL),
		c.Redis.Addr,
		c.RateLimit.Enabled,
		c.App.Environment,
	)
}

// redactURL redacts credentials in a database URL
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	if idx := strings.Index(raw, "@"); idx > 0 {
		return "[REDACTED]" + raw[idx:]
	}
	return "[REDACTED]"
}
