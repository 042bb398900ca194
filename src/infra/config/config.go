// Package config handles application configuration via environment variables.
// It uses kelseyhightower/envconfig for parsing and provides sensible defaults.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Storage backends selectable with APP_STORAGE.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all application configuration.
// Values are loaded from environment variables with the prefix "APP".
// Example: APP_PORT=3000, APP_ROUND_DURATION=60
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Game     GameConfig
	Auth     AuthConfig
	Limits   RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP server port (default: 3000)
	Port int `envconfig:"PORT" default:"3000"`

	// Host is the HTTP server host (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// ReadTimeout is the maximum duration for reading the entire request (default: 10s)
	ReadTimeout time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`

	// WriteTimeout is the maximum duration before timing out writes of the response (default: 30s)
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`

	// ShutdownTimeout is the maximum duration to wait for active connections to finish (default: 30s)
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// CORSOrigins lists origins allowed to send credentialed requests.
	// An empty list reflects any origin, which suits local development.
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Storage selects the backend: postgres or memory (default: postgres)
	Storage string `envconfig:"STORAGE" default:"postgres"`

	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"gussgame"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// MaxOpenConns is the maximum number of open connections (default: 25)
	MaxOpenConns int `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`

	// MaxIdleConns is the minimum number of connections kept open (default: 5)
	MaxIdleConns int `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`

	// ConnMaxLifetime is the maximum lifetime of a connection (default: 5m)
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`

	// AutoMigrate applies embedded migrations on startup (default: true)
	AutoMigrate bool `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is the log level: debug, info, warn, error (default: info)
	Level string `envconfig:"LOG_LEVEL" default:"info"`

	// Format is the log format: json, text, plain (default: json)
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// GameConfig holds round timing. Both values are whole seconds in the environment.
type GameConfig struct {
	RoundDurationSeconds    int `envconfig:"ROUND_DURATION" default:"60"`
	CooldownDurationSeconds int `envconfig:"COOLDOWN_DURATION" default:"30"`
}

// RoundDuration is the length of a round's active window.
func (c GameConfig) RoundDuration() time.Duration {
	return time.Duration(c.RoundDurationSeconds) * time.Second
}

// CooldownDuration is the delay between round creation and its start.
func (c GameConfig) CooldownDuration() time.Duration {
	return time.Duration(c.CooldownDurationSeconds) * time.Second
}

// Validate rejects non-positive durations.
func (c GameConfig) Validate() error {
	if c.RoundDurationSeconds <= 0 {
		return errors.New("ROUND_DURATION must be positive")
	}
	if c.CooldownDurationSeconds < 0 {
		return errors.New("COOLDOWN_DURATION must not be negative")
	}
	return nil
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	// JWTSecret signs session tokens (required in production)
	JWTSecret string `envconfig:"JWT_SECRET" default:"default-secret-change-me"`

	// TokenTTL is how long a session token stays valid (default: 24h)
	TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// CookieSecure marks the session cookie Secure (default: false)
	CookieSecure bool `envconfig:"COOKIE_SECURE" default:"false"`
}

// RateLimitConfig bounds how fast a single player may tap.
type RateLimitConfig struct {
	TapsPerSecond float64 `envconfig:"TAP_RATE_PER_SECOND" default:"20"`
	TapBurst      int     `envconfig:"TAP_BURST" default:"40"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from environment variables.
// It returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	var cfg Config

	// Load each config section separately to flatten env var names
	// This allows env vars like APP_PORT instead of APP_SERVER_PORT
	if err := envconfig.Process("APP", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to load log config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Game); err != nil {
		return nil, fmt.Errorf("failed to load game config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Auth); err != nil {
		return nil, fmt.Errorf("failed to load auth config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Limits); err != nil {
		return nil, fmt.Errorf("failed to load rate limit config: %w", err)
	}

	if err := cfg.Game.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	switch cfg.Database.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Database.Storage)
	}

	return &cfg, nil
}
