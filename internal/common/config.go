package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/obielum/doctrack/constants"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Upload   UploadConfig
	Tracker  TrackerConfig
	Watch    WatchConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// UploadConfig holds upload collaborator configuration
type UploadConfig struct {
	BaseURL        string
	MaxFileBytes   int64
	RequestTimeout time.Duration
}

// TrackerConfig holds job tracking and polling configuration
type TrackerConfig struct {
	PollInterval   time.Duration
	GracePeriod    time.Duration
	QueryTimeout   time.Duration
	MaxConcurrency int
}

// WatchConfig holds directory watcher configuration
type WatchConfig struct {
	Roots    []string
	Debounce time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", "file:doctrack.db"),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		Upload: UploadConfig{
			BaseURL:        getEnv("UPLOAD_BASE_URL", "http://localhost:9090"),
			MaxFileBytes:   getEnvAsInt64("UPLOAD_MAX_BYTES", constants.MaxUploadBytes),
			RequestTimeout: getEnvAsDuration("UPLOAD_TIMEOUT", 60*time.Second),
		},
		Tracker: TrackerConfig{
			PollInterval:   getEnvAsDuration("TRACK_POLL_INTERVAL", 2*time.Second),
			GracePeriod:    getEnvAsDuration("TRACK_GRACE_PERIOD", 5*time.Second),
			QueryTimeout:   getEnvAsDuration("TRACK_QUERY_TIMEOUT", 10*time.Second),
			MaxConcurrency: getEnvAsInt("TRACK_MAX_CONCURRENCY", 8),
		},
		Watch: WatchConfig{
			Roots:    splitNonEmpty(getEnv("WATCH_DIRS", "")),
			Debounce: getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Upload.BaseURL == "" {
		return NewAppError("CONFIG_ERROR", "UPLOAD_BASE_URL is required", ErrInvalidInput)
	}
	if c.Upload.MaxFileBytes <= 0 {
		return NewAppError("CONFIG_ERROR", "UPLOAD_MAX_BYTES must be positive", ErrInvalidInput)
	}
	if c.Tracker.PollInterval <= 0 {
		return NewAppError("CONFIG_ERROR", "TRACK_POLL_INTERVAL must be positive", ErrInvalidInput)
	}
	if c.Tracker.GracePeriod < 0 {
		return NewAppError("CONFIG_ERROR", "TRACK_GRACE_PERIOD must not be negative", ErrInvalidInput)
	}
	return nil
}
