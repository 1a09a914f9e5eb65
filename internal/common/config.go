package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Extract  ExtractConfig
	Inbox    InboxConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// IsPostgres reports whether the DSN points at a Postgres server rather than a SQLite file.
func (d DatabaseConfig) IsPostgres() bool {
	return strings.HasPrefix(d.DSN, "postgres://") || strings.HasPrefix(d.DSN, "postgresql://")
}

// ServerConfig holds dashboard-related configuration
type ServerConfig struct {
	HTTPAddr         string
	GRPCAddr         string
	UploadRatePerSec float64
	UploadMaxBytes   int64
	TemplatesDir     string
	Currency         string
	ShutdownTimeout  time.Duration
}

// ExtractConfig holds PDF text extraction configuration
type ExtractConfig struct {
	PdfToText        string
	Fallback         bool
	ArtifactCacheDir string
	Timeout          time.Duration
}

// InboxConfig holds the scheduled directory scan configuration
type InboxConfig struct {
	Dir      string
	Schedule string
}

// Enabled reports whether an inbox directory is configured.
func (i InboxConfig) Enabled() bool {
	return i.Dir != ""
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", "data.db"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
			GRPCAddr:         getEnv("GRPC_ADDR", ":9090"),
			UploadRatePerSec: getEnvAsFloat64("UPLOAD_RATE_PER_SEC", 5),
			UploadMaxBytes:   getEnvAsInt64("UPLOAD_MAX_BYTES", 32<<20),
			TemplatesDir:     getEnv("TEMPLATES_DIR", ""),
			Currency:         getEnv("DISPLAY_CURRENCY", "USD"),
			ShutdownTimeout:  getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Extract: ExtractConfig{
			PdfToText:        getEnv("PDFTOTEXT", "pdftotext"),
			Fallback:         getEnvAsBool("EXTRACT_FALLBACK", true),
			ArtifactCacheDir: getEnv("ARTIFACT_CACHE_DIR", "./tmp"),
			Timeout:          getEnvAsDuration("EXTRACT_TIMEOUT", time.Minute),
		},
		Inbox: InboxConfig{
			Dir:      getEnv("INBOX_DIR", ""),
			Schedule: getEnv("INBOX_SCHEDULE", "@every 5m"),
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
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

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("DB_URL", c.Database.DSN, Required).
		Field("HTTP_ADDR", c.Server.HTTPAddr, Required).
		Field("GRPC_ADDR", c.Server.GRPCAddr, Required).
		Field("DISPLAY_CURRENCY", c.Server.Currency, CurrencyCode).
		Field("UPLOAD_MAX_BYTES", c.Server.UploadMaxBytes, Positive).
		Field("UPLOAD_RATE_PER_SEC", c.Server.UploadRatePerSec, Positive)
	if c.Inbox.Enabled() {
		v.Field("INBOX_SCHEDULE", c.Inbox.Schedule, Required)
	}
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
