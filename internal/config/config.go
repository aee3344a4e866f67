// Package config loads service settings from environment variables with
// defaults, and validates them on startup so misconfiguration fails fast.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Orders   OrdersConfig
	Upload   UploadConfig
	Images   ImagesConfig
	CORS     CORSConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Archive  ArchiveConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 5000)
	Port int `env:"SERVER_PORT" default:"5000"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests. Image batches
	// can be slow, so keep it generous (default: 90s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// StorageConfig selects and tunes the record store.
type StorageConfig struct {
	// Backend is one of csv, memory, sqlite, badger, postgres (default: csv)
	Backend string `env:"STORE_BACKEND" default:"csv"`

	// DataDir holds the CSV files, the SQLite database or the Badger
	// directory (default: ./data)
	DataDir string `env:"DATA_DIR" default:"./data"`

	// DatabaseURL is the PostgreSQL connection string, required for the
	// postgres backend. DB_URL is accepted for compatibility.
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns int `env:"DB_MAX_CONNS" default:"10"`
	MinConns int `env:"DB_MIN_CONNS" default:"1"`
}

// OrdersConfig holds order workflow settings.
type OrdersConfig struct {
	// DecrementStock removes one unit from inventory per order (default: false).
	// Leave it off for clients that lower the quantity themselves before
	// creating the order.
	DecrementStock bool `env:"ORDERS_DECREMENT_STOCK" default:"false"`
}

// UploadConfig bounds request bodies.
type UploadConfig struct {
	// MaxRequestSize is the largest accepted multipart body in bytes (default: 16MB)
	MaxRequestSize int64 `env:"UPLOAD_MAX_REQUEST_SIZE" default:"16777216"`
}

// ImagesConfig holds background-removal settings.
type ImagesConfig struct {
	// Dir is the root for uploads/ and processed/ (default: static/images)
	Dir string `env:"IMAGES_DIR" default:"static/images"`

	// Remover is "alpha" (use the image's own transparency) or "http"
	Remover string `env:"IMAGES_REMOVER" default:"alpha"`

	// RemoverURL is the endpoint for the http remover
	RemoverURL string `env:"IMAGES_REMOVER_URL"`

	Workers       int           `env:"IMAGES_WORKERS" default:"4"`
	MaxConcurrent int           `env:"IMAGES_MAX_CONCURRENT" default:"2"`
	MaxWait       time.Duration `env:"IMAGES_MAX_WAIT" default:"30s"`
	JPEGQuality   int           `env:"IMAGES_JPEG_QUALITY" default:"95"`
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the limit per client IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables API key authentication (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of valid keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ArchiveConfig holds retention settings for archived orders and the
// audit log. Zero days keeps data forever. The audit log is rewritten whole
// on every mutation, so it is bounded by default.
type ArchiveConfig struct {
	RetentionDays      int           `env:"ARCHIVE_RETENTION_DAYS" default:"0"`
	AuditRetentionDays int           `env:"AUDIT_RETENTION_DAYS" default:"90"`
	CheckInterval      time.Duration `env:"ARCHIVE_CHECK_INTERVAL" default:"24h"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
