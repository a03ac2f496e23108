package config

import (
	"strings"
	"time"

	"github.com/onnwee/optimize-kit/backend/internal/utils"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	ListenAddr string
	Env        string // raw ENV; "development" enables verbose error bodies
	LogLevel   string // debug, info, warn, error

	// Response cache
	CacheBackend       string // memory or lru
	CacheTTL           time.Duration
	CacheSweepInterval time.Duration
	CacheLRUMaxMB      int64
	CacheLRUMaxEntries int64

	// Rate limiting
	EnableRateLimit        bool
	RateLimitWindow        time.Duration
	RateLimitMax           int
	RateLimitSweepInterval time.Duration
	RateLimitGlobal        float64 // requests per second across all clients; 0 disables
	RateLimitGlobalBurst   int

	// Request hygiene
	RequestTimeout     time.Duration
	MaxBodyBytes       int64
	CompressThreshold  int
	CORSAllowedOrigins []string
	RoutesFile         string // optional YAML route policy file

	// Observability settings
	ServiceVersion    string
	OTELEnabled       bool    // enable OpenTelemetry tracing
	OTELEndpoint      string  // OpenTelemetry collector endpoint
	OTELSampleRate    float64 // trace sampling rate (0.0 to 1.0)
	SentryDSN         string  // Sentry DSN for error reporting
	SentryEnvironment string  // Sentry environment (dev, staging, production)
	SentryRelease     string  // Sentry release version
	SentrySampleRate  float64 // Sentry error sampling rate (0.0 to 1.0)
}

var cached *Config

// Load reads env vars once and caches them.
func Load() *Config {
	if cached != nil {
		return cached
	}
	cached = &Config{
		ListenAddr: utils.GetEnvAsString("LISTEN_ADDR", ":8000"),
		Env:        strings.ToLower(utils.GetEnvAsString("ENV", "")),
		LogLevel:   strings.ToLower(utils.GetEnvAsString("LOG_LEVEL", "info")),

		CacheBackend:       strings.ToLower(utils.GetEnvAsString("CACHE_BACKEND", "memory")),
		CacheTTL:           time.Duration(utils.GetEnvAsInt("CACHE_TTL_SECONDS", 60)) * time.Second,
		CacheSweepInterval: utils.GetEnvAsMillis("CACHE_SWEEP_INTERVAL_MS", 5*time.Minute),
		CacheLRUMaxMB:      utils.GetEnvAsInt64("CACHE_LRU_MAX_MB", 64),
		CacheLRUMaxEntries: utils.GetEnvAsInt64("CACHE_LRU_MAX_ENTRIES", 10000),

		EnableRateLimit:        utils.GetEnvAsBool("ENABLE_RATE_LIMIT", true),
		RateLimitWindow:        utils.GetEnvAsMillis("RATE_LIMIT_WINDOW_MS", time.Minute),
		RateLimitMax:           utils.GetEnvAsInt("RATE_LIMIT_MAX", 60),
		RateLimitSweepInterval: utils.GetEnvAsMillis("RATE_LIMIT_SWEEP_INTERVAL_MS", time.Minute),
		RateLimitGlobal:        utils.GetEnvAsFloat("RATE_LIMIT_GLOBAL", 0),
		RateLimitGlobalBurst:   utils.GetEnvAsInt("RATE_LIMIT_GLOBAL_BURST", 200),

		RequestTimeout:     utils.GetEnvAsMillis("REQUEST_TIMEOUT_MS", 10*time.Second),
		MaxBodyBytes:       utils.GetEnvAsInt64("MAX_BODY_BYTES", 1<<20),
		CompressThreshold:  utils.GetEnvAsInt("COMPRESS_THRESHOLD_BYTES", 1024),
		CORSAllowedOrigins: utils.GetEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}, ","),
		RoutesFile:         utils.GetEnvAsString("ROUTES_FILE", ""),

		ServiceVersion:    utils.GetEnvAsString("SERVICE_VERSION", "dev"),
		OTELEnabled:       utils.GetEnvAsBool("OTEL_ENABLED", false),
		OTELEndpoint:      utils.GetEnvAsString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELSampleRate:    utils.GetEnvAsFloat("OTEL_TRACE_SAMPLE_RATE", 0.1),
		SentryDSN:         utils.GetEnvAsString("SENTRY_DSN", ""),
		SentryEnvironment: utils.GetEnvAsString("SENTRY_ENVIRONMENT", ""),
		SentryRelease:     utils.GetEnvAsString("SENTRY_RELEASE", ""),
		SentrySampleRate:  utils.GetEnvAsFloat("SENTRY_SAMPLE_RATE", 1.0),
	}
	if cached.CacheBackend != "lru" {
		cached.CacheBackend = "memory"
	}
	if cached.SentryEnvironment == "" {
		if cached.Env != "" {
			cached.SentryEnvironment = cached.Env
		} else {
			cached.SentryEnvironment = "development"
		}
	}
	if cached.SentryRelease == "" {
		cached.SentryRelease = cached.ServiceVersion
	}

	return cached
}

// ResetForTest clears cached config; for use in tests only.
func ResetForTest() { cached = nil }

// IsDevelopment reports whether ENV is "development".
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool { return c.Env == "production" }

// GetEnvBool reads a boolean environment variable with a default.
// Use this when you need to check a flag not present in the cached config.
func (c *Config) GetEnvBool(key string, def bool) bool {
	return utils.GetEnvAsBool(key, def)
}
