// Package config provides centralized configuration management. It loads
// configuration from environment variables (with optional .env loading for
// development), validates required fields, and provides sensible defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kuitang/noteful/internal/ratelimit"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	ListenAddr      string
	ShutdownTimeout time.Duration

	// Document store
	MongoURI     string
	DatabaseName string

	// Tokens
	JWTSecret string
	JWTExpiry time.Duration

	// Rate limiting
	RateLimit ratelimit.Config
}

// ValidationError collects every configuration problem found in one pass.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first without overriding variables already set.
func Load() (*Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:      getEnvOrDefault("LISTEN_ADDR", ":8080"),
		ShutdownTimeout: parseDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),

		MongoURI:     getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		DatabaseName: getEnvOrDefault("DB_NAME", "noteful"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTExpiry: parseDurationOrDefault("JWT_EXPIRY", time.Hour),

		RateLimit: ratelimit.Config{
			RPS:             parseFloat64OrDefault("RATE_LIMIT_RPS", 10),
			Burst:           parseIntOrDefault("RATE_LIMIT_BURST", 20),
			CleanupInterval: parseDurationOrDefault("RATE_LIMIT_CLEANUP_INTERVAL", time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.MongoURI == "" {
		errs = append(errs, "MONGODB_URI is required")
	}
	if c.DatabaseName == "" {
		errs = append(errs, "DB_NAME is required")
	}

	if c.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required (generate with: openssl rand -hex 32)")
	} else if len(c.JWTSecret) < 32 {
		errs = append(errs, "JWT_SECRET must be at least 32 characters")
	}

	if c.JWTExpiry <= 0 {
		errs = append(errs, "JWT_EXPIRY must be positive")
	}

	if c.RateLimit.RPS <= 0 {
		errs = append(errs, "RATE_LIMIT_RPS must be positive")
	}
	if c.RateLimit.Burst <= 0 {
		errs = append(errs, "RATE_LIMIT_BURST must be positive")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}

// PrintStartupSummary prints a human-readable summary of the configuration
// to stderr. Secrets are never printed.
func (c *Config) PrintStartupSummary() {
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "noteful server starting...")
	fmt.Fprintf(os.Stderr, "  Listen:  %s\n", c.ListenAddr)
	fmt.Fprintf(os.Stderr, "  Mongo:   %s (db: %s)\n", redactURI(c.MongoURI), c.DatabaseName)
	fmt.Fprintf(os.Stderr, "  Tokens:  HS256, expiry %s\n", c.JWTExpiry)
	fmt.Fprintf(os.Stderr, "  Limits:  %.0f rps, burst %d\n", c.RateLimit.RPS, c.RateLimit.Burst)
	fmt.Fprintln(os.Stderr, "")
}

// redactURI strips the userinfo section from a connection string.
func redactURI(uri string) string {
	schemeEnd := strings.Index(uri, "://")
	if schemeEnd < 0 {
		return uri
	}
	at := strings.Index(uri[schemeEnd+3:], "@")
	if at < 0 {
		return uri
	}
	return uri[:schemeEnd+3] + "***@" + uri[schemeEnd+3+at+1:]
}

// Helper functions for parsing environment variables

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func parseIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
