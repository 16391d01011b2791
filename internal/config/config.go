// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"time"
)

// Config captures server-level configuration.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// DBPath is the SQLite database file path.
	DBPath string

	// JWTSecret signs session tokens. Must be overridden in production.
	JWTSecret string

	// TokenTTL is how long session tokens remain valid.
	TokenTTL time.Duration

	// BaseURL is the public origin used to build share links,
	// e.g. "https://salamilink.app".
	BaseURL string
}

// FromEnv reads configuration from the environment, applying development
// defaults for anything unset.
func FromEnv() Config {
	cfg := Config{
		Addr:      getEnv("ADDR", ":8080"),
		DBPath:    getEnv("DB_PATH", "./data/salamilink.db"),
		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		TokenTTL:  30 * 24 * time.Hour,
		BaseURL:   getEnv("BASE_URL", "http://localhost:8080"),
	}

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.TokenTTL = d
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
