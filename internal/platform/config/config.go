package config

import (
	"os"
	"strings"
	"time"
)

// Config captures process-level configuration. Built once in main from the
// environment so the rest of the code never reads env vars directly.
type Config struct {
	Addr           string
	DatabaseURL    string
	Redis          RedisConfig
	KafkaBrokers   []string
	JWTSigningKey  string
	JWTIssuer      string
	AccessTokenTTL time.Duration
}

// RedisConfig holds connection settings for the optional latest-location cache.
type RedisConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
// Unset variables fall back to development defaults; DATABASE_URL left empty
// selects the in-memory stores.
func FromEnv() Config {
	addr := os.Getenv("BEACON_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	ttl := 24 * time.Hour
	if raw := os.Getenv("ACCESS_TOKEN_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			ttl = parsed
		}
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Config{
		Addr:        addr,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		KafkaBrokers:   brokers,
		JWTSigningKey:  jwtSigningKey,
		JWTIssuer:      "beacon",
		AccessTokenTTL: ttl,
	}
}
