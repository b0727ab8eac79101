// Package config builds runtime configuration from environment variables so
// main stays lean. Empty backing-store settings select in-memory
// implementations, which keeps local development dependency-free.
package config

import (
	"os"
	"strings"
	"time"
)

// Config captures everything the funding engine needs at startup.
type Config struct {
	Addr string

	// PostgresDSN selects the PostgreSQL stores when set; empty runs
	// everything in memory.
	PostgresDSN string

	// RedisURL enables the platform-stats cache when set.
	RedisURL string

	// KafkaBrokers enables the Kafka funding-event publisher when set.
	KafkaBrokers []string
	KafkaTopic   string

	// JWTSigningKey signs and verifies admin bearer tokens.
	JWTSigningKey string

	// VerificationRequired gates new cases behind doctor verification
	// instead of creating them directly active.
	VerificationRequired bool

	LogLevel string
}

// StatsCacheTTL bounds staleness of cached platform statistics.
var StatsCacheTTL = 30 * time.Second

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	addr := os.Getenv("MEDFUND_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("MEDFUND_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; override in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("MEDFUND_KAFKA_TOPIC")
	if topic == "" {
		topic = "medfund.funding.events"
	}

	var brokers []string
	if raw := os.Getenv("MEDFUND_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Config{
		Addr:                 addr,
		PostgresDSN:          os.Getenv("MEDFUND_POSTGRES_DSN"),
		RedisURL:             os.Getenv("MEDFUND_REDIS_URL"),
		KafkaBrokers:         brokers,
		KafkaTopic:           topic,
		JWTSigningKey:        jwtSigningKey,
		VerificationRequired: os.Getenv("MEDFUND_VERIFICATION_REQUIRED") == "true",
		LogLevel:             os.Getenv("MEDFUND_LOG_LEVEL"),
	}
}
