package config

import (
	"os"
	"strings"
	"time"
)

// Config captures process level configuration. FromEnv builds it from
// environment variables so main stays lean.
type Config struct {
	Addr string

	// PostgresDSN selects the postgres-backed stores; empty falls back to the
	// in-memory stores (development mode).
	PostgresDSN string

	// RedisURL selects the distributed per-issuer/per-user lock; empty falls
	// back to the in-process keyed mutex.
	RedisURL string

	// KafkaBrokers selects the Kafka audit sink; empty falls back to the
	// in-memory audit store.
	KafkaBrokers []string
	KafkaTopic   string

	// ProviderURL is the base URL of the verification/issuance/revocation
	// provider. ProviderTimeout bounds every call made against it.
	ProviderURL     string
	ProviderTimeout time.Duration

	// IssuerDid identifies the issuer record this gateway accepts requests
	// for. The record itself is provisioned out-of-band.
	IssuerDid string

	JWTSigningKey string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:            envOr("ISSUER_GATEWAY_ADDR", ":8080"),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		RedisURL:        os.Getenv("REDIS_URL"),
		KafkaTopic:      envOr("KAFKA_AUDIT_TOPIC", "issuer-gateway.audit"),
		ProviderURL:     envOr("PROVIDER_URL", "http://localhost:9090"),
		ProviderTimeout: 15 * time.Second,
		IssuerDid:       os.Getenv("ISSUER_DID"),
		JWTSigningKey:   os.Getenv("JWT_SIGNING_KEY"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	if timeout := os.Getenv("PROVIDER_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.ProviderTimeout = d
		}
	}
	if cfg.JWTSigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
