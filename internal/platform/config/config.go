package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr           string
	DatabaseURL    string
	Redis          RedisConfig
	AuditBrokers   string
	IdempotencyTTL time.Duration
}

// RedisConfig captures connection settings for the idempotency replay store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Empty DATABASE_URL or REDIS_URL selects the in-memory backends.
func FromEnv() Server {
	addr := os.Getenv("ENROLL_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	ttl := durationEnv("IDEMPOTENCY_TTL", 24*time.Hour)

	return Server{
		Addr:           addr,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AuditBrokers:   os.Getenv("AUDIT_BROKERS"),
		IdempotencyTTL: ttl,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: intEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
