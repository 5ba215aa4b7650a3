package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Storage, cache, and broker
// settings are optional: absent values fall back to the in-memory wiring so
// a development server runs with zero external services.
type Server struct {
	Addr          string
	Env           string
	AdminToken    string
	JWTSigningKey string
	DatabaseURL   string
	Redis         RedisConfig
	KafkaBrokers  []string
	KafkaTopic    string

	// MinLeadDays is the minimum calendar-day lead time between confirming
	// a payroll run and its first occurrence.
	MinLeadDays int
}

// RedisConfig configures the optional calendar projection cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MonthTTL     time.Duration
}

// FromEnv builds a Server config from environment variables so main stays
// lean.
func FromEnv() Server {
	addr := os.Getenv("PAYLANE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	env := os.Getenv("PAYLANE_ENV")
	if env == "" {
		env = "development"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	leadDays := envInt("PAYLANE_MIN_LEAD_DAYS", 3)

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}
	topic := os.Getenv("KAFKA_NOTIFICATIONS_TOPIC")
	if topic == "" {
		topic = "paylane.notifications"
	}

	return Server{
		Addr:          addr,
		Env:           env,
		AdminToken:    os.Getenv("PAYLANE_ADMIN_TOKEN"),
		JWTSigningKey: jwtSigningKey,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			MonthTTL:     5 * time.Minute,
		},
		KafkaBrokers: brokers,
		KafkaTopic:   topic,
		MinLeadDays:  leadDays,
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
