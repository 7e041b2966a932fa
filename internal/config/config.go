package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string
	RedisURL       string
	KafkaBrokers   []string
	NatsURL        string
	Port           string
	EventSinks     []string
	TopicPrefix    string
	IdempotencyTTL time.Duration
	RelayInterval  time.Duration
}

// Load reads the service settings from the environment. A .env file in the
// working directory is applied first when present; real variables win.
func Load(defaultPort string) *Config {
	_ = godotenv.Load()

	return &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),
		KafkaBrokers:   splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		NatsURL:        os.Getenv("NATS_URL"),
		Port:           getEnv("PORT", defaultPort),
		EventSinks:     splitList(getEnv("EVENT_SINKS", "kafka")),
		TopicPrefix:    getEnv("EVENT_TOPIC_PREFIX", "transvoucher"),
		IdempotencyTTL: getDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		RelayInterval:  getDuration("WEBHOOK_RELAY_INTERVAL", 30*time.Second),
	}
}

// HasSink reports whether name is among the configured event sinks.
func (c *Config) HasSink(name string) bool {
	for _, s := range c.EventSinks {
		if s == name {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
