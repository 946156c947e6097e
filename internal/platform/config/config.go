package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ReviewAPIBaseURL string
	ReviewAPITimeout time.Duration

	IdempotencyTTL      time.Duration
	PendingSyncInterval time.Duration
	OutboxPollInterval  time.Duration
	OutboxBatchSize     int

	EnablePendingSync bool
	EnableOutboxRelay bool
	AutoMigrate       bool
}

// Load resolves configuration from the environment. Every key is read through
// viper so defaults and overrides live in one place.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := Config{
		ServiceName:  strings.TrimSpace(v.GetString("SERVICE_NAME")),
		HTTPPort:     strings.TrimSpace(v.GetString("HTTP_PORT")),
		PostgresDSN:  strings.TrimSpace(v.GetString("POSTGRES_DSN")),
		KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),

		RedisAddr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		ReviewAPIBaseURL: strings.TrimSpace(v.GetString("REVIEW_API_BASE_URL")),
		ReviewAPITimeout: v.GetDuration("REVIEW_API_TIMEOUT"),

		IdempotencyTTL:      v.GetDuration("IDEMPOTENCY_TTL"),
		PendingSyncInterval: v.GetDuration("PENDING_SYNC_INTERVAL"),
		OutboxPollInterval:  v.GetDuration("OUTBOX_POLL_INTERVAL"),
		OutboxBatchSize:     v.GetInt("OUTBOX_BATCH_SIZE"),

		EnablePendingSync: v.GetBool("ENABLE_PENDING_SYNC"),
		EnableOutboxRelay: v.GetBool("ENABLE_OUTBOX_RELAY"),
		AutoMigrate:       v.GetBool("AUTO_MIGRATE"),
	}
	if len(cfg.KafkaBrokers) == 0 {
		cfg.KafkaBrokers = []string{"localhost:9092"}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("SERVICE_NAME must not be empty")
	}
	if c.IdempotencyTTL <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL must be positive")
	}
	if c.PendingSyncInterval <= 0 || c.OutboxPollInterval <= 0 {
		return fmt.Errorf("worker intervals must be positive")
	}
	if c.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "reviewdesk")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REVIEW_API_TIMEOUT", 10*time.Second)
	v.SetDefault("IDEMPOTENCY_TTL", 7*24*time.Hour)
	v.SetDefault("PENDING_SYNC_INTERVAL", 30*time.Second)
	v.SetDefault("OUTBOX_POLL_INTERVAL", 2*time.Second)
	v.SetDefault("OUTBOX_BATCH_SIZE", 100)
	v.SetDefault("ENABLE_PENDING_SYNC", true)
	v.SetDefault("ENABLE_OUTBOX_RELAY", true)
	v.SetDefault("AUTO_MIGRATE", false)
}

func splitList(raw string) []string {
	var values []string
	for _, value := range strings.Split(raw, ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			values = append(values, value)
		}
	}
	return values
}
