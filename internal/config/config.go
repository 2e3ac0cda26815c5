// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package config

import "time"

// Config is the root service configuration.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	Recommend RecommendConfig `koanf:"recommend"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Delivery  DeliveryConfig  `koanf:"delivery"`
	Events    EventsConfig    `koanf:"events"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = DuckDB default
}

// Cache backends.
const (
	CacheTypeNone   = "none"
	CacheTypeMemory = "memory"
	CacheTypeBadger = "badger"
	CacheTypeRedis  = "redis"
)

// CacheConfig selects the profile cache backend.
type CacheConfig struct {
	Type       string        `koanf:"type"`
	ProfileTTL time.Duration `koanf:"profile_ttl"`

	BadgerDir      string `koanf:"badger_dir"`
	BadgerInMemory bool   `koanf:"badger_in_memory"`

	RedisAddr        string        `koanf:"redis_addr"`
	RedisPassword    string        `koanf:"redis_password"`
	RedisDB          int           `koanf:"redis_db"`
	RedisDialTimeout time.Duration `koanf:"redis_dial_timeout"`
	RedisKeyPrefix   string        `koanf:"redis_key_prefix"`
}

// RecommendConfig tunes personalized selection.
type RecommendConfig struct {
	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`

	// CategoryEngagement enables computing per-category engagement from
	// interaction history. When false the engagement weight stays 0.
	CategoryEngagement bool `koanf:"category_engagement"`
}

// SchedulerConfig holds job cadences and distribution tuning.
// Cadences use standard 5-field cron syntax.
type SchedulerConfig struct {
	Timezone string `koanf:"timezone"`

	DistributionSpec      string `koanf:"distribution_spec"`
	RetrySpec             string `koanf:"retry_spec"`
	StreakSpec            string `koanf:"streak_spec"`
	SessionCleanupSpec    string `koanf:"session_cleanup_spec"`
	NotificationPruneSpec string `koanf:"notification_prune_spec"`
	AnalyticsSpec         string `koanf:"analytics_spec"`

	BatchSize   int           `koanf:"batch_size"`
	BatchPause  time.Duration `koanf:"batch_pause"`
	Parallelism int           `koanf:"parallelism"`

	RetryBatchSize int           `koanf:"retry_batch_size"`
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
	ResendOnRetry  bool          `koanf:"resend_on_retry"`

	SessionRetention      time.Duration `koanf:"session_retention"`
	NotificationRetention time.Duration `koanf:"notification_retention"`

	// Seed for the fallback item picker. 0 seeds from the wall clock.
	Seed int64 `koanf:"seed"`
}

// Notification senders.
const (
	SenderLog     = "log"
	SenderWebhook = "webhook"
)

// DeliveryConfig configures the notification sender.
type DeliveryConfig struct {
	Sender     string        `koanf:"sender"`
	WebhookURL string        `koanf:"webhook_url"`
	Timeout    time.Duration `koanf:"timeout"`

	RatePerSecond float64 `koanf:"rate_per_second"`
	Burst         int     `koanf:"burst"`

	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// EventsConfig configures delivery outcome events.
// An empty NATSURL uses an in-process channel publisher.
type EventsConfig struct {
	Enabled bool   `koanf:"enabled"`
	NATSURL string `koanf:"nats_url"`
	// Topic is the subject prefix; outcomes publish to <topic>.sent and
	// <topic>.failed.
	Topic string `koanf:"topic"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RateLimitReqs   int           `koanf:"rate_limit_requests"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	// CORSOrigins lists allowed browser origins. Empty disables CORS.
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Location loads the scheduler's reference time zone.
func (s SchedulerConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(s.Timezone)
}
