// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/dailyfacts/config.yaml",
	"/etc/dailyfacts/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults, the lowest config layer.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:      "/data/dailyfacts.duckdb",
			MaxMemory: "1GB",
		},
		Cache: CacheConfig{
			Type:             CacheTypeMemory,
			ProfileTTL:       30 * time.Minute,
			BadgerDir:        "/data/cache",
			RedisAddr:        "localhost:6379",
			RedisDialTimeout: 5 * time.Second,
			RedisKeyPrefix:   "dailyfacts:",
		},
		Recommend: RecommendConfig{
			DefaultLimit: 5,
			MaxLimit:     50,
		},
		Scheduler: SchedulerConfig{
			Timezone:              "UTC",
			DistributionSpec:      "0 * * * *",
			RetrySpec:             "*/15 * * * *",
			StreakSpec:            "5 0 * * *",
			SessionCleanupSpec:    "30 * * * *",
			NotificationPruneSpec: "0 3 * * *",
			AnalyticsSpec:         "15 0 * * *",
			BatchSize:             50,
			BatchPause:            time.Second,
			Parallelism:           10,
			RetryBatchSize:        50,
			MaxRetries:            3,
			RetryBaseDelay:        5 * time.Minute,
			SessionRetention:      30 * 24 * time.Hour,
			NotificationRetention: 90 * 24 * time.Hour,
		},
		Delivery: DeliveryConfig{
			Sender:             SenderLog,
			Timeout:            10 * time.Second,
			RatePerSecond:      20,
			Burst:              20,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		Events: EventsConfig{
			Enabled: true,
			Topic:   "dailyfacts.notification",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, the first config file found
// and environment variables, then validates it.
func Load() (*Config, error) {
	return load(findConfigFile())
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.Server.CORSOrigins = splitList(cfg.Server.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// splitList expands comma-separated entries, as set from CORS_ORIGINS.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps environment variable names (lowercased) to config keys.
var envMappings = map[string]string{
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"cache_type":                 "cache.type",
	"cache_profile_ttl":          "cache.profile_ttl",
	"cache_badger_dir":           "cache.badger_dir",
	"cache_badger_in_memory":     "cache.badger_in_memory",
	"redis_addr":                 "cache.redis_addr",
	"redis_password":             "cache.redis_password",
	"redis_db":                   "cache.redis_db",
	"redis_dial_timeout":         "cache.redis_dial_timeout",
	"redis_key_prefix":           "cache.redis_key_prefix",
	"recommend_default_limit":    "recommend.default_limit",
	"recommend_max_limit":        "recommend.max_limit",
	"enable_category_engagement": "recommend.category_engagement",

	"scheduler_timezone":                "scheduler.timezone",
	"scheduler_distribution_spec":       "scheduler.distribution_spec",
	"scheduler_retry_spec":              "scheduler.retry_spec",
	"scheduler_streak_spec":             "scheduler.streak_spec",
	"scheduler_session_cleanup_spec":    "scheduler.session_cleanup_spec",
	"scheduler_notification_prune_spec": "scheduler.notification_prune_spec",
	"scheduler_analytics_spec":          "scheduler.analytics_spec",
	"distribution_batch_size":           "scheduler.batch_size",
	"distribution_batch_pause":          "scheduler.batch_pause",
	"distribution_parallelism":          "scheduler.parallelism",
	"retry_batch_size":                  "scheduler.retry_batch_size",
	"retry_max_attempts":                "scheduler.max_retries",
	"retry_base_delay":                  "scheduler.retry_base_delay",
	"retry_resend":                      "scheduler.resend_on_retry",
	"session_retention":                 "scheduler.session_retention",
	"notification_retention":            "scheduler.notification_retention",
	"scheduler_seed":                    "scheduler.seed",

	"delivery_sender":               "delivery.sender",
	"delivery_webhook_url":          "delivery.webhook_url",
	"delivery_timeout":              "delivery.timeout",
	"delivery_rate_per_second":      "delivery.rate_per_second",
	"delivery_burst":                "delivery.burst",
	"delivery_breaker_max_failures": "delivery.breaker_max_failures",
	"delivery_breaker_timeout":      "delivery.breaker_timeout",

	"events_enabled": "events.enabled",
	"nats_url":       "events.nats_url",
	"events_topic":   "events.topic",

	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"rate_limit_requests":   "server.rate_limit_requests",
	"rate_limit_window":     "server.rate_limit_window",
	"cors_origins":          "server.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable to a koanf path.
// Unknown variables return "" and are ignored.
//
//   - DUCKDB_PATH -> database.path
//   - SCHEDULER_TIMEZONE -> scheduler.timezone
//   - NATS_URL -> events.nats_url
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
