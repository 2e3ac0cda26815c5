// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateScheduler(); err != nil {
		return err
	}
	if err := c.validateDelivery(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Type {
	case CacheTypeNone, CacheTypeMemory:
	case CacheTypeBadger:
		if !c.Cache.BadgerInMemory && c.Cache.BadgerDir == "" {
			return fmt.Errorf("CACHE_BADGER_DIR is required for the badger cache")
		}
	case CacheTypeRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis cache")
		}
	default:
		return fmt.Errorf("CACHE_TYPE must be one of none, memory, badger, redis, got %q", c.Cache.Type)
	}
	if c.Cache.Type != CacheTypeNone && c.Cache.ProfileTTL <= 0 {
		return fmt.Errorf("CACHE_PROFILE_TTL must be positive, got %v", c.Cache.ProfileTTL)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.DefaultLimit < 1 {
		return fmt.Errorf("RECOMMEND_DEFAULT_LIMIT must be >= 1, got %d", c.Recommend.DefaultLimit)
	}
	if c.Recommend.MaxLimit < c.Recommend.DefaultLimit {
		return fmt.Errorf("RECOMMEND_MAX_LIMIT (%d) must be >= RECOMMEND_DEFAULT_LIMIT (%d)",
			c.Recommend.MaxLimit, c.Recommend.DefaultLimit)
	}
	return nil
}

func (c *Config) validateScheduler() error {
	s := c.Scheduler
	if _, err := s.Location(); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE %q is invalid: %w", s.Timezone, err)
	}

	specs := map[string]string{
		"distribution_spec":       s.DistributionSpec,
		"retry_spec":              s.RetrySpec,
		"streak_spec":             s.StreakSpec,
		"session_cleanup_spec":    s.SessionCleanupSpec,
		"notification_prune_spec": s.NotificationPruneSpec,
		"analytics_spec":          s.AnalyticsSpec,
	}
	for name, spec := range specs {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("scheduler.%s %q is invalid: %w", name, spec, err)
		}
	}

	if s.BatchSize < 1 {
		return fmt.Errorf("DISTRIBUTION_BATCH_SIZE must be >= 1, got %d", s.BatchSize)
	}
	if s.BatchPause < 0 {
		return fmt.Errorf("DISTRIBUTION_BATCH_PAUSE must be >= 0, got %v", s.BatchPause)
	}
	if s.Parallelism < 1 {
		return fmt.Errorf("DISTRIBUTION_PARALLELISM must be >= 1, got %d", s.Parallelism)
	}
	if s.RetryBatchSize < 1 {
		return fmt.Errorf("RETRY_BATCH_SIZE must be >= 1, got %d", s.RetryBatchSize)
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be >= 0, got %d", s.MaxRetries)
	}
	if s.RetryBaseDelay <= 0 {
		return fmt.Errorf("RETRY_BASE_DELAY must be positive, got %v", s.RetryBaseDelay)
	}
	if s.SessionRetention <= 0 || s.NotificationRetention <= 0 {
		return fmt.Errorf("retention windows must be positive")
	}
	return nil
}

func (c *Config) validateDelivery() error {
	d := c.Delivery
	switch d.Sender {
	case SenderLog:
	case SenderWebhook:
		if d.WebhookURL == "" {
			return fmt.Errorf("DELIVERY_WEBHOOK_URL is required for the webhook sender")
		}
		u, err := url.Parse(d.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("DELIVERY_WEBHOOK_URL must be an absolute http(s) URL, got %q", d.WebhookURL)
		}
	default:
		return fmt.Errorf("DELIVERY_SENDER must be log or webhook, got %q", d.Sender)
	}
	if d.RatePerSecond < 0 {
		return fmt.Errorf("DELIVERY_RATE_PER_SECOND must be >= 0, got %v", d.RatePerSecond)
	}
	if d.RatePerSecond > 0 && d.Burst < 1 {
		return fmt.Errorf("DELIVERY_BURST must be >= 1 when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be >= 0, got %d", c.Server.RateLimitReqs)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
