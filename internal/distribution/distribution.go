// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

// Package distribution implements the recurring daily-fact jobs.
//
// The handlers here contain no timer logic. Each reads "now" from an
// injected clock.Clock so it can be driven directly by tests and by the
// admin API, and is registered on the job scheduler by RegisterJobs:
//
//   - distribution (hourly): matches users whose delivery time falls in the
//     current reference hour, enforces the daily cap, selects one item and
//     sends it.
//   - notification_retry (every 15 minutes): advances failed notifications
//     with exponential backoff, cancelling those whose user opted out.
//   - streak_recompute, session_cleanup, notification_prune and
//     analytics_snapshot: daily and hourly maintenance.
//
// A failure for one user never aborts the batch. Repository errors are
// logged with user and operation context and counted in the job summary.
package distribution

import (
	"context"
	"time"

	"github.com/tomtom215/dailyfacts/internal/config"
	"github.com/tomtom215/dailyfacts/internal/events"
	"github.com/tomtom215/dailyfacts/internal/models"
	"github.com/tomtom215/dailyfacts/internal/recommend"
)

// Config tunes the distribution jobs.
type Config struct {
	BatchSize   int
	BatchPause  time.Duration
	Parallelism int

	RetryBatchSize int
	MaxRetries     int
	RetryBaseDelay time.Duration
	ResendOnRetry  bool

	SessionRetention      time.Duration
	NotificationRetention time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:             50,
		BatchPause:            time.Second,
		Parallelism:           10,
		RetryBatchSize:        50,
		MaxRetries:            3,
		RetryBaseDelay:        5 * time.Minute,
		SessionRetention:      30 * 24 * time.Hour,
		NotificationRetention: 90 * 24 * time.Hour,
	}
}

// ConfigFrom maps scheduler settings onto Config, keeping defaults for
// unset values.
func ConfigFrom(s *config.SchedulerConfig) Config {
	c := DefaultConfig()
	if s.BatchSize > 0 {
		c.BatchSize = s.BatchSize
	}
	if s.BatchPause > 0 {
		c.BatchPause = s.BatchPause
	}
	if s.Parallelism > 0 {
		c.Parallelism = s.Parallelism
	}
	if s.RetryBatchSize > 0 {
		c.RetryBatchSize = s.RetryBatchSize
	}
	if s.MaxRetries > 0 {
		c.MaxRetries = s.MaxRetries
	}
	if s.RetryBaseDelay > 0 {
		c.RetryBaseDelay = s.RetryBaseDelay
	}
	c.ResendOnRetry = s.ResendOnRetry
	if s.SessionRetention > 0 {
		c.SessionRetention = s.SessionRetention
	}
	if s.NotificationRetention > 0 {
		c.NotificationRetention = s.NotificationRetention
	}
	return c
}

// Store is the repository surface used by distribution and retry.
type Store interface {
	FindScheduledUsers(ctx context.Context) ([]models.ScheduledUser, error)
	FindUserPreferences(ctx context.Context, userID string) (*models.UserPreferences, error)
	CountTodaysNotifications(ctx context.Context, userID string, dayStart time.Time) (int, error)
	FindEligibleItems(ctx context.Context, filter models.ItemFilter) ([]models.ContentItem, error)
	FindItem(ctx context.Context, id string) (*models.ContentItem, error)
	CreateNotification(ctx context.Context, in models.NewNotification, now time.Time) (*models.NotificationRecord, error)
	UpdateNotification(ctx context.Context, id string, patch models.NotificationPatch, now time.Time) error
	FindFailedNotifications(ctx context.Context, now time.Time, maxRetries, limit int) ([]models.NotificationRecord, error)
	UpsertInteraction(ctx context.Context, userID, itemID string, patch models.InteractionPatch, now time.Time) error
}

// Selector picks personalized items for a user.
type Selector interface {
	SelectPersonalized(ctx context.Context, userID string, opts recommend.Options) ([]models.ContentItem, error)
}

// EventPublisher receives delivery outcomes.
type EventPublisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, events.Event) error { return nil }
