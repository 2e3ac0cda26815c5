// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package distribution

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/dailyfacts/internal/clock"
	"github.com/tomtom215/dailyfacts/internal/metrics"
	"github.com/tomtom215/dailyfacts/internal/models"
)

// MaintenanceStore is the repository surface used by maintenance jobs.
type MaintenanceStore interface {
	FindActiveUsers(ctx context.Context) ([]models.User, error)
	UpdateStreak(ctx context.Context, update models.StreakUpdate) error
	DeleteExpiredSessions(ctx context.Context, now, idleCutoff time.Time) (int64, error)
	DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	SnapshotDailyAnalytics(ctx context.Context, dayStart, dayEnd, now time.Time) (*models.DailyAnalytics, error)
}

// GarbageCollector is implemented by cache backends that need periodic
// compaction.
type GarbageCollector interface {
	RunGC() error
}

// Maintainer runs the daily and hourly housekeeping jobs.
type Maintainer struct {
	store  MaintenanceStore
	gc     GarbageCollector
	clock  clock.Clock
	loc    *time.Location
	config Config
	logger zerolog.Logger
}

// NewMaintainer creates a Maintainer. gc may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMaintainer(store MaintenanceStore, gc GarbageCollector, clk clock.Clock, loc *time.Location,
	cfg Config, logger zerolog.Logger) *Maintainer {
	if loc == nil {
		loc = time.UTC
	}
	return &Maintainer{
		store:  store,
		gc:     gc,
		clock:  clk,
		loc:    loc,
		config: cfg,
		logger: logger.With().Str("component", "maintenance").Logger(),
	}
}

// RecomputeStreaks resets streaks of users inactive since before
// yesterday, starts a streak for users active today, and keeps the
// longest streak as a running maximum. It returns the number of users
// updated; one user's failure does not stop the others.
func (m *Maintainer) RecomputeStreaks(ctx context.Context) (int, error) {
	now := m.clock.Now()
	users, err := m.store.FindActiveUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("load active users: %w", err)
	}

	today := clock.StartOfDay(now, m.loc)
	updated := 0
	for i := range users {
		u := &users[i]
		current := nextStreak(u, today)
		longest := max(u.LongestStreak, current)
		if current == u.CurrentStreak && longest == u.LongestStreak {
			continue
		}
		err := m.store.UpdateStreak(ctx, models.StreakUpdate{
			UserID:        u.ID,
			CurrentStreak: current,
			LongestStreak: longest,
		})
		if err != nil {
			m.logger.Error().Err(err).Str("user_id", u.ID).Str("operation", "update_streak").Msg("Streak update failed")
			continue
		}
		updated++
	}
	metrics.RecordMaintenance("streaks", int64(updated))
	m.logger.Info().Int("users", len(users)).Int("updated", updated).Msg("Streaks recomputed")
	return updated, nil
}

// nextStreak applies the daily streak rule relative to the start of today.
func nextStreak(u *models.User, today time.Time) int {
	yesterday := today.AddDate(0, 0, -1)
	switch {
	case u.LastActiveAt != nil && !u.LastActiveAt.Before(today):
		if u.CurrentStreak == 0 {
			return 1
		}
		return u.CurrentStreak
	case u.LastActiveAt != nil && !u.LastActiveAt.Before(yesterday):
		return u.CurrentStreak
	default:
		return 0
	}
}

// CleanupSessions deletes expired sessions and sessions idle longer than
// the retention window.
func (m *Maintainer) CleanupSessions(ctx context.Context) (int64, error) {
	now := m.clock.Now()
	n, err := m.store.DeleteExpiredSessions(ctx, now, now.Add(-m.config.SessionRetention))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	metrics.RecordMaintenance("sessions", n)
	m.logger.Info().Int64("deleted", n).Msg("Sessions cleaned up")
	return n, nil
}

// PruneNotifications deletes notification records older than the
// retention window, then compacts the cache when it supports it.
func (m *Maintainer) PruneNotifications(ctx context.Context) (int64, error) {
	now := m.clock.Now()
	n, err := m.store.DeleteNotificationsBefore(ctx, now.Add(-m.config.NotificationRetention))
	if err != nil {
		return 0, fmt.Errorf("prune notifications: %w", err)
	}
	metrics.RecordMaintenance("notifications", n)
	m.logger.Info().Int64("deleted", n).Msg("Notifications pruned")

	if m.gc != nil {
		if err := m.gc.RunGC(); err != nil {
			m.logger.Warn().Err(err).Msg("Cache garbage collection failed")
		}
	}
	return n, nil
}

// SnapshotAnalytics aggregates the previous reference-calendar day.
func (m *Maintainer) SnapshotAnalytics(ctx context.Context) (*models.DailyAnalytics, error) {
	now := m.clock.Now()
	today := clock.StartOfDay(now, m.loc)
	yesterday := today.AddDate(0, 0, -1)

	snap, err := m.store.SnapshotDailyAnalytics(ctx, yesterday, today, now)
	if err != nil {
		return nil, fmt.Errorf("snapshot analytics for %s: %w", yesterday.Format(time.DateOnly), err)
	}
	metrics.RecordMaintenance("analytics", 1)
	m.logger.Info().
		Str("day", yesterday.Format(time.DateOnly)).
		Int64("views", snap.Views).
		Int64("notifications_sent", snap.NotificationsSent).
		Int64("active_users", snap.ActiveUsers).
		Msg("Analytics snapshot stored")
	return snap, nil
}
