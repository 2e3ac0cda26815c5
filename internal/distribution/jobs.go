// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package distribution

import (
	"context"
	"fmt"

	"github.com/tomtom215/dailyfacts/internal/config"
	"github.com/tomtom215/dailyfacts/internal/scheduler"
)

// Job names.
const (
	JobDistribution      = "distribution"
	JobRetry             = "notification_retry"
	JobStreaks           = "streak_recompute"
	JobSessionCleanup    = "session_cleanup"
	JobNotificationPrune = "notification_prune"
	JobAnalytics         = "analytics_snapshot"
)

// Registrar registers named jobs.
type Registrar interface {
	Register(name, spec string, handler scheduler.Handler) error
}

// Jobs bundles the handlers registered on the scheduler.
type Jobs struct {
	Distributor *Distributor
	Retry       *RetryProcessor
	Maintenance *Maintainer
}

// Register adds every job with its configured cadence.
func (j *Jobs) Register(r Registrar, specs *config.SchedulerConfig) error {
	entries := []struct {
		name    string
		spec    string
		handler scheduler.Handler
	}{
		{JobDistribution, specs.DistributionSpec, j.distribute},
		{JobRetry, specs.RetrySpec, j.retry},
		{JobStreaks, specs.StreakSpec, j.streaks},
		{JobSessionCleanup, specs.SessionCleanupSpec, j.sessions},
		{JobNotificationPrune, specs.NotificationPruneSpec, j.prune},
		{JobAnalytics, specs.AnalyticsSpec, j.analytics},
	}
	for _, e := range entries {
		if err := r.Register(e.name, e.spec, e.handler); err != nil {
			return fmt.Errorf("register %s: %w", e.name, err)
		}
	}
	return nil
}

func (j *Jobs) distribute(ctx context.Context) error {
	_, err := j.Distributor.Run(ctx)
	return err
}

func (j *Jobs) retry(ctx context.Context) error {
	_, err := j.Retry.Run(ctx)
	return err
}

func (j *Jobs) streaks(ctx context.Context) error {
	_, err := j.Maintenance.RecomputeStreaks(ctx)
	return err
}

func (j *Jobs) sessions(ctx context.Context) error {
	_, err := j.Maintenance.CleanupSessions(ctx)
	return err
}

func (j *Jobs) prune(ctx context.Context) error {
	_, err := j.Maintenance.PruneNotifications(ctx)
	return err
}

func (j *Jobs) analytics(ctx context.Context) error {
	_, err := j.Maintenance.SnapshotAnalytics(ctx)
	return err
}
