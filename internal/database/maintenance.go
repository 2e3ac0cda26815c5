// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/dailyfacts/internal/models"
)

// DeleteExpiredSessions removes sessions that expired at or before now or
// were last seen before idleCutoff.
func (db *DB) DeleteExpiredSessions(ctx context.Context, now, idleCutoff time.Time) (n int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("DELETE", "sessions", start, err) }(time.Now())

	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ? OR last_seen_at < ?`, now.UTC(), idleCutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

// DeleteNotificationsBefore removes notification records created before
// cutoff.
func (db *DB) DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (n int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("DELETE", "notifications", start, err) }(time.Now())

	res, err := db.conn.ExecContext(ctx, `DELETE FROM notifications WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune notifications: %w", err)
	}
	return res.RowsAffected()
}

// SnapshotDailyAnalytics aggregates activity in [dayStart, dayEnd) and
// stores it under dayStart's date, replacing any earlier snapshot.
func (db *DB) SnapshotDailyAnalytics(ctx context.Context, dayStart, dayEnd, now time.Time) (snap *models.DailyAnalytics, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("UPSERT", "daily_analytics", start, err) }(time.Now())

	from, to := dayStart.UTC(), dayEnd.UTC()
	// The row is keyed by the calendar date of dayStart in its own zone.
	snap = &models.DailyAnalytics{Date: time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), 0, 0, 0, 0, time.UTC)}

	err = db.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE viewed AND viewed_at >= ? AND viewed_at < ?),
			COUNT(*) FILTER (WHERE liked AND updated_at >= ? AND updated_at < ?),
			COUNT(*) FILTER (WHERE bookmarked AND updated_at >= ? AND updated_at < ?),
			COUNT(*) FILTER (WHERE shared AND updated_at >= ? AND updated_at < ?)
		FROM user_interactions`,
		from, to, from, to, from, to, from, to,
	).Scan(&snap.Views, &snap.Likes, &snap.Bookmarks, &snap.Shares)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate interactions: %w", err)
	}

	err = db.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status IN (?, ?) AND sent_at >= ? AND sent_at < ?),
			COUNT(*) FILTER (WHERE status = ? AND updated_at >= ? AND updated_at < ?)
		FROM notifications`,
		string(models.NotificationSent), string(models.NotificationDelivered), from, to,
		string(models.NotificationFailed), from, to,
	).Scan(&snap.NotificationsSent, &snap.NotificationsFailed)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate notifications: %w", err)
	}

	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE last_active_at >= ? AND last_active_at < ?`, from, to,
	).Scan(&snap.ActiveUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO daily_analytics (day, views, likes, bookmarks, shares,
			notifications_sent, notifications_failed, active_users, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (day) DO UPDATE SET
			views = excluded.views,
			likes = excluded.likes,
			bookmarks = excluded.bookmarks,
			shares = excluded.shares,
			notifications_sent = excluded.notifications_sent,
			notifications_failed = excluded.notifications_failed,
			active_users = excluded.active_users,
			created_at = excluded.created_at`,
		snap.Date, snap.Views, snap.Likes, snap.Bookmarks, snap.Shares,
		snap.NotificationsSent, snap.NotificationsFailed, snap.ActiveUsers, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to store analytics snapshot: %w", err)
	}
	return snap, nil
}

// FindDailyAnalytics returns the snapshot for the given date, or nil.
func (db *DB) FindDailyAnalytics(ctx context.Context, day time.Time) (snap *models.DailyAnalytics, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "daily_analytics", start, err) }(time.Now())

	d := day
	snap = &models.DailyAnalytics{}
	err = db.conn.QueryRowContext(ctx, `
		SELECT day, views, likes, bookmarks, shares, notifications_sent, notifications_failed, active_users
		FROM daily_analytics WHERE day = ?`,
		time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
	).Scan(&snap.Date, &snap.Views, &snap.Likes, &snap.Bookmarks, &snap.Shares,
		&snap.NotificationsSent, &snap.NotificationsFailed, &snap.ActiveUsers)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan analytics snapshot: %w", err)
	}
	snap.Date = snap.Date.UTC()
	return snap, nil
}
