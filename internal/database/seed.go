// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/dailyfacts/internal/models"
)

// UpsertUser creates or replaces a user row.
func (db *DB) UpsertUser(ctx context.Context, u models.User) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("UPSERT", "users", start, err) }(time.Now())

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO users (id, active, current_streak, longest_streak, last_active_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			active = excluded.active,
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			last_active_at = excluded.last_active_at`,
		u.ID, u.Active, u.CurrentStreak, u.LongestStreak, timeArg(u.LastActiveAt), u.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// TouchUser records activity at the given time.
func (db *DB) TouchUser(ctx context.Context, userID string, at time.Time) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("UPDATE", "users", start, err) }(time.Now())

	_, err = db.conn.ExecContext(ctx, `UPDATE users SET last_active_at = ? WHERE id = ?`, at.UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to touch user: %w", err)
	}
	return nil
}

// UpsertPreferences replaces a user's preferences and enabled categories.
func (db *DB) UpsertPreferences(ctx context.Context, p models.UserPreferences) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("UPSERT", "user_preferences", start, err) }(time.Now())

	difficulty := p.Difficulty
	if !difficulty.Valid() {
		difficulty = models.DifficultyMedium
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, difficulty, notifications_enabled, notification_time,
			timezone, weekend_notifications, max_notifications_per_day)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			difficulty = excluded.difficulty,
			notifications_enabled = excluded.notifications_enabled,
			notification_time = excluded.notification_time,
			timezone = excluded.timezone,
			weekend_notifications = excluded.weekend_notifications,
			max_notifications_per_day = excluded.max_notifications_per_day`,
		p.UserID, difficulty.String(), p.NotificationsEnabled, p.NotificationTime,
		p.Timezone, p.WeekendNotifications, p.MaxNotificationsPerDay)
	if err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM user_categories WHERE user_id = ?`, p.UserID); err != nil {
		return fmt.Errorf("failed to clear user categories: %w", err)
	}
	for _, categoryID := range p.CategoryIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO user_categories (user_id, category_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
			p.UserID, categoryID)
		if err != nil {
			return fmt.Errorf("failed to insert user category: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit preferences: %w", err)
	}
	return nil
}

// UpsertContentItem creates or replaces a content item.
func (db *DB) UpsertContentItem(ctx context.Context, item models.ContentItem) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("UPSERT", "content_items", start, err) }(time.Now())

	tags, err := encodeTags(item.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO content_items (id, category_id, title, body, difficulty, tags, created_at, published_at,
			view_count, like_count, share_count, bookmark_count, featured, approved, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			category_id = excluded.category_id,
			title = excluded.title,
			body = excluded.body,
			difficulty = excluded.difficulty,
			tags = excluded.tags,
			published_at = excluded.published_at,
			view_count = excluded.view_count,
			like_count = excluded.like_count,
			share_count = excluded.share_count,
			bookmark_count = excluded.bookmark_count,
			featured = excluded.featured,
			approved = excluded.approved,
			active = excluded.active`,
		item.ID, item.CategoryID, item.Title, item.Body, item.Difficulty.String(), tags,
		item.CreatedAt.UTC(), item.PublishedAt.UTC(),
		item.ViewCount, item.LikeCount, item.ShareCount, item.BookmarkCount,
		item.Featured, item.Approved, item.Active)
	if err != nil {
		return fmt.Errorf("failed to upsert content item: %w", err)
	}
	return nil
}

// CreateSession stores a session row.
func (db *DB) CreateSession(ctx context.Context, id, userID string, createdAt, lastSeenAt, expiresAt time.Time) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("INSERT", "sessions", start, err) }(time.Now())

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, last_seen_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		id, userID, createdAt.UTC(), lastSeenAt.UTC(), expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// CountSessions returns the number of stored sessions.
func (db *DB) CountSessions(ctx context.Context) (n int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n)
	return n, err
}
