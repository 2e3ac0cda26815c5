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

const userColumns = `u.id, u.active, u.current_streak, u.longest_streak, u.last_active_at, u.created_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var lastActive sql.NullTime
	if err := row.Scan(&u.ID, &u.Active, &u.CurrentStreak, &u.LongestStreak, &lastActive, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.LastActiveAt = nullTimePtr(lastActive)
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

// FindUser returns the user, or nil when it does not exist.
func (db *DB) FindUser(ctx context.Context, id string) (user *models.User, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "users", start, err) }(time.Now())

	row := db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = ?`, id)
	user, err = scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

const preferenceColumns = `p.user_id, p.difficulty, p.notifications_enabled, p.notification_time,
	p.timezone, p.weekend_notifications, p.max_notifications_per_day`

func scanPreferences(row rowScanner, extra ...any) (*models.UserPreferences, error) {
	var p models.UserPreferences
	var difficulty string
	dest := []any{
		&p.UserID, &difficulty, &p.NotificationsEnabled, &p.NotificationTime,
		&p.Timezone, &p.WeekendNotifications, &p.MaxNotificationsPerDay,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	d, err := models.ParseDifficulty(difficulty)
	if err != nil {
		return nil, err
	}
	p.Difficulty = d
	return &p, nil
}

// FindUserPreferences returns the user's preferences including enabled
// categories, or nil when none are stored.
func (db *DB) FindUserPreferences(ctx context.Context, userID string) (prefs *models.UserPreferences, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "user_preferences", start, err) }(time.Now())

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+preferenceColumns+` FROM user_preferences p WHERE p.user_id = ?`, userID)
	prefs, err = scanPreferences(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan preferences: %w", err)
	}

	cats, err := db.userCategories(ctx, []string{userID})
	if err != nil {
		return nil, err
	}
	prefs.CategoryIDs = cats[userID]
	return prefs, nil
}

// userCategories loads enabled category ids for the given users.
func (db *DB) userCategories(ctx context.Context, userIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	query := `SELECT user_id, category_id FROM user_categories
		WHERE user_id IN (` + placeholders(len(userIDs)) + `)
		ORDER BY user_id, category_id`
	rows, err := db.conn.QueryContext(ctx, query, stringArgs(userIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query user categories: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var userID, categoryID string
		if err := rows.Scan(&userID, &categoryID); err != nil {
			return nil, fmt.Errorf("failed to scan user category: %w", err)
		}
		out[userID] = append(out[userID], categoryID)
	}
	return out, rows.Err()
}

// FindScheduledUsers returns active users with notifications enabled,
// together with their preferences.
func (db *DB) FindScheduledUsers(ctx context.Context) (result []models.ScheduledUser, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "users", start, err) }(time.Now())

	query := `SELECT ` + preferenceColumns + `, ` + userColumns + `
		FROM users u
		JOIN user_preferences p ON p.user_id = u.id
		WHERE u.active AND p.notifications_enabled
		ORDER BY u.id`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled users: %w", err)
	}
	defer closeQuietly(rows)

	ids := make([]string, 0)
	for rows.Next() {
		var u models.User
		var lastActive sql.NullTime
		prefs, err := scanPreferences(rows,
			&u.ID, &u.Active, &u.CurrentStreak, &u.LongestStreak, &lastActive, &u.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled user: %w", err)
		}
		u.LastActiveAt = nullTimePtr(lastActive)
		result = append(result, models.ScheduledUser{User: u, Preferences: *prefs})
		ids = append(ids, u.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	cats, err := db.userCategories(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Preferences.CategoryIDs = cats[result[i].User.ID]
	}
	return result, nil
}

// FindActiveUsers returns every active user.
func (db *DB) FindActiveUsers(ctx context.Context) (users []models.User, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "users", start, err) }(time.Now())

	rows, err := db.conn.QueryContext(ctx, `SELECT `+userColumns+` FROM users u WHERE u.active ORDER BY u.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active users: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// FindUsersByCategoryOverlap returns active users other than excludeUserID
// who share at least one enabled category and the given difficulty.
func (db *DB) FindUsersByCategoryOverlap(ctx context.Context, categoryIDs []string, excludeUserID string,
	difficulty models.Difficulty, limit int) (users []models.User, err error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "user_categories", start, err) }(time.Now())

	query := `SELECT ` + userColumns + `
		FROM users u
		JOIN user_preferences p ON p.user_id = u.id
		WHERE u.active
		  AND u.id <> ?
		  AND p.difficulty = ?
		  AND EXISTS (
			SELECT 1 FROM user_categories uc
			WHERE uc.user_id = u.id AND uc.category_id IN (` + placeholders(len(categoryIDs)) + `)
		  )
		ORDER BY u.id`
	args := append([]any{excludeUserID, difficulty.String()}, stringArgs(categoryIDs)...)
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query peer users: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan peer user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateStreak persists a recomputed streak.
func (db *DB) UpdateStreak(ctx context.Context, update models.StreakUpdate) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("UPDATE", "users", start, err) }(time.Now())

	_, err = db.conn.ExecContext(ctx,
		`UPDATE users SET current_streak = ?, longest_streak = ? WHERE id = ?`,
		update.CurrentStreak, update.LongestStreak, update.UserID)
	if err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}
	return nil
}
