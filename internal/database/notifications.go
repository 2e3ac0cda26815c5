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
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/dailyfacts/internal/models"
)

const notificationColumns = `n.id, n.user_id, n.item_id, n.title, n.body, n.status, n.retry_count,
	n.next_retry_at, n.error_detail, n.sent_at, n.created_at, n.updated_at`

func scanNotification(row rowScanner) (*models.NotificationRecord, error) {
	var n models.NotificationRecord
	var itemID, errorDetail sql.NullString
	var nextRetry, sentAt sql.NullTime
	var status string
	err := row.Scan(&n.ID, &n.UserID, &itemID, &n.Title, &n.Body, &status, &n.RetryCount,
		&nextRetry, &errorDetail, &sentAt, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	n.Status = models.NotificationStatus(status)
	n.ItemID = nullStringPtr(itemID)
	n.ErrorDetail = nullStringPtr(errorDetail)
	n.NextRetryAt = nullTimePtr(nextRetry)
	n.SentAt = nullTimePtr(sentAt)
	n.CreatedAt = n.CreatedAt.UTC()
	n.UpdatedAt = n.UpdatedAt.UTC()
	return &n, nil
}

// CreateNotification inserts a notification record with a fresh id.
func (db *DB) CreateNotification(ctx context.Context, in models.NewNotification, now time.Time) (rec *models.NotificationRecord, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("INSERT", "notifications", start, err) }(time.Now())

	status := in.Status
	if status == "" {
		status = models.NotificationPending
	}
	now = now.UTC()
	rec = &models.NotificationRecord{
		ID:        uuid.New().String(),
		UserID:    in.UserID,
		ItemID:    in.ItemID,
		Title:     in.Title,
		Body:      in.Body,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, item_id, title, body, status, retry_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		rec.ID, rec.UserID, stringPtrArg(rec.ItemID), rec.Title, rec.Body, string(rec.Status), now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}
	return rec, nil
}

// UpdateNotification applies the set fields of patch. Updating a missing
// record is not an error.
func (db *DB) UpdateNotification(ctx context.Context, id string, patch models.NotificationPatch, now time.Time) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("UPDATE", "notifications", start, err) }(time.Now())

	sets := []string{"updated_at = ?"}
	args := []any{now.UTC()}
	add := func(col string, value any) {
		sets = append(sets, col+" = ?")
		args = append(args, value)
	}
	// status is required; a null status leaves it unchanged.
	if s, ok := patch.Status.Get(); ok {
		add("status", string(s))
	}
	if patch.RetryCount.IsSet() {
		v, _ := patch.RetryCount.Get()
		add("retry_count", v)
	}
	if patch.NextRetryAt.IsSet() {
		var v any
		if t, ok := patch.NextRetryAt.Get(); ok {
			v = t.UTC()
		}
		add("next_retry_at", v)
	}
	if patch.ErrorDetail.IsSet() {
		add("error_detail", patch.ErrorDetail.SQLValue())
	}
	if patch.SentAt.IsSet() {
		var v any
		if t, ok := patch.SentAt.Get(); ok {
			v = t.UTC()
		}
		add("sent_at", v)
	}
	args = append(args, id)

	_, err = db.conn.ExecContext(ctx,
		`UPDATE notifications SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	return nil
}

// FindNotification returns a notification by id, or nil.
func (db *DB) FindNotification(ctx context.Context, id string) (rec *models.NotificationRecord, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "notifications", start, err) }(time.Now())

	rec, err = scanNotification(db.conn.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications n WHERE n.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}
	return rec, nil
}

// FindFailedNotifications returns failed notifications with retries left
// whose retry time has come, oldest first.
func (db *DB) FindFailedNotifications(ctx context.Context, now time.Time, maxRetries, limit int) (recs []models.NotificationRecord, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "notifications", start, err) }(time.Now())

	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications n
		WHERE n.status = ?
		  AND n.retry_count < ?
		  AND (n.next_retry_at IS NULL OR n.next_retry_at <= ?)
		ORDER BY n.created_at, n.id
		LIMIT ?`,
		string(models.NotificationFailed), maxRetries, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query failed notifications: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		rec, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// FindUserNotifications returns the user's most recent notifications.
func (db *DB) FindUserNotifications(ctx context.Context, userID string, limit int) (recs []models.NotificationRecord, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "notifications", start, err) }(time.Now())

	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications n
		WHERE n.user_id = ?
		ORDER BY n.created_at DESC, n.id
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query user notifications: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		rec, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// CountTodaysNotifications counts the user's pending, sent or delivered
// notifications created at or after dayStart.
func (db *DB) CountTodaysNotifications(ctx context.Context, userID string, dayStart time.Time) (count int, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "notifications", start, err) }(time.Now())

	err = db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = ? AND status IN (?, ?, ?) AND created_at >= ?`,
		userID, string(models.NotificationPending), string(models.NotificationSent),
		string(models.NotificationDelivered), dayStart.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}
