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

	"github.com/tomtom215/dailyfacts/internal/database/query"
	"github.com/tomtom215/dailyfacts/internal/models"
)

const interactionColumns = `ui.user_id, ui.item_id, ui.viewed, ui.viewed_at, ui.liked, ui.bookmarked,
	ui.shared, ui.delivery_status, ui.time_spent_seconds, ui.created_at, ui.updated_at`

// interactionTarget collects scan destinations for interactionColumns.
type interactionTarget struct {
	rec      models.InteractionRecord
	viewedAt sql.NullTime
	status   sql.NullString
}

func (t *interactionTarget) dest() []any {
	return []any{
		&t.rec.UserID, &t.rec.ItemID, &t.rec.Viewed, &t.viewedAt, &t.rec.Liked, &t.rec.Bookmarked,
		&t.rec.Shared, &t.status, &t.rec.TimeSpentSeconds, &t.rec.CreatedAt, &t.rec.UpdatedAt,
	}
}

func (t *interactionTarget) finish() *models.InteractionRecord {
	rec := t.rec
	rec.ViewedAt = nullTimePtr(t.viewedAt)
	if t.status.Valid {
		rec.DeliveryStatus = models.DeliveryStatus(t.status.String)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return &rec
}

// FindInteractions returns the user's interaction records matching the
// filter. With WithItem set each record carries its content item.
func (db *DB) FindInteractions(ctx context.Context, userID string, filter models.InteractionFilter) (records []models.InteractionRecord, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "user_interactions", start, err) }(time.Now())

	wb := query.NewWhereBuilder().AddClause("ui.user_id = ?", userID)
	if filter.ViewedOnly {
		wb.AddClause("ui.viewed")
	}
	if filter.LikedOnly {
		wb.AddClause("ui.liked")
	}
	wb.AddTimeRange("ui.viewed_at", filter.ViewedSince, nil)
	where, args := wb.BuildWithPrefix()

	cols := interactionColumns
	from := `user_interactions ui`
	if filter.WithItem {
		cols += `, ` + itemColumns
		from += ` JOIN content_items i ON i.id = ui.item_id`
	}
	orderBy := `ui.updated_at DESC, ui.item_id`
	if filter.OrderByViewedAt {
		orderBy = `ui.viewed_at ASC NULLS LAST, ui.item_id`
	}

	q := `SELECT ` + cols + ` FROM ` + from + ` ` + where + ` ORDER BY ` + orderBy
	if filter.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var it interactionTarget
		var item itemTarget
		dest := it.dest()
		if filter.WithItem {
			dest = append(dest, item.dest()...)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		rec := it.finish()
		if filter.WithItem {
			if rec.Item, err = item.finish(); err != nil {
				return nil, fmt.Errorf("failed to scan interaction item: %w", err)
			}
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// FindInteraction returns one interaction record, or nil when the pair has
// never interacted.
func (db *DB) FindInteraction(ctx context.Context, userID, itemID string) (rec *models.InteractionRecord, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "user_interactions", start, err) }(time.Now())

	var it interactionTarget
	err = db.conn.QueryRowContext(ctx,
		`SELECT `+interactionColumns+` FROM user_interactions ui WHERE ui.user_id = ? AND ui.item_id = ?`,
		userID, itemID).Scan(it.dest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan interaction: %w", err)
	}
	return it.finish(), nil
}

// UpsertInteraction creates or updates the (user, item) record. Only fields
// set in the patch are written; a null clears the column, which for
// non-nullable flags means false or zero. updated_at moves only when the
// patch carries a user action.
func (db *DB) UpsertInteraction(ctx context.Context, userID, itemID string, patch models.InteractionPatch, now time.Time) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("UPSERT", "user_interactions", start, err) }(time.Now())

	now = now.UTC()
	cols := []string{"user_id", "item_id", "created_at", "updated_at"}
	args := []any{userID, itemID, now, now}

	set := func(col string, value any) {
		cols = append(cols, col)
		args = append(args, value)
	}
	if patch.Viewed.IsSet() {
		v, _ := patch.Viewed.Get()
		set("viewed", v)
	}
	if patch.ViewedAt.IsSet() {
		var v any
		if t, ok := patch.ViewedAt.Get(); ok {
			v = t.UTC()
		}
		set("viewed_at", v)
	}
	if patch.Liked.IsSet() {
		v, _ := patch.Liked.Get()
		set("liked", v)
	}
	if patch.Bookmarked.IsSet() {
		v, _ := patch.Bookmarked.Get()
		set("bookmarked", v)
	}
	if patch.Shared.IsSet() {
		v, _ := patch.Shared.Get()
		set("shared", v)
	}
	if patch.DeliveryStatus.IsSet() {
		var v any
		if s, ok := patch.DeliveryStatus.Get(); ok {
			v = string(s)
		}
		set("delivery_status", v)
	}
	if patch.TimeSpentSeconds.IsSet() {
		v, _ := patch.TimeSpentSeconds.Get()
		set("time_spent_seconds", v)
	}

	// updated_at tracks user activity; delivery status writes leave it.
	first := 4
	if patch.UserActivity() {
		first = 3
	}
	updates := make([]string, 0, len(cols)-first)
	for _, col := range cols[first:] {
		updates = append(updates, col+" = excluded."+col)
	}

	onConflict := `DO NOTHING`
	if len(updates) > 0 {
		onConflict = `DO UPDATE SET ` + strings.Join(updates, ", ")
	}
	q := `INSERT INTO user_interactions (` + strings.Join(cols, ", ") + `)
		VALUES (` + placeholders(len(cols)) + `)
		ON CONFLICT (user_id, item_id) ` + onConflict
	if _, err = db.conn.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("failed to upsert interaction: %w", err)
	}
	return nil
}

// CategoryEngagement returns, per category the user has viewed, the share
// of viewed items that were liked or bookmarked.
func (db *DB) CategoryEngagement(ctx context.Context, userID string) (out map[string]float64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "user_interactions", start, err) }(time.Now())

	rows, err := db.conn.QueryContext(ctx, `
		SELECT i.category_id,
			COUNT(*) FILTER (WHERE ui.liked OR ui.bookmarked) AS engaged,
			COUNT(*) AS viewed
		FROM user_interactions ui
		JOIN content_items i ON i.id = ui.item_id
		WHERE ui.user_id = ? AND ui.viewed
		GROUP BY i.category_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category engagement: %w", err)
	}
	defer closeQuietly(rows)

	out = make(map[string]float64)
	for rows.Next() {
		var category string
		var engaged, viewed int64
		if err := rows.Scan(&category, &engaged, &viewed); err != nil {
			return nil, fmt.Errorf("failed to scan category engagement: %w", err)
		}
		if viewed > 0 {
			out[category] = float64(engaged) / float64(viewed)
		}
	}
	return out, rows.Err()
}

// ItemCounter names a lifetime counter column on content_items.
type ItemCounter string

const (
	CounterViews     ItemCounter = "view_count"
	CounterLikes     ItemCounter = "like_count"
	CounterShares    ItemCounter = "share_count"
	CounterBookmarks ItemCounter = "bookmark_count"
)

// IncrementItemCounter adds delta to one lifetime counter, never going
// below zero.
func (db *DB) IncrementItemCounter(ctx context.Context, itemID string, counter ItemCounter, delta int64) (err error) {
	switch counter {
	case CounterViews, CounterLikes, CounterShares, CounterBookmarks:
	default:
		return fmt.Errorf("unknown item counter %q", counter)
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("UPDATE", "content_items", start, err) }(time.Now())

	col := string(counter)
	_, err = db.conn.ExecContext(ctx,
		`UPDATE content_items SET `+col+` = GREATEST(0, `+col+` + ?) WHERE id = ?`, delta, itemID)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", col, err)
	}
	return nil
}
