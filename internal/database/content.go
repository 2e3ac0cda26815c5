// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/dailyfacts/internal/database/query"
	"github.com/tomtom215/dailyfacts/internal/models"
)

const itemColumns = `i.id, i.category_id, i.title, i.body, i.difficulty, i.tags,
	i.created_at, i.published_at, i.view_count, i.like_count, i.share_count,
	i.bookmark_count, i.featured, i.approved, i.active`

// itemTarget collects scan destinations for itemColumns.
type itemTarget struct {
	item       models.ContentItem
	difficulty string
	tags       string
}

func (t *itemTarget) dest() []any {
	return []any{
		&t.item.ID, &t.item.CategoryID, &t.item.Title, &t.item.Body, &t.difficulty, &t.tags,
		&t.item.CreatedAt, &t.item.PublishedAt, &t.item.ViewCount, &t.item.LikeCount, &t.item.ShareCount,
		&t.item.BookmarkCount, &t.item.Featured, &t.item.Approved, &t.item.Active,
	}
}

func (t *itemTarget) finish() (*models.ContentItem, error) {
	d, err := models.ParseDifficulty(t.difficulty)
	if err != nil {
		return nil, err
	}
	item := t.item
	item.Difficulty = d
	item.Tags = decodeTags(t.tags)
	item.CreatedAt = item.CreatedAt.UTC()
	item.PublishedAt = item.PublishedAt.UTC()
	return &item, nil
}

func scanItem(row rowScanner) (*models.ContentItem, error) {
	var t itemTarget
	if err := row.Scan(t.dest()...); err != nil {
		return nil, err
	}
	return t.finish()
}

// eligibleWhere adds the approved, active and published conditions for
// items aliased as i.
func eligibleWhere(wb *query.WhereBuilder, now time.Time) {
	wb.AddClause("i.approved").
		AddClause("i.active").
		AddClause("i.published_at <= ?", now.UTC())
}

// FindEligibleItems returns approved, active, published items matching the
// filter.
func (db *DB) FindEligibleItems(ctx context.Context, filter models.ItemFilter) (items []models.ContentItem, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "content_items", start, err) }(time.Now())

	wb := query.NewWhereBuilder()
	eligibleWhere(wb, filter.Now)
	if filter.Difficulty != 0 {
		wb.AddClause("i.difficulty = ?", filter.Difficulty.String())
	}
	wb.AddIn("i.category_id", filter.CategoryIDs)
	if filter.ExcludeViewedBy != "" {
		wb.AddClause(`NOT EXISTS (
			SELECT 1 FROM user_interactions ui
			WHERE ui.item_id = i.id AND ui.user_id = ? AND ui.viewed
		)`, filter.ExcludeViewedBy)
	}
	where, args := wb.BuildWithPrefix()

	orderBy := "i.published_at DESC, i.id"
	if filter.Order == models.OrderPopularity {
		orderBy = "i.featured DESC, i.like_count DESC, i.view_count DESC, i.id"
	}

	q := `SELECT ` + itemColumns + ` FROM content_items i ` + where + ` ORDER BY ` + orderBy
	if filter.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible items: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// FindLikedItems returns eligible items liked by any of the given users,
// most recently liked first.
func (db *DB) FindLikedItems(ctx context.Context, userIDs []string, now time.Time, limit int) (items []models.ContentItem, err error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "user_interactions", start, err) }(time.Now())

	wb := query.NewWhereBuilder()
	eligibleWhere(wb, now)
	where, args := wb.BuildWithPrefix()

	q := `WITH liked AS (
			SELECT item_id, MAX(updated_at) AS last_liked
			FROM user_interactions
			WHERE liked AND user_id IN (` + placeholders(len(userIDs)) + `)
			GROUP BY item_id
		)
		SELECT ` + itemColumns + `
		FROM liked l
		JOIN content_items i ON i.id = l.item_id
		` + where + `
		ORDER BY l.last_liked DESC, i.id`
	args = append(stringArgs(userIDs), args...)
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query liked items: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan liked item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// FindItem returns a content item by id, or nil when it does not exist.
func (db *DB) FindItem(ctx context.Context, id string) (item *models.ContentItem, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "content_items", start, err) }(time.Now())

	rows, err := db.conn.QueryContext(ctx, `SELECT `+itemColumns+` FROM content_items i WHERE i.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query content item: %w", err)
	}
	defer closeQuietly(rows)

	if !rows.Next() {
		return nil, rows.Err()
	}
	item, err = scanItem(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan content item: %w", err)
	}
	return item, nil
}
