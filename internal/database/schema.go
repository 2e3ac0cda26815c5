// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package database

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR PRIMARY KEY,
		active BOOLEAN NOT NULL DEFAULT true,
		current_streak INTEGER NOT NULL DEFAULT 0,
		longest_streak INTEGER NOT NULL DEFAULT 0,
		last_active_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id VARCHAR PRIMARY KEY,
		difficulty VARCHAR NOT NULL DEFAULT 'MEDIUM',
		notifications_enabled BOOLEAN NOT NULL DEFAULT true,
		notification_time VARCHAR NOT NULL DEFAULT '09:00',
		timezone VARCHAR NOT NULL DEFAULT 'UTC',
		weekend_notifications BOOLEAN NOT NULL DEFAULT true,
		max_notifications_per_day INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS user_categories (
		user_id VARCHAR NOT NULL,
		category_id VARCHAR NOT NULL,
		PRIMARY KEY (user_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS content_items (
		id VARCHAR PRIMARY KEY,
		category_id VARCHAR NOT NULL,
		title VARCHAR NOT NULL,
		body VARCHAR NOT NULL DEFAULT '',
		difficulty VARCHAR NOT NULL,
		tags VARCHAR NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL,
		published_at TIMESTAMP NOT NULL,
		view_count BIGINT NOT NULL DEFAULT 0,
		like_count BIGINT NOT NULL DEFAULT 0,
		share_count BIGINT NOT NULL DEFAULT 0,
		bookmark_count BIGINT NOT NULL DEFAULT 0,
		featured BOOLEAN NOT NULL DEFAULT false,
		approved BOOLEAN NOT NULL DEFAULT false,
		active BOOLEAN NOT NULL DEFAULT true
	)`,
	`CREATE TABLE IF NOT EXISTS user_interactions (
		user_id VARCHAR NOT NULL,
		item_id VARCHAR NOT NULL,
		viewed BOOLEAN NOT NULL DEFAULT false,
		viewed_at TIMESTAMP,
		liked BOOLEAN NOT NULL DEFAULT false,
		bookmarked BOOLEAN NOT NULL DEFAULT false,
		shared BOOLEAN NOT NULL DEFAULT false,
		delivery_status VARCHAR,
		time_spent_seconds INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id VARCHAR PRIMARY KEY,
		user_id VARCHAR NOT NULL,
		item_id VARCHAR,
		title VARCHAR NOT NULL DEFAULT '',
		body VARCHAR NOT NULL DEFAULT '',
		status VARCHAR NOT NULL,
		retry_count INTEGER NOT NULL DEFAULT 0,
		next_retry_at TIMESTAMP,
		error_detail VARCHAR,
		sent_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id VARCHAR PRIMARY KEY,
		user_id VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL,
		last_seen_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_analytics (
		day DATE PRIMARY KEY,
		views BIGINT NOT NULL,
		likes BIGINT NOT NULL,
		bookmarks BIGINT NOT NULL,
		shares BIGINT NOT NULL,
		notifications_sent BIGINT NOT NULL,
		notifications_failed BIGINT NOT NULL,
		active_users BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_category ON content_items(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_item ON user_interactions(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_status ON notifications(status)`,
	`CREATE INDEX IF NOT EXISTS idx_user_categories_category ON user_categories(category_id)`,
}

func (db *DB) createSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
