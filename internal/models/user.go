// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package models

import "time"

// User is the subset of an account the scheduler needs.
type User struct {
	ID            string     `json:"id"`
	Active        bool       `json:"active"`
	CurrentStreak int        `json:"current_streak"`
	LongestStreak int        `json:"longest_streak"`
	LastActiveAt  *time.Time `json:"last_active_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// UserPreferences holds personalization and notification settings.
type UserPreferences struct {
	UserID      string     `json:"user_id"`
	Difficulty  Difficulty `json:"difficulty"`
	CategoryIDs []string   `json:"category_ids"`

	NotificationsEnabled bool `json:"notifications_enabled"`
	// NotificationTime is the local delivery time as "HH:MM".
	NotificationTime       string `json:"notification_time"`
	Timezone               string `json:"timezone"`
	WeekendNotifications   bool   `json:"weekend_notifications"`
	MaxNotificationsPerDay int    `json:"max_notifications_per_day"`
}

// ScheduledUser pairs an active user with their notification preferences.
type ScheduledUser struct {
	User        User
	Preferences UserPreferences
}

// StreakUpdate is the result of a streak recomputation for one user.
type StreakUpdate struct {
	UserID        string
	CurrentStreak int
	LongestStreak int
}

// DailyAnalytics aggregates one calendar day of activity.
type DailyAnalytics struct {
	Date                time.Time `json:"date"`
	Views               int64     `json:"views"`
	Likes               int64     `json:"likes"`
	Bookmarks           int64     `json:"bookmarks"`
	Shares              int64     `json:"shares"`
	NotificationsSent   int64     `json:"notifications_sent"`
	NotificationsFailed int64     `json:"notifications_failed"`
	ActiveUsers         int64     `json:"active_users"`
}
