// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package database

import (
	"context"
	"testing"

	"github.com/tomtom215/dailyfacts/internal/models"
)

func TestFindUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", nil)

	user, err := db.FindUser(ctx, "u1")
	if err != nil {
		t.Fatalf("FindUser: %v", err)
	}
	if user == nil || user.ID != "u1" || !user.Active {
		t.Fatalf("unexpected user %+v", user)
	}

	missing, err := db.FindUser(ctx, "nobody")
	if err != nil {
		t.Fatalf("FindUser(missing): %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for missing user, got %+v", missing)
	}
}

func TestFindUserPreferences(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedUser(t, db, "u1", &models.UserPreferences{
		Difficulty:             models.DifficultyHard,
		CategoryIDs:            []string{"science", "history"},
		NotificationsEnabled:   true,
		NotificationTime:       "09:00",
		Timezone:               "UTC+5",
		MaxNotificationsPerDay: 2,
	})
	seedUser(t, db, "u2", nil)

	prefs, err := db.FindUserPreferences(ctx, "u1")
	if err != nil {
		t.Fatalf("FindUserPreferences: %v", err)
	}
	if prefs == nil {
		t.Fatal("Expected preferences")
	}
	if prefs.Difficulty != models.DifficultyHard {
		t.Errorf("Difficulty = %v, want HARD", prefs.Difficulty)
	}
	if len(prefs.CategoryIDs) != 2 || prefs.CategoryIDs[0] != "history" || prefs.CategoryIDs[1] != "science" {
		t.Errorf("CategoryIDs = %v", prefs.CategoryIDs)
	}
	if prefs.Timezone != "UTC+5" || prefs.MaxNotificationsPerDay != 2 {
		t.Errorf("unexpected prefs %+v", prefs)
	}

	none, err := db.FindUserPreferences(ctx, "u2")
	if err != nil {
		t.Fatalf("FindUserPreferences(u2): %v", err)
	}
	if none != nil {
		t.Errorf("Expected nil preferences, got %+v", none)
	}
}

func TestUpsertPreferences_ReplacesCategories(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	prefs := &models.UserPreferences{Difficulty: models.DifficultyEasy, CategoryIDs: []string{"a", "b"}, NotificationTime: "08:00", Timezone: "UTC"}
	seedUser(t, db, "u1", prefs)

	prefs.CategoryIDs = []string{"c"}
	if err := db.UpsertPreferences(ctx, *prefs); err != nil {
		t.Fatalf("UpsertPreferences: %v", err)
	}

	got, err := db.FindUserPreferences(ctx, "u1")
	if err != nil {
		t.Fatalf("FindUserPreferences: %v", err)
	}
	if len(got.CategoryIDs) != 1 || got.CategoryIDs[0] != "c" {
		t.Errorf("CategoryIDs = %v, want [c]", got.CategoryIDs)
	}
}

func TestFindScheduledUsers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedUser(t, db, "on", &models.UserPreferences{NotificationsEnabled: true, CategoryIDs: []string{"science"}, NotificationTime: "09:00", Timezone: "UTC"})
	seedUser(t, db, "off", &models.UserPreferences{NotificationsEnabled: false, NotificationTime: "09:00", Timezone: "UTC"})
	seedUser(t, db, "inactive", &models.UserPreferences{NotificationsEnabled: true, NotificationTime: "09:00", Timezone: "UTC"})
	if err := db.UpsertUser(ctx, models.User{ID: "inactive", Active: false, CreatedAt: testNow}); err != nil {
		t.Fatal(err)
	}

	users, err := db.FindScheduledUsers(ctx)
	if err != nil {
		t.Fatalf("FindScheduledUsers: %v", err)
	}
	if len(users) != 1 || users[0].User.ID != "on" {
		t.Fatalf("Expected only user 'on', got %+v", users)
	}
	if len(users[0].Preferences.CategoryIDs) != 1 {
		t.Errorf("Expected categories loaded, got %v", users[0].Preferences.CategoryIDs)
	}
}

func TestFindUsersByCategoryOverlap(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := func(d models.Difficulty, cats ...string) *models.UserPreferences {
		return &models.UserPreferences{Difficulty: d, CategoryIDs: cats, NotificationTime: "09:00", Timezone: "UTC"}
	}
	seedUser(t, db, "me", base(models.DifficultyMedium, "science", "history"))
	seedUser(t, db, "peer", base(models.DifficultyMedium, "history"))
	seedUser(t, db, "harder", base(models.DifficultyHard, "science"))
	seedUser(t, db, "other", base(models.DifficultyMedium, "art"))

	peers, err := db.FindUsersByCategoryOverlap(ctx, []string{"science", "history"}, "me", models.DifficultyMedium, 10)
	if err != nil {
		t.Fatalf("FindUsersByCategoryOverlap: %v", err)
	}
	if len(peers) != 1 || peers[0].ID != "peer" {
		t.Errorf("Expected [peer], got %+v", peers)
	}

	empty, err := db.FindUsersByCategoryOverlap(ctx, nil, "me", models.DifficultyMedium, 10)
	if err != nil || empty != nil {
		t.Errorf("Expected nil for no categories, got %v %v", empty, err)
	}
}

func TestUpdateStreak(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", nil)

	if err := db.UpdateStreak(ctx, models.StreakUpdate{UserID: "u1", CurrentStreak: 4, LongestStreak: 9}); err != nil {
		t.Fatalf("UpdateStreak: %v", err)
	}
	u, err := db.FindUser(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if u.CurrentStreak != 4 || u.LongestStreak != 9 {
		t.Errorf("streak = %d/%d, want 4/9", u.CurrentStreak, u.LongestStreak)
	}
}
