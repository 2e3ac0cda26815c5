// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package database

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/dailyfacts/internal/models"
)

func TestNotificationLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	itemID := "a"
	rec, err := db.CreateNotification(ctx, models.NewNotification{UserID: "u1", ItemID: &itemID, Title: "Fact"}, testNow)
	if err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	if rec.ID == "" || rec.Status != models.NotificationPending {
		t.Fatalf("unexpected record %+v", rec)
	}

	next := testNow.Add(10 * time.Minute)
	patch := models.NotificationPatch{
		Status:      models.Some(models.NotificationFailed),
		RetryCount:  models.Some(1),
		NextRetryAt: models.Some(next),
		ErrorDetail: models.Some("timeout"),
	}
	if err := db.UpdateNotification(ctx, rec.ID, patch, testNow); err != nil {
		t.Fatalf("UpdateNotification: %v", err)
	}

	got, err := db.FindNotification(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.NotificationFailed || got.RetryCount != 1 {
		t.Errorf("unexpected record %+v", got)
	}
	if got.NextRetryAt == nil || !got.NextRetryAt.Equal(next) {
		t.Errorf("NextRetryAt = %v, want %v", got.NextRetryAt, next)
	}
	if got.ErrorDetail == nil || *got.ErrorDetail != "timeout" {
		t.Errorf("ErrorDetail = %v", got.ErrorDetail)
	}
	if got.ItemID == nil || *got.ItemID != "a" {
		t.Errorf("ItemID = %v", got.ItemID)
	}

	clearPatch := models.NotificationPatch{ErrorDetail: models.Null[string](), NextRetryAt: models.Null[time.Time]()}
	if err := db.UpdateNotification(ctx, rec.ID, clearPatch, testNow); err != nil {
		t.Fatal(err)
	}
	got, err = db.FindNotification(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ErrorDetail != nil || got.NextRetryAt != nil {
		t.Errorf("Expected cleared fields, got %+v", got)
	}
	if got.Status != models.NotificationFailed {
		t.Errorf("Expected status untouched, got %s", got.Status)
	}
}

func TestFindFailedNotifications(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	create := func(status models.NotificationStatus, retries int, nextRetry *time.Time) string {
		t.Helper()
		rec, err := db.CreateNotification(ctx, models.NewNotification{UserID: "u1", Status: status}, testNow.Add(-time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		p := models.NotificationPatch{RetryCount: models.Some(retries)}
		if nextRetry != nil {
			p.NextRetryAt = models.Some(*nextRetry)
		}
		if err := db.UpdateNotification(ctx, rec.ID, p, testNow); err != nil {
			t.Fatal(err)
		}
		return rec.ID
	}

	past := testNow.Add(-time.Minute)
	future := testNow.Add(time.Minute)
	due := create(models.NotificationFailed, 1, &past)
	never := create(models.NotificationFailed, 0, nil)
	create(models.NotificationFailed, 1, &future)
	create(models.NotificationFailed, 3, &past)
	create(models.NotificationSent, 0, nil)

	recs, err := db.FindFailedNotifications(ctx, testNow, 3, 50)
	if err != nil {
		t.Fatalf("FindFailedNotifications: %v", err)
	}
	found := map[string]bool{}
	for _, r := range recs {
		found[r.ID] = true
	}
	if len(recs) != 2 || !found[due] || !found[never] {
		t.Errorf("Expected due and never-scheduled records, got %+v", recs)
	}

	limited, err := db.FindFailedNotifications(ctx, testNow, 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected limit 1, got %d", len(limited))
	}
}

func TestCountTodaysNotifications(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	dayStart := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	mk := func(status models.NotificationStatus, at time.Time) {
		if _, err := db.CreateNotification(ctx, models.NewNotification{UserID: "u1", Status: status}, at); err != nil {
			t.Fatal(err)
		}
	}
	mk(models.NotificationSent, dayStart.Add(time.Hour))
	mk(models.NotificationDelivered, dayStart.Add(2*time.Hour))
	mk(models.NotificationFailed, dayStart.Add(3*time.Hour))
	mk(models.NotificationSent, dayStart.Add(-time.Hour))
	mk(models.NotificationPending, dayStart.Add(4*time.Hour))

	n, err := db.CountTodaysNotifications(ctx, "u1", dayStart)
	if err != nil {
		t.Fatalf("CountTodaysNotifications: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}

	recent, err := db.FindUserNotifications(ctx, "u1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 5 || recent[0].Status != models.NotificationPending {
		t.Errorf("Expected newest first, got %+v", recent)
	}
}
