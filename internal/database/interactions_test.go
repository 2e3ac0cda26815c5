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

func TestUpsertInteraction_ThreeWayPatch(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", nil)
	seedItem(t, db, eligible("a", "science"))

	viewedAt := testNow.Add(-time.Hour)
	first := models.InteractionPatch{
		Viewed:         models.Some(true),
		ViewedAt:       models.Some(viewedAt),
		Liked:          models.Some(true),
		DeliveryStatus: models.Some(models.DeliverySent),
	}
	if err := db.UpsertInteraction(ctx, "u1", "a", first, testNow.Add(-time.Hour)); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// Absent fields stay, null clears, set overwrites.
	second := models.InteractionPatch{
		Liked:            models.Null[bool](),
		Bookmarked:       models.Some(true),
		DeliveryStatus:   models.Null[models.DeliveryStatus](),
		TimeSpentSeconds: models.Some(42),
	}
	if err := db.UpsertInteraction(ctx, "u1", "a", second, testNow); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	rec, err := db.FindInteraction(ctx, "u1", "a")
	if err != nil {
		t.Fatalf("FindInteraction: %v", err)
	}
	if rec == nil {
		t.Fatal("Expected interaction record")
	}
	if !rec.Viewed || rec.ViewedAt == nil || !rec.ViewedAt.Equal(viewedAt) {
		t.Errorf("viewed fields changed: %+v", rec)
	}
	if rec.Liked {
		t.Error("Expected liked cleared by null")
	}
	if !rec.Bookmarked || rec.TimeSpentSeconds != 42 {
		t.Errorf("Expected bookmarked and time spent set, got %+v", rec)
	}
	if rec.DeliveryStatus != "" {
		t.Errorf("Expected delivery status cleared, got %q", rec.DeliveryStatus)
	}
	if !rec.CreatedAt.Equal(testNow.Add(-time.Hour)) || !rec.UpdatedAt.Equal(testNow) {
		t.Errorf("timestamps = %v / %v", rec.CreatedAt, rec.UpdatedAt)
	}

	all, err := db.FindInteractions(ctx, "u1", models.InteractionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("Expected a single record per pair, got %d", len(all))
	}
}

func TestUpsertInteraction_DeliveryKeepsUpdatedAt(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", nil)
	seedItem(t, db, eligible("a", "science"))

	liked := testNow.Add(-48 * time.Hour)
	if err := db.UpsertInteraction(ctx, "u1", "a", models.InteractionPatch{Liked: models.Some(true)}, liked); err != nil {
		t.Fatalf("like: %v", err)
	}
	delivery := models.InteractionPatch{DeliveryStatus: models.Some(models.DeliverySent)}
	if err := db.UpsertInteraction(ctx, "u1", "a", delivery, testNow); err != nil {
		t.Fatalf("delivery: %v", err)
	}
	if err := db.UpsertInteraction(ctx, "u1", "a", models.InteractionPatch{}, testNow); err != nil {
		t.Fatalf("empty patch: %v", err)
	}

	rec, err := db.FindInteraction(ctx, "u1", "a")
	if err != nil || rec == nil {
		t.Fatalf("FindInteraction: %+v, %v", rec, err)
	}
	if rec.DeliveryStatus != models.DeliverySent {
		t.Errorf("DeliveryStatus = %q, want sent", rec.DeliveryStatus)
	}
	if !rec.UpdatedAt.Equal(liked) {
		t.Errorf("UpdatedAt = %v, want %v", rec.UpdatedAt, liked)
	}
}

func TestFindInteractions_Filters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", nil)
	for _, id := range []string{"a", "b", "c"} {
		seedItem(t, db, eligible(id, "science"))
	}

	views := map[string]time.Time{
		"a": testNow.AddDate(0, 0, -10),
		"b": testNow.AddDate(0, 0, -2),
	}
	for id, at := range views {
		p := models.InteractionPatch{Viewed: models.Some(true), ViewedAt: models.Some(at)}
		if err := db.UpsertInteraction(ctx, "u1", id, p, at); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.UpsertInteraction(ctx, "u1", "c", models.InteractionPatch{Liked: models.Some(true)}, testNow); err != nil {
		t.Fatal(err)
	}

	since := testNow.AddDate(0, 0, -7)
	recent, err := db.FindInteractions(ctx, "u1", models.InteractionFilter{
		ViewedOnly: true, ViewedSince: &since, OrderByViewedAt: true, WithItem: true,
	})
	if err != nil {
		t.Fatalf("FindInteractions: %v", err)
	}
	if len(recent) != 1 || recent[0].ItemID != "b" {
		t.Fatalf("Expected [b], got %+v", recent)
	}
	if recent[0].Item == nil || recent[0].Item.CategoryID != "science" {
		t.Errorf("Expected joined item, got %+v", recent[0].Item)
	}

	viewed, err := db.FindInteractions(ctx, "u1", models.InteractionFilter{ViewedOnly: true, OrderByViewedAt: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(viewed) != 2 || viewed[0].ItemID != "a" {
		t.Errorf("Expected [a b] by view time, got %+v", viewed)
	}

	liked, err := db.FindInteractions(ctx, "u1", models.InteractionFilter{LikedOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(liked) != 1 || liked[0].ItemID != "c" {
		t.Errorf("Expected [c], got %+v", liked)
	}
}

func TestCategoryEngagement(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", nil)
	seedItem(t, db, eligible("s1", "science"))
	seedItem(t, db, eligible("s2", "science"))
	seedItem(t, db, eligible("h1", "history"))

	patches := map[string]models.InteractionPatch{
		"s1": {Viewed: models.Some(true), Liked: models.Some(true)},
		"s2": {Viewed: models.Some(true)},
		"h1": {Viewed: models.Some(true), Bookmarked: models.Some(true)},
	}
	for id, p := range patches {
		if err := db.UpsertInteraction(ctx, "u1", id, p, testNow); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.CategoryEngagement(ctx, "u1")
	if err != nil {
		t.Fatalf("CategoryEngagement: %v", err)
	}
	if got["science"] != 0.5 || got["history"] != 1 {
		t.Errorf("unexpected engagement %v", got)
	}
}

func TestIncrementItemCounter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedItem(t, db, eligible("a", "x"))

	if err := db.IncrementItemCounter(ctx, "a", CounterLikes, 2); err != nil {
		t.Fatalf("IncrementItemCounter: %v", err)
	}
	if err := db.IncrementItemCounter(ctx, "a", CounterViews, -5); err != nil {
		t.Fatalf("IncrementItemCounter: %v", err)
	}
	item, err := db.FindItem(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if item.LikeCount != 2 || item.ViewCount != 0 {
		t.Errorf("counters = likes %d views %d", item.LikeCount, item.ViewCount)
	}

	if err := db.IncrementItemCounter(ctx, "a", ItemCounter("title"), 1); err == nil {
		t.Error("Expected error for unknown counter")
	}
}
