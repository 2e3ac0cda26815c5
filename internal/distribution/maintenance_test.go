// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package distribution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/dailyfacts/internal/clock"
	"github.com/tomtom215/dailyfacts/internal/models"
)

func ptrTime(t time.Time) *time.Time { return &t }

func newMaintainer(store *fakeStore, gc GarbageCollector, loc *time.Location) *Maintainer {
	return NewMaintainer(store, gc, clock.NewFixed(tickTime), loc, testConfig(), zerolog.Nop())
}

func TestNextStreak(t *testing.T) {
	today := clock.StartOfDay(tickTime, time.UTC)
	tests := []struct {
		name       string
		streak     int
		lastActive *time.Time
		want       int
	}{
		{"active today keeps streak", 4, ptrTime(today.Add(2 * time.Hour)), 4},
		{"active today starts streak", 0, ptrTime(today.Add(time.Hour)), 1},
		{"active yesterday keeps streak", 4, ptrTime(today.Add(-time.Hour)), 4},
		{"active at yesterday midnight", 2, ptrTime(today.AddDate(0, 0, -1)), 2},
		{"inactive two days resets", 4, ptrTime(today.Add(-25 * time.Hour)), 0},
		{"never active", 3, nil, 0},
		{"never active no streak", 0, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &models.User{CurrentStreak: tt.streak, LastActiveAt: tt.lastActive}
			if got := nextStreak(u, today); got != tt.want {
				t.Errorf("nextStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRecomputeStreaks(t *testing.T) {
	store := newFakeStore()
	today := clock.StartOfDay(tickTime, time.UTC)
	store.active = []models.User{
		{ID: "kept", CurrentStreak: 5, LongestStreak: 9, LastActiveAt: ptrTime(today.Add(time.Hour))},
		{ID: "started", CurrentStreak: 0, LongestStreak: 0, LastActiveAt: ptrTime(today.Add(time.Hour))},
		{ID: "reset", CurrentStreak: 7, LongestStreak: 7, LastActiveAt: ptrTime(today.AddDate(0, 0, -3))},
	}

	updated, err := newMaintainer(store, nil, time.UTC).RecomputeStreaks(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if updated != 2 {
		t.Errorf("updated = %d, want 2", updated)
	}

	got := make(map[string]models.StreakUpdate)
	for _, u := range store.streaks {
		got[u.UserID] = u
	}
	if _, ok := got["kept"]; ok {
		t.Error("unchanged user should not be written")
	}
	if u := got["started"]; u.CurrentStreak != 1 || u.LongestStreak != 1 {
		t.Errorf("started = %+v, want 1/1", u)
	}
	if u := got["reset"]; u.CurrentStreak != 0 || u.LongestStreak != 7 {
		t.Errorf("reset = %+v, want 0 with longest 7 preserved", u)
	}
}

func TestRecomputeStreaksErrors(t *testing.T) {
	store := newFakeStore()
	store.failOp = "FindActiveUsers"
	if _, err := newMaintainer(store, nil, time.UTC).RecomputeStreaks(context.Background()); err == nil {
		t.Error("RecomputeStreaks() should fail when users cannot be loaded")
	}

	store = newFakeStore()
	store.active = []models.User{{ID: "a", CurrentStreak: 3}}
	store.failOp = "UpdateStreak"
	updated, err := newMaintainer(store, nil, time.UTC).RecomputeStreaks(context.Background())
	if err != nil || updated != 0 {
		t.Errorf("RecomputeStreaks() = %d, %v; want 0, nil", updated, err)
	}
}

func TestCleanupSessions(t *testing.T) {
	store := newFakeStore()
	n, err := newMaintainer(store, nil, time.UTC).CleanupSessions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("deleted = %d, want 4", n)
	}
	if !store.sessionArgs[0].Equal(tickTime) {
		t.Errorf("now = %v", store.sessionArgs[0])
	}
	if want := tickTime.Add(-30 * 24 * time.Hour); !store.sessionArgs[1].Equal(want) {
		t.Errorf("idle cutoff = %v, want %v", store.sessionArgs[1], want)
	}
}

func TestPruneNotifications(t *testing.T) {
	store := newFakeStore()
	gc := &fakeGC{}
	n, err := newMaintainer(store, gc, time.UTC).PruneNotifications(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 7 {
		t.Errorf("deleted = %d, want 7", n)
	}
	if want := tickTime.Add(-90 * 24 * time.Hour); !store.pruneCutoff.Equal(want) {
		t.Errorf("cutoff = %v, want %v", store.pruneCutoff, want)
	}
	if gc.runs != 1 {
		t.Errorf("gc runs = %d, want 1", gc.runs)
	}

	// GC failures are logged, not returned.
	gc.err = errors.New("gc failed")
	if _, err := newMaintainer(store, gc, time.UTC).PruneNotifications(context.Background()); err != nil {
		t.Errorf("PruneNotifications() with gc error = %v", err)
	}

	store.failOp = "DeleteNotificationsBefore"
	if _, err := newMaintainer(store, gc, time.UTC).PruneNotifications(context.Background()); err == nil {
		t.Error("PruneNotifications() should surface store errors")
	}
}

func TestSnapshotAnalyticsPreviousDay(t *testing.T) {
	store := newFakeStore()
	snap, err := newMaintainer(store, nil, time.UTC).SnapshotAnalytics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	wantStart := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if !store.snapshotDay[0].Equal(wantStart) || !store.snapshotDay[1].Equal(wantStart.AddDate(0, 0, 1)) {
		t.Errorf("window = %v, want day of %v", store.snapshotDay, wantStart)
	}
	if snap.Views != 12 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestSnapshotAnalyticsReferenceZone(t *testing.T) {
	store := newFakeStore()
	tokyo := time.FixedZone("UTC+9", 9*3600)
	// 04:00 UTC is 13:00 on 2026-03-10 in UTC+9, so the previous day is 03-09 there.
	if _, err := newMaintainer(store, nil, tokyo).SnapshotAnalytics(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, 3, 9, 0, 0, 0, 0, tokyo)
	if !store.snapshotDay[0].Equal(want) {
		t.Errorf("day start = %v, want %v", store.snapshotDay[0], want)
	}
}
