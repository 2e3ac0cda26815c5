// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package distribution

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/dailyfacts/internal/delivery"
	"github.com/tomtom215/dailyfacts/internal/events"
	"github.com/tomtom215/dailyfacts/internal/models"
	"github.com/tomtom215/dailyfacts/internal/recommend"
)

var errStore = errors.New("store unavailable")

// fakeStore is an in-memory Store and MaintenanceStore.
type fakeStore struct {
	mu sync.Mutex

	scheduled     []models.ScheduledUser
	prefs         map[string]*models.UserPreferences
	items         []models.ContentItem
	notifications map[string]*models.NotificationRecord
	interactions  map[string]models.InteractionRecord
	nextID        int

	active  []models.User
	streaks []models.StreakUpdate

	sessionArgs [2]time.Time
	pruneCutoff time.Time
	snapshotDay [2]time.Time

	// failCountFor makes CountTodaysNotifications fail for one user.
	failCountFor string
	// failOp makes the named operation fail for every call.
	failOp string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		prefs:         make(map[string]*models.UserPreferences),
		notifications: make(map[string]*models.NotificationRecord),
		interactions:  make(map[string]models.InteractionRecord),
	}
}

func (s *fakeStore) addScheduled(su models.ScheduledUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, su)
	p := su.Preferences
	s.prefs[su.User.ID] = &p
}

func (s *fakeStore) fail(op string) error {
	if s.failOp == op {
		return errStore
	}
	return nil
}

func (s *fakeStore) FindScheduledUsers(context.Context) ([]models.ScheduledUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("FindScheduledUsers"); err != nil {
		return nil, err
	}
	return append([]models.ScheduledUser(nil), s.scheduled...), nil
}

func (s *fakeStore) FindUserPreferences(_ context.Context, userID string) (*models.UserPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("FindUserPreferences"); err != nil {
		return nil, err
	}
	p, ok := s.prefs[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) CountTodaysNotifications(_ context.Context, userID string, dayStart time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userID == s.failCountFor {
		return 0, errStore
	}
	n := 0
	for _, rec := range s.notifications {
		if rec.UserID == userID && rec.Status.CountsTowardDailyCap() && !rec.CreatedAt.Before(dayStart) {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) FindEligibleItems(_ context.Context, f models.ItemFilter) ([]models.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("FindEligibleItems"); err != nil {
		return nil, err
	}
	var out []models.ContentItem
	for _, it := range s.items {
		if !it.Eligible(f.Now) {
			continue
		}
		if f.Difficulty != 0 && it.Difficulty != f.Difficulty {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *fakeStore) FindItem(_ context.Context, id string) (*models.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			it := s.items[i]
			return &it, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) CreateNotification(_ context.Context, in models.NewNotification, now time.Time) (*models.NotificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateNotification"); err != nil {
		return nil, err
	}
	s.nextID++
	status := in.Status
	if status == "" {
		status = models.NotificationPending
	}
	rec := &models.NotificationRecord{
		ID:        fmt.Sprintf("n-%03d", s.nextID),
		UserID:    in.UserID,
		ItemID:    in.ItemID,
		Title:     in.Title,
		Body:      in.Body,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.notifications[rec.ID] = rec
	cp := *rec
	return &cp, nil
}

func (s *fakeStore) UpdateNotification(_ context.Context, id string, patch models.NotificationPatch, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateNotification"); err != nil {
		return err
	}
	rec, ok := s.notifications[id]
	if !ok {
		return fmt.Errorf("notification %s not found", id)
	}
	patch.ApplyTo(rec)
	rec.UpdatedAt = now
	return nil
}

func (s *fakeStore) FindFailedNotifications(_ context.Context, now time.Time, maxRetries, limit int) ([]models.NotificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("FindFailedNotifications"); err != nil {
		return nil, err
	}
	var out []models.NotificationRecord
	for _, rec := range s.notifications {
		if rec.Status != models.NotificationFailed || rec.RetryCount >= maxRetries {
			continue
		}
		if rec.NextRetryAt != nil && rec.NextRetryAt.After(now) {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) UpsertInteraction(_ context.Context, userID, itemID string, patch models.InteractionPatch, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := userID + "/" + itemID
	rec, ok := s.interactions[key]
	if !ok {
		rec = models.InteractionRecord{UserID: userID, ItemID: itemID, CreatedAt: now}
	}
	patch.ApplyTo(&rec)
	rec.UpdatedAt = now
	s.interactions[key] = rec
	return nil
}

func (s *fakeStore) FindActiveUsers(context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("FindActiveUsers"); err != nil {
		return nil, err
	}
	return append([]models.User(nil), s.active...), nil
}

func (s *fakeStore) UpdateStreak(_ context.Context, u models.StreakUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateStreak"); err != nil {
		return err
	}
	s.streaks = append(s.streaks, u)
	return nil
}

func (s *fakeStore) DeleteExpiredSessions(_ context.Context, now, idleCutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteExpiredSessions"); err != nil {
		return 0, err
	}
	s.sessionArgs = [2]time.Time{now, idleCutoff}
	return 4, nil
}

func (s *fakeStore) DeleteNotificationsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteNotificationsBefore"); err != nil {
		return 0, err
	}
	s.pruneCutoff = cutoff
	return 7, nil
}

func (s *fakeStore) SnapshotDailyAnalytics(_ context.Context, dayStart, dayEnd, _ time.Time) (*models.DailyAnalytics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SnapshotDailyAnalytics"); err != nil {
		return nil, err
	}
	s.snapshotDay = [2]time.Time{dayStart, dayEnd}
	return &models.DailyAnalytics{Date: dayStart, Views: 12}, nil
}

func (s *fakeStore) notificationsFor(userID string) []models.NotificationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.NotificationRecord
	for _, rec := range s.notifications {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *fakeStore) notification(id string) models.NotificationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.notifications[id]
}

func (s *fakeStore) interaction(userID, itemID string) (models.InteractionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.interactions[userID+"/"+itemID]
	return rec, ok
}

// fakeSelector returns a fixed personalized list per user.
type fakeSelector struct {
	mu    sync.Mutex
	picks map[string][]models.ContentItem
	err   error
	opts  []recommend.Options
}

func (f *fakeSelector) SelectPersonalized(_ context.Context, userID string, opts recommend.Options) ([]models.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return nil, f.err
	}
	return f.picks[userID], nil
}

// fakeSender records messages and returns a fixed result.
type fakeSender struct {
	mu     sync.Mutex
	result delivery.Result
	sent   []delivery.Message
}

func newFakeSender(res delivery.Result) *fakeSender {
	return &fakeSender{result: res}
}

func (f *fakeSender) Name() string { return "fake" }

func (f *fakeSender) Send(_ context.Context, msg *delivery.Message) delivery.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, *msg)
	return f.result
}

func (f *fakeSender) setResult(res delivery.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.result = res
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fakePublisher records events.
type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakePublisher) outcomes() []events.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]events.Outcome, len(f.events))
	for i, ev := range f.events {
		out[i] = ev.Outcome
	}
	return out
}

// fakeGC counts garbage collection runs.
type fakeGC struct {
	runs int
	err  error
}

func (g *fakeGC) RunGC() error {
	g.runs++
	return g.err
}
