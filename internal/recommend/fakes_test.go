// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package recommend

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/dailyfacts/internal/models"
)

// FakeStore is an in-memory store shared by the internal and external
// tests of this package.
type FakeStore struct {
	mu sync.Mutex

	Users        map[string]*models.User
	Prefs        map[string]*models.UserPreferences
	Items        []models.ContentItem
	Interactions map[string][]models.InteractionRecord
	Peers        []models.User
	Liked        []models.ContentItem
	Engagement   map[string]float64

	// Err fails every call when set; ItemsErr fails only FindEligibleItems
	// calls that are not popularity-ordered.
	Err      error
	ItemsErr error

	Calls map[string]int
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		Users:        map[string]*models.User{},
		Prefs:        map[string]*models.UserPreferences{},
		Interactions: map[string][]models.InteractionRecord{},
		Calls:        map[string]int{},
	}
}

func (f *FakeStore) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[name]++
	return f.Err
}

func (f *FakeStore) CallCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[name]
}

func (f *FakeStore) FindUser(_ context.Context, id string) (*models.User, error) {
	if err := f.record("FindUser"); err != nil {
		return nil, err
	}
	return f.Users[id], nil
}

func (f *FakeStore) FindUserPreferences(_ context.Context, userID string) (*models.UserPreferences, error) {
	if err := f.record("FindUserPreferences"); err != nil {
		return nil, err
	}
	return f.Prefs[userID], nil
}

func (f *FakeStore) CategoryEngagement(_ context.Context, _ string) (map[string]float64, error) {
	if err := f.record("CategoryEngagement"); err != nil {
		return nil, err
	}
	return f.Engagement, nil
}

func (f *FakeStore) itemByID(id string) *models.ContentItem {
	for i := range f.Items {
		if f.Items[i].ID == id {
			item := f.Items[i]
			return &item
		}
	}
	return nil
}

func (f *FakeStore) FindInteractions(_ context.Context, userID string, filter models.InteractionFilter) ([]models.InteractionRecord, error) {
	if err := f.record("FindInteractions"); err != nil {
		return nil, err
	}
	var out []models.InteractionRecord
	for _, r := range f.Interactions[userID] {
		if filter.ViewedOnly && !r.Viewed {
			continue
		}
		if filter.LikedOnly && !r.Liked {
			continue
		}
		if filter.ViewedSince != nil && (r.ViewedAt == nil || r.ViewedAt.Before(*filter.ViewedSince)) {
			continue
		}
		if filter.WithItem {
			r.Item = f.itemByID(r.ItemID)
		}
		out = append(out, r)
	}
	if filter.OrderByViewedAt {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].ViewedAt, out[j].ViewedAt
			if a == nil || b == nil {
				return b == nil && a != nil
			}
			return a.Before(*b)
		})
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *FakeStore) viewed(userID string) map[string]bool {
	seen := map[string]bool{}
	for _, r := range f.Interactions[userID] {
		if r.Viewed {
			seen[r.ItemID] = true
		}
	}
	return seen
}

func (f *FakeStore) FindEligibleItems(_ context.Context, filter models.ItemFilter) ([]models.ContentItem, error) {
	if err := f.record("FindEligibleItems"); err != nil {
		return nil, err
	}
	if f.ItemsErr != nil && filter.Order != models.OrderPopularity {
		return nil, f.ItemsErr
	}

	cats := map[string]bool{}
	for _, c := range filter.CategoryIDs {
		cats[c] = true
	}
	seen := f.viewed(filter.ExcludeViewedBy)

	var out []models.ContentItem
	for _, item := range f.Items {
		if !item.Eligible(filter.Now) {
			continue
		}
		if filter.Difficulty != 0 && item.Difficulty != filter.Difficulty {
			continue
		}
		if len(cats) > 0 && !cats[item.CategoryID] {
			continue
		}
		if filter.ExcludeViewedBy != "" && seen[item.ID] {
			continue
		}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if filter.Order == models.OrderPopularity {
			if a.Featured != b.Featured {
				return a.Featured
			}
			if a.LikeCount != b.LikeCount {
				return a.LikeCount > b.LikeCount
			}
			if a.ViewCount != b.ViewCount {
				return a.ViewCount > b.ViewCount
			}
			return a.ID < b.ID
		}
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.ID < b.ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *FakeStore) FindUsersByCategoryOverlap(_ context.Context, _ []string, excludeUserID string,
	_ models.Difficulty, limit int) ([]models.User, error) {
	if err := f.record("FindUsersByCategoryOverlap"); err != nil {
		return nil, err
	}
	var out []models.User
	for _, p := range f.Peers {
		if p.ID != excludeUserID {
			out = append(out, p)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakeStore) FindLikedItems(_ context.Context, _ []string, _ time.Time, limit int) ([]models.ContentItem, error) {
	if err := f.record("FindLikedItems"); err != nil {
		return nil, err
	}
	out := append([]models.ContentItem(nil), f.Liked...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
