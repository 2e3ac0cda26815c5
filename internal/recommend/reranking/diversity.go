// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package reranking

import (
	"context"

	"github.com/tomtom215/dailyfacts/internal/models"
	"github.com/tomtom215/dailyfacts/internal/recommend"
)

// DiversityCap limits repetition of categories and difficulty levels.
//
// It walks the ranked list admitting an item only while its category has
// been admitted fewer than max(1, k/3) times and its difficulty fewer than
// max(2, k/2.5) times. If that under-fills, the difficulty cap is dropped
// first and the category cap is then raised one step at a time, so the
// backfill spreads across categories before any single one dominates.
type DiversityCap struct{}

// NewDiversityCap creates a DiversityCap reranker.
func NewDiversityCap() *DiversityCap {
	return &DiversityCap{}
}

// Name returns the reranker identifier.
func (d *DiversityCap) Name() string {
	return "diversity_cap"
}

// CategoryCap is the per-category limit for a selection of size k.
func CategoryCap(k int) int {
	return max(1, k/3)
}

// DifficultyCap is the per-difficulty limit for a selection of size k.
func DifficultyCap(k int) int {
	return max(2, int(float64(k)/2.5))
}

// Rerank returns at most k items, diversified.
func (d *DiversityCap) Rerank(_ context.Context, items []recommend.ScoredItem, k int) []recommend.ScoredItem {
	if len(items) == 0 || k <= 0 {
		return []recommend.ScoredItem{}
	}
	catCap, diffCap := CategoryCap(k), DifficultyCap(k)
	k = min(k, len(items))
	categories := make(map[string]int)
	difficulties := make(map[models.Difficulty]int)
	admitted := make([]bool, len(items))
	selected := make([]recommend.ScoredItem, 0, k)

	admit := func(catLimit, diffLimit int) {
		for i := range items {
			if len(selected) == k {
				return
			}
			item := &items[i].Item
			if admitted[i] || categories[item.CategoryID] >= catLimit || difficulties[item.Difficulty] >= diffLimit {
				continue
			}
			categories[item.CategoryID]++
			difficulties[item.Difficulty]++
			admitted[i] = true
			selected = append(selected, items[i])
		}
	}

	admit(catCap, diffCap)
	// A limit of k no longer constrains anything, so the last round admits
	// every remaining item in score order.
	for limit := catCap; len(selected) < k && limit <= k; limit++ {
		admit(limit, k)
	}
	return selected
}

var _ recommend.Reranker = (*DiversityCap)(nil)
