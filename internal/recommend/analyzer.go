// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package recommend

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/dailyfacts/internal/clock"
	"github.com/tomtom215/dailyfacts/internal/models"
)

const (
	// recentActivityWindow bounds Stats.RecentActivity.
	recentActivityWindow = 30 * 24 * time.Hour
	// patternWindowDays is the look-back for Patterns.
	patternWindowDays = 7
	// diversityCap is the item count at which topic diversity saturates.
	diversityCap = 8
	// preferredTagCount is the number of tags kept in Patterns.
	preferredTagCount = 5
	// minProgressionPoints is the fewest views needed to call a difficulty trend.
	minProgressionPoints = 3
	// progressionRatio is how dominant one direction must be to count as a trend.
	progressionRatio = 1.5
	// engagementTrendRatio is the half-over-half change that counts as a trend.
	engagementTrendRatio = 1.2
)

// InteractionStore reads interaction history.
type InteractionStore interface {
	FindInteractions(ctx context.Context, userID string, filter models.InteractionFilter) ([]models.InteractionRecord, error)
}

// Analyzer derives engagement statistics and learning patterns.
type Analyzer struct {
	store  InteractionStore
	clock  clock.Clock
	logger zerolog.Logger
}

// NewAnalyzer creates an Analyzer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAnalyzer(store InteractionStore, clk clock.Clock, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		store:  store,
		clock:  clk,
		logger: logger.With().Str("component", "analyzer").Logger(),
	}
}

// ComputeStats returns lifetime counts, rates and the engagement score.
// Repository errors yield zero Stats.
func (a *Analyzer) ComputeStats(ctx context.Context, userID string) Stats {
	records, err := a.store.FindInteractions(ctx, userID, models.InteractionFilter{})
	if err != nil {
		a.logger.Warn().Err(err).Str("user_id", userID).Str("operation", "compute_stats").
			Msg("Failed to load interactions, using zero stats")
		return Stats{}
	}
	return statsFromRecords(records, a.clock.Now())
}

func statsFromRecords(records []models.InteractionRecord, now time.Time) Stats {
	var s Stats
	recentSince := now.Add(-recentActivityWindow)
	for i := range records {
		r := &records[i]
		if r.Viewed {
			s.TotalViewed++
		}
		if r.Liked {
			s.TotalLiked++
		}
		if r.Bookmarked {
			s.TotalBookmarked++
		}
		if r.Shared {
			s.TotalShared++
		}
		if r.Engaged() && !r.UpdatedAt.Before(recentSince) {
			s.RecentActivity++
		}
	}

	s.LikeRate = ratio(s.TotalLiked, s.TotalViewed)
	s.BookmarkRate = ratio(s.TotalBookmarked, s.TotalViewed)
	s.ShareRate = ratio(s.TotalShared, s.TotalViewed)
	s.EngagementScore = 0.4*s.LikeRate + 0.4*s.BookmarkRate + 0.2*s.ShareRate
	return s
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// ComputePatterns analyzes the last week of viewed items in view order.
// Repository errors yield NeutralPatterns.
func (a *Analyzer) ComputePatterns(ctx context.Context, userID string) Patterns {
	since := a.clock.Now().AddDate(0, 0, -patternWindowDays)
	records, err := a.store.FindInteractions(ctx, userID, models.InteractionFilter{
		ViewedOnly:      true,
		ViewedSince:     &since,
		OrderByViewedAt: true,
		WithItem:        true,
	})
	if err != nil {
		a.logger.Warn().Err(err).Str("user_id", userID).Str("operation", "compute_patterns").
			Msg("Failed to load recent views, using neutral patterns")
		return NeutralPatterns()
	}
	return patternsFromViews(records)
}

func patternsFromViews(views []models.InteractionRecord) Patterns {
	p := NeutralPatterns()
	if len(views) == 0 {
		return p
	}

	p.DifficultyProgression = difficultyProgression(views)
	p.TopicDiversity = topicDiversity(views)
	p.EngagementTrend = engagementTrend(views)
	p.PreferredTags = preferredTags(views)
	p.LearningVelocity = float64(len(views)) / patternWindowDays
	p.ConsistencyScore = consistencyScore(views)
	return p
}

func difficultyProgression(views []models.InteractionRecord) Trend {
	levels := make([]models.Difficulty, 0, len(views))
	for i := range views {
		if views[i].Item != nil {
			levels = append(levels, views[i].Item.Difficulty)
		}
	}
	if len(levels) < minProgressionPoints {
		return TrendStable
	}

	var up, down int
	for i := 1; i < len(levels); i++ {
		switch {
		case levels[i] > levels[i-1]:
			up++
		case levels[i] < levels[i-1]:
			down++
		}
	}
	switch {
	case float64(up) > progressionRatio*float64(down):
		return TrendIncreasing
	case float64(down) > progressionRatio*float64(up):
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func topicDiversity(views []models.InteractionRecord) float64 {
	categories := make(map[string]struct{})
	for i := range views {
		if views[i].Item != nil {
			categories[views[i].Item.CategoryID] = struct{}{}
		}
	}
	den := min(len(views), diversityCap)
	if den == 0 {
		return 0
	}
	return math.Min(1, float64(len(categories))/float64(den))
}

func engagementTrend(views []models.InteractionRecord) Trend {
	if len(views) < 2 {
		return TrendStable
	}
	half := len(views) / 2
	first := engagedRatio(views[:half])
	second := engagedRatio(views[half:])

	switch {
	case second > first*engagementTrendRatio:
		return TrendIncreasing
	case first > second*engagementTrendRatio:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func engagedRatio(views []models.InteractionRecord) float64 {
	engaged := 0
	for i := range views {
		if views[i].Liked || views[i].Bookmarked {
			engaged++
		}
	}
	return ratio(engaged, len(views))
}

func preferredTags(views []models.InteractionRecord) []string {
	counts := make(map[string]int)
	for i := range views {
		if views[i].Item == nil {
			continue
		}
		for _, tag := range views[i].Item.Tags {
			counts[tag]++
		}
	}

	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > preferredTagCount {
		tags = tags[:preferredTagCount]
	}
	return tags
}

// consistencyScore measures how evenly views are spread over their span.
func consistencyScore(views []models.InteractionRecord) float64 {
	stamps := make([]time.Time, 0, len(views))
	for i := range views {
		if views[i].ViewedAt != nil {
			stamps = append(stamps, *views[i].ViewedAt)
		}
	}
	if len(stamps) == 0 {
		return 0
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })

	span := stamps[len(stamps)-1].Sub(stamps[0])
	if span <= 0 {
		return 1
	}

	expected := span.Seconds() / float64(len(stamps)-1)
	var deviation float64
	for i := 1; i < len(stamps); i++ {
		gap := stamps[i].Sub(stamps[i-1]).Seconds()
		deviation += math.Abs(gap - expected)
	}
	deviation /= float64(len(stamps) - 1)

	return math.Max(0, 1-deviation/expected)
}
