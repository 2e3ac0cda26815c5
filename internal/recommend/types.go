// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/dailyfacts/internal/models"
)

// Trend classifies the direction of a signal over time.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Stats summarizes a user's lifetime engagement.
type Stats struct {
	TotalViewed     int     `json:"total_viewed"`
	TotalLiked      int     `json:"total_liked"`
	TotalBookmarked int     `json:"total_bookmarked"`
	TotalShared     int     `json:"total_shared"`
	RecentActivity  int     `json:"recent_activity"`
	LikeRate        float64 `json:"like_rate"`
	BookmarkRate    float64 `json:"bookmark_rate"`
	ShareRate       float64 `json:"share_rate"`
	EngagementScore float64 `json:"engagement_score"`
}

// Patterns describes how a user has been learning over the last week.
type Patterns struct {
	DifficultyProgression Trend    `json:"difficulty_progression"`
	TopicDiversity        float64  `json:"topic_diversity"`
	EngagementTrend       Trend    `json:"engagement_trend"`
	PreferredTags         []string `json:"preferred_tags"`
	LearningVelocity      float64  `json:"learning_velocity"`
	ConsistencyScore      float64  `json:"consistency_score"`
}

// NeutralPatterns is returned when history cannot be read.
func NeutralPatterns() Patterns {
	return Patterns{
		DifficultyProgression: TrendStable,
		EngagementTrend:       TrendStable,
		PreferredTags:         []string{},
	}
}

// Profile is the derived personalization state of one user.
type Profile struct {
	UserID             string             `json:"user_id"`
	Difficulty         models.Difficulty  `json:"difficulty"`
	CategoryIDs        []string           `json:"category_ids"`
	CategoryEngagement map[string]float64 `json:"category_engagement"`
	Stats              Stats              `json:"stats"`
	Patterns           Patterns           `json:"patterns"`
	PersonalityScore   float64            `json:"personality_score"`
	BuiltAt            time.Time          `json:"built_at"`
}

// HasCategory reports whether categoryID is enabled in the profile.
func (p *Profile) HasCategory(categoryID string) bool {
	for _, id := range p.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// ScoredItem is a candidate with its relevance score.
type ScoredItem struct {
	Item  models.ContentItem `json:"item"`
	Score float64            `json:"score"`
}

// Options control a personalized selection.
type Options struct {
	Limit int `validate:"min=1,max=100"`
	// ExcludeViewed drops items the user has already viewed.
	ExcludeViewed bool
	// Difficulty overrides the profile difficulty when non-zero.
	Difficulty models.Difficulty `validate:"omitempty,difficulty"`
	// CategoryIDs override the profile's enabled categories when non-empty.
	CategoryIDs            []string `validate:"omitempty,dive,required"`
	IncludeRecommendations bool
}

// Reranker reorders and truncates scored candidates to k items.
type Reranker interface {
	Name() string
	Rerank(ctx context.Context, items []ScoredItem, k int) []ScoredItem
}
