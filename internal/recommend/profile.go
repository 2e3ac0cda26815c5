// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package recommend

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/dailyfacts/internal/cache"
	"github.com/tomtom215/dailyfacts/internal/clock"
	"github.com/tomtom215/dailyfacts/internal/metrics"
	"github.com/tomtom215/dailyfacts/internal/models"
)

// PreferenceStore reads user preferences.
type PreferenceStore interface {
	FindUserPreferences(ctx context.Context, userID string) (*models.UserPreferences, error)
}

// EngagementStore reads per-category engagement ratios.
type EngagementStore interface {
	CategoryEngagement(ctx context.Context, userID string) (map[string]float64, error)
}

// ProfileBuilder assembles profiles from preferences and history.
type ProfileBuilder struct {
	prefs      PreferenceStore
	engagement EngagementStore
	analyzer   *Analyzer
	cache      cache.Store
	ttl        time.Duration
	clock      clock.Clock
	logger     zerolog.Logger
}

// NewProfileBuilder creates a ProfileBuilder. A nil store disables caching.
// engagement is consulted only when cfg.CategoryEngagement is set.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProfileBuilder(prefs PreferenceStore, engagement EngagementStore, analyzer *Analyzer,
	store cache.Store, clk clock.Clock, cfg *Config, logger zerolog.Logger) *ProfileBuilder {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if store == nil {
		store = cache.Noop{}
	}
	if !cfg.CategoryEngagement {
		engagement = nil
	}
	return &ProfileBuilder{
		prefs:      prefs,
		engagement: engagement,
		analyzer:   analyzer,
		cache:      store,
		ttl:        cfg.ProfileTTL,
		clock:      clk,
		logger:     logger.With().Str("component", "profile_builder").Logger(),
	}
}

func profileKey(userID string) string {
	return "profile:" + userID
}

// BuildProfile returns the user's profile, or nil when the user has no
// preferences or any read fails.
func (b *ProfileBuilder) BuildProfile(ctx context.Context, userID string) *Profile {
	var cached Profile
	hit, err := cache.GetJSON(ctx, b.cache, profileKey(userID), &cached)
	switch {
	case err != nil:
		metrics.RecordProfileCache("error")
		b.logger.Debug().Err(err).Str("user_id", userID).Msg("Profile cache read failed")
	case hit:
		metrics.RecordProfileCache("hit")
		return &cached
	default:
		metrics.RecordProfileCache("miss")
	}

	prefs, err := b.prefs.FindUserPreferences(ctx, userID)
	if err != nil {
		b.logger.Warn().Err(err).Str("user_id", userID).Str("operation", "build_profile").
			Msg("Failed to load preferences, profile unavailable")
		return nil
	}
	if prefs == nil {
		return nil
	}

	engagement := make(map[string]float64, len(prefs.CategoryIDs))
	for _, id := range prefs.CategoryIDs {
		engagement[id] = 0
	}
	if b.engagement != nil {
		observed, err := b.engagement.CategoryEngagement(ctx, userID)
		if err != nil {
			b.logger.Warn().Err(err).Str("user_id", userID).Str("operation", "category_engagement").
				Msg("Failed to load category engagement, profile unavailable")
			return nil
		}
		for id := range engagement {
			engagement[id] = clamp01(observed[id])
		}
	}

	stats := b.analyzer.ComputeStats(ctx, userID)
	patterns := b.analyzer.ComputePatterns(ctx, userID)

	profile := &Profile{
		UserID:             userID,
		Difficulty:         prefs.Difficulty,
		CategoryIDs:        append([]string(nil), prefs.CategoryIDs...),
		CategoryEngagement: engagement,
		Stats:              stats,
		Patterns:           patterns,
		PersonalityScore:   personalityScore(stats, patterns),
		BuiltAt:            b.clock.Now(),
	}

	if err := cache.SetJSON(ctx, b.cache, profileKey(userID), profile, b.ttl); err != nil {
		b.logger.Debug().Err(err).Str("user_id", userID).Msg("Profile cache write failed")
	}
	return profile
}

// InvalidateProfile drops the cached profile for userID.
func (b *ProfileBuilder) InvalidateProfile(ctx context.Context, userID string) {
	if err := b.cache.Delete(ctx, profileKey(userID)); err != nil {
		b.logger.Debug().Err(err).Str("user_id", userID).Msg("Profile cache delete failed")
	}
}

func personalityScore(stats Stats, patterns Patterns) float64 {
	score := 0.5
	if stats.EngagementScore > 0.7 {
		score += 0.2
	}
	if stats.ShareRate > 0.1 {
		score += 0.1
	}
	if patterns.ConsistencyScore > 0.8 {
		score += 0.1
	}
	if patterns.TopicDiversity > 0.6 {
		score += 0.1
	}
	return clamp01(score)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
