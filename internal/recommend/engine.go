// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/dailyfacts/internal/clock"
	"github.com/tomtom215/dailyfacts/internal/metrics"
	"github.com/tomtom215/dailyfacts/internal/models"
	"github.com/tomtom215/dailyfacts/internal/validation"
)

// ErrInvalidOptions is returned by SelectPersonalized for malformed options.
var ErrInvalidOptions = errors.New("invalid selection options")

// candidateMultiplier sets how many candidates are fetched per requested item.
const candidateMultiplier = 3

// SelectionStore is the data access the Engine needs.
type SelectionStore interface {
	ItemStore
	InteractionStore
}

// ProfileSource resolves profiles.
type ProfileSource interface {
	BuildProfile(ctx context.Context, userID string) *Profile
}

// Recommender supplies supplementary items when ranking under-fills.
type Recommender interface {
	Recommend(ctx context.Context, userID string, profile *Profile, limit int) []models.ContentItem
}

// Engine selects personalized content. It is safe for concurrent use.
type Engine struct {
	store       SelectionStore
	profiles    ProfileSource
	recommender Recommender
	reranker    Reranker
	clock       clock.Clock
	config      *Config
	logger      zerolog.Logger
}

// NewEngine creates an Engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(store SelectionStore, profiles ProfileSource, recommender Recommender, reranker Reranker,
	clk clock.Clock, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if reranker == nil {
		return nil, errors.New("reranker is required")
	}
	return &Engine{
		store:       store,
		profiles:    profiles,
		recommender: recommender,
		reranker:    reranker,
		clock:       clk,
		config:      cfg,
		logger:      logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// SelectPersonalized returns up to opts.Limit items for userID. Only invalid
// options produce an error; data failures fall back to popular items.
//
//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Engine) SelectPersonalized(ctx context.Context, userID string, opts Options) ([]models.ContentItem, error) {
	if verr := validation.ValidateStruct(&opts); verr != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, verr)
	}
	if opts.Limit > e.config.MaxLimit {
		return nil, fmt.Errorf("%w: limit %d exceeds maximum %d", ErrInvalidOptions, opts.Limit, e.config.MaxLimit)
	}

	logger := e.logger.With().Str("user_id", userID).Int("limit", opts.Limit).Logger()

	profile := e.profiles.BuildProfile(ctx, userID)
	if profile == nil {
		metrics.RecordSelectionFallback("no_profile")
		logger.Debug().Msg("No profile, using popular items")
		return e.fallback(ctx, userID, opts), nil
	}

	items, err := e.personalized(ctx, userID, profile, opts)
	if err != nil {
		metrics.RecordSelectionFallback("error")
		logger.Warn().Err(err).Str("operation", "select_personalized").Msg("Personalized selection failed, using popular items")
		return e.fallback(ctx, userID, opts), nil
	}

	logger.Debug().Int("selected", len(items)).Msg("Personalized selection complete")
	return items, nil
}

//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Engine) personalized(ctx context.Context, userID string, profile *Profile, opts Options) ([]models.ContentItem, error) {
	now := e.clock.Now()

	filter := models.ItemFilter{
		Now:         now,
		Difficulty:  profile.Difficulty,
		CategoryIDs: profile.CategoryIDs,
		Order:       models.OrderNewest,
		Limit:       candidateMultiplier * opts.Limit,
	}
	if opts.ExcludeViewed {
		filter.ExcludeViewedBy = userID
	}
	if opts.Difficulty != 0 {
		filter.Difficulty = opts.Difficulty
	}
	if len(opts.CategoryIDs) > 0 {
		filter.CategoryIDs = opts.CategoryIDs
	}

	candidates, err := e.store.FindEligibleItems(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	ranked := RankItems(candidates, profile, now)
	selected := e.reranker.Rerank(ctx, ranked, opts.Limit)

	items := make([]models.ContentItem, 0, opts.Limit)
	for i := range selected {
		items = append(items, selected[i].Item)
	}

	if len(items) < opts.Limit && opts.IncludeRecommendations && e.recommender != nil {
		items, err = e.topUp(ctx, userID, profile, opts, items)
		if err != nil {
			return nil, err
		}
	}

	if len(items) > opts.Limit {
		items = items[:opts.Limit]
	}
	return items, nil
}

// topUp appends peer recommendations not already selected or viewed.
//
//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Engine) topUp(ctx context.Context, userID string, profile *Profile, opts Options, items []models.ContentItem) ([]models.ContentItem, error) {
	skip := make(map[string]struct{}, len(items))
	for i := range items {
		skip[items[i].ID] = struct{}{}
	}
	if opts.ExcludeViewed {
		viewed, err := e.store.FindInteractions(ctx, userID, models.InteractionFilter{ViewedOnly: true})
		if err != nil {
			return nil, fmt.Errorf("find viewed items: %w", err)
		}
		for i := range viewed {
			skip[viewed[i].ItemID] = struct{}{}
		}
	}

	for _, item := range e.recommender.Recommend(ctx, userID, profile, opts.Limit) {
		if len(items) >= opts.Limit {
			break
		}
		if _, ok := skip[item.ID]; ok {
			continue
		}
		skip[item.ID] = struct{}{}
		items = append(items, item)
	}
	return items, nil
}

//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Engine) fallback(ctx context.Context, userID string, opts Options) []models.ContentItem {
	filter := models.ItemFilter{
		Now:   e.clock.Now(),
		Order: models.OrderPopularity,
		Limit: opts.Limit,
	}
	if opts.ExcludeViewed {
		filter.ExcludeViewedBy = userID
	}
	items, err := e.store.FindEligibleItems(ctx, filter)
	if err != nil {
		e.logger.Error().Err(err).Str("user_id", userID).Str("operation", "fallback").
			Msg("Popular items unavailable")
		return []models.ContentItem{}
	}
	return items
}

// RankItems scores items for profile and sorts them by descending score.
// Equal scores keep their input order.
func RankItems(items []models.ContentItem, profile *Profile, now time.Time) []ScoredItem {
	ranked := make([]ScoredItem, len(items))
	for i := range items {
		ranked[i] = ScoredItem{Item: items[i], Score: Score(&items[i], profile, now)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}

// popularItems returns eligible items by featured, likes and views.
func popularItems(ctx context.Context, store ItemStore, now time.Time, limit int) ([]models.ContentItem, error) {
	return store.FindEligibleItems(ctx, models.ItemFilter{
		Now:   now,
		Order: models.OrderPopularity,
		Limit: limit,
	})
}
