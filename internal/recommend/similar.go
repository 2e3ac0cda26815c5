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
	"github.com/tomtom215/dailyfacts/internal/metrics"
	"github.com/tomtom215/dailyfacts/internal/models"
)

const (
	// maxPeerCandidates bounds the peer query.
	maxPeerCandidates = 10
	// topPeers is how many of the most similar peers contribute likes.
	topPeers = 5
)

// ItemStore reads eligible content.
type ItemStore interface {
	FindEligibleItems(ctx context.Context, filter models.ItemFilter) ([]models.ContentItem, error)
}

// PeerStore finds similar users and what they liked.
type PeerStore interface {
	ItemStore
	FindUser(ctx context.Context, id string) (*models.User, error)
	FindUsersByCategoryOverlap(ctx context.Context, categoryIDs []string, excludeUserID string,
		difficulty models.Difficulty, limit int) ([]models.User, error)
	FindLikedItems(ctx context.Context, userIDs []string, now time.Time, limit int) ([]models.ContentItem, error)
}

// SimilarityRecommender surfaces items liked by peers.
type SimilarityRecommender struct {
	store  PeerStore
	clock  clock.Clock
	logger zerolog.Logger
}

// NewSimilarityRecommender creates a SimilarityRecommender.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSimilarityRecommender(store PeerStore, clk clock.Clock, logger zerolog.Logger) *SimilarityRecommender {
	return &SimilarityRecommender{
		store:  store,
		clock:  clk,
		logger: logger.With().Str("component", "similarity").Logger(),
	}
}

type scoredPeer struct {
	id    string
	score float64
}

// Recommend returns up to limit items liked by the most similar peers.
// Without peers or liked items it returns the popularity fallback.
func (r *SimilarityRecommender) Recommend(ctx context.Context, userID string, profile *Profile, limit int) []models.ContentItem {
	if limit <= 0 {
		return nil
	}
	now := r.clock.Now()

	items, err := r.peerItems(ctx, userID, profile, now, limit)
	if err != nil {
		r.logger.Warn().Err(err).Str("user_id", userID).Str("operation", "recommend").
			Msg("Peer recommendation failed, using popular items")
	}
	if len(items) > 0 {
		return items
	}

	metrics.RecordSelectionFallback("no_peer_items")
	fallback, err := popularItems(ctx, r.store, now, limit)
	if err != nil {
		r.logger.Warn().Err(err).Str("user_id", userID).Msg("Popular items unavailable")
		return nil
	}
	return fallback
}

func (r *SimilarityRecommender) peerItems(ctx context.Context, userID string, profile *Profile, now time.Time, limit int) ([]models.ContentItem, error) {
	if profile == nil || len(profile.CategoryIDs) == 0 {
		return nil, nil
	}

	peers, err := r.store.FindUsersByCategoryOverlap(ctx, profile.CategoryIDs, userID, profile.Difficulty, maxPeerCandidates)
	if err != nil || len(peers) == 0 {
		return nil, err
	}

	self, err := r.store.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var streak, longest int
	if self != nil {
		streak, longest = self.CurrentStreak, self.LongestStreak
	}

	ranked := make([]scoredPeer, 0, len(peers))
	for i := range peers {
		ranked = append(ranked, scoredPeer{
			id:    peers[i].ID,
			score: peerSimilarity(streak, longest, &peers[i], profile.Stats.EngagementScore),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > topPeers {
		ranked = ranked[:topPeers]
	}

	ids := make([]string, len(ranked))
	for i, p := range ranked {
		ids[i] = p.id
	}
	return r.store.FindLikedItems(ctx, ids, now, limit)
}

func peerSimilarity(streak, longest int, peer *models.User, engagement float64) float64 {
	streakSim := math.Max(0, 1-math.Abs(float64(streak-peer.CurrentStreak))/30)
	longestSim := math.Max(0, 1-math.Abs(float64(longest-peer.LongestStreak))/100)
	return 0.3*streakSim + 0.3*longestSim + 0.4*engagement
}
