// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

// Package recommend builds per-user personalization profiles and selects
// daily facts for them.
//
// # Components
//
//   - Analyzer: engagement statistics and learning patterns from a user's
//     interaction history over rolling windows
//   - ProfileBuilder: assembles a Profile from stored preferences and the
//     Analyzer's output, with an optional read-through cache
//   - Score: pure multi-factor relevance of an item for a profile
//   - SimilarityRecommender: items liked by peers with overlapping
//     preferences
//   - Engine: candidate selection, ranking, diversification and top-up
//
// # Failure Model
//
// Data access errors never reach the caller of SelectPersonalized. The
// profile degrades to nil, statistics and patterns degrade to neutral
// values, and the Engine falls back to the global popularity list. Only
// invalid Options are returned as errors.
//
// # Determinism
//
// All time-dependent logic reads the injected clock.Clock, and ranking uses
// stable sorts so equal scores keep retrieval order.
//
// # Usage
//
//	analyzer := recommend.NewAnalyzer(db, clk, logger)
//	builder := recommend.NewProfileBuilder(db, analyzer, profileCache, cfg, logger)
//	similar := recommend.NewSimilarityRecommender(db, clk, logger)
//	engine := recommend.NewEngine(db, builder, similar, reranking.NewDiversityCap(), clk, cfg, logger)
//
//	items, err := engine.SelectPersonalized(ctx, userID, recommend.Options{
//	    Limit:         5,
//	    ExcludeViewed: true,
//	})
package recommend
