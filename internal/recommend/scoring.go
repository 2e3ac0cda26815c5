// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package recommend

import (
	"math"
	"time"

	"github.com/tomtom215/dailyfacts/internal/models"
)

// Factor weights; they sum to 1.
const (
	weightCategory    = 0.40
	weightDifficulty  = 0.25
	weightTags        = 0.15
	weightPopularity  = 0.10
	weightFreshness   = 0.05
	weightPersonality = 0.05
)

// Score rates item for profile in [0, 1]. It performs no I/O.
func Score(item *models.ContentItem, profile *Profile, now time.Time) float64 {
	total := weightCategory*categoryFactor(item, profile) +
		weightDifficulty*difficultyFactor(item.Difficulty, profile.Difficulty) +
		weightTags*tagFactor(item.Tags, profile.Patterns.PreferredTags) +
		weightPopularity*popularityFactor(item) +
		weightFreshness*freshnessFactor(item.CreatedAt, now) +
		weightPersonality*(0.5*clamp01(profile.PersonalityScore)+0.5)
	return clamp01(total)
}

func categoryFactor(item *models.ContentItem, profile *Profile) float64 {
	if !profile.HasCategory(item.CategoryID) {
		return 0.1
	}
	return 0.5 + 0.5*clamp01(profile.CategoryEngagement[item.CategoryID])
}

func difficultyFactor(item, want models.Difficulty) float64 {
	switch item.Distance(want) {
	case 0:
		return 1.0
	case 1:
		return 0.7
	case 2:
		return 0.4
	default:
		return 0.1
	}
}

func tagFactor(itemTags, preferred []string) float64 {
	if len(itemTags) == 0 || len(preferred) == 0 {
		return 0.5
	}
	want := make(map[string]struct{}, len(preferred))
	for _, tag := range preferred {
		want[tag] = struct{}{}
	}
	matches := 0
	for _, tag := range itemTags {
		if _, ok := want[tag]; ok {
			matches++
		}
	}
	return clamp01(float64(matches) / float64(max(len(itemTags), len(preferred))))
}

func popularityFactor(item *models.ContentItem) float64 {
	raw := float64(item.ViewCount+2*item.LikeCount+3*item.ShareCount) / 100
	return clamp01(math.Min(1, raw))
}

func freshnessFactor(created, now time.Time) float64 {
	ageDays := now.Sub(created).Hours() / 24
	return clamp01(math.Max(0, 1-ageDays/365))
}
