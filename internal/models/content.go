// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package models

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is an ordinal content difficulty level.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota + 1
	DifficultyMedium
	DifficultyHard
	DifficultyExpert
)

var difficultyNames = map[Difficulty]string{
	DifficultyEasy:   "EASY",
	DifficultyMedium: "MEDIUM",
	DifficultyHard:   "HARD",
	DifficultyExpert: "EXPERT",
}

// String returns the stored name of the level.
func (d Difficulty) String() string {
	if name, ok := difficultyNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// Valid reports whether d is a known level.
func (d Difficulty) Valid() bool {
	_, ok := difficultyNames[d]
	return ok
}

// Distance returns the absolute ordinal distance between two levels.
func (d Difficulty) Distance(other Difficulty) int {
	diff := int(d) - int(other)
	if diff < 0 {
		return -diff
	}
	return diff
}

// ParseDifficulty parses a level name, case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	needle := strings.ToUpper(strings.TrimSpace(s))
	for d, name := range difficultyNames {
		if name == needle {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid difficulty %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(b []byte) error {
	parsed, err := ParseDifficulty(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ContentItem is a curated fact. Items are managed by the content subsystem.
type ContentItem struct {
	ID          string     `json:"id"`
	CategoryID  string     `json:"category_id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Difficulty  Difficulty `json:"difficulty"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt time.Time  `json:"published_at"`

	ViewCount     int64 `json:"view_count"`
	LikeCount     int64 `json:"like_count"`
	ShareCount    int64 `json:"share_count"`
	BookmarkCount int64 `json:"bookmark_count"`

	Featured bool `json:"featured"`
	Approved bool `json:"approved"`
	Active   bool `json:"active"`
}

// Eligible reports whether the item may be delivered at now.
func (c *ContentItem) Eligible(now time.Time) bool {
	return c.Approved && c.Active && !c.PublishedAt.After(now)
}

// ItemOrder selects the ordering of FindEligibleItems results.
type ItemOrder int

const (
	// OrderNewest sorts by publication time, newest first.
	OrderNewest ItemOrder = iota
	// OrderPopularity sorts by featured, then likes, then views, all descending.
	OrderPopularity
)

// ItemFilter narrows FindEligibleItems. Eligibility (approved, active,
// published at or before Now) is always applied.
type ItemFilter struct {
	Now time.Time
	// ExcludeViewedBy drops items the given user has viewed.
	ExcludeViewedBy string
	// Difficulty restricts to one level; 0 matches all.
	Difficulty  Difficulty
	CategoryIDs []string
	Order       ItemOrder
	// Limit caps the result; 0 means no cap.
	Limit int
}
