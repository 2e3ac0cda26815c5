// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package recommend

import (
	"fmt"
	"time"
)

// Config tunes personalization.
type Config struct {
	// DefaultLimit is used by callers that do not specify a limit.
	DefaultLimit int
	// MaxLimit bounds the selection size accepted from callers.
	MaxLimit int
	// ProfileTTL is the lifetime of cached profiles.
	ProfileTTL time.Duration
	// CategoryEngagement populates per-category engagement from history.
	// When false every enabled category has engagement 0.
	CategoryEngagement bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultLimit: 5,
		MaxLimit:     50,
		ProfileTTL:   30 * time.Minute,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.DefaultLimit < 1 {
		return fmt.Errorf("default limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max limit %d must be at least default limit %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.ProfileTTL < 0 {
		return fmt.Errorf("profile TTL must not be negative, got %s", c.ProfileTTL)
	}
	return nil
}
