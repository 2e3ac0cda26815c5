// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/dailyfacts/internal/clock"
	"github.com/tomtom215/dailyfacts/internal/database"
	"github.com/tomtom215/dailyfacts/internal/models"
	"github.com/tomtom215/dailyfacts/internal/recommend"
	"github.com/tomtom215/dailyfacts/internal/scheduler"
)

// Selector picks personalized content.
type Selector interface {
	SelectPersonalized(ctx context.Context, userID string, opts recommend.Options) ([]models.ContentItem, error)
}

// Store is the data access the handlers need.
type Store interface {
	Ping(ctx context.Context) error
	FindUser(ctx context.Context, id string) (*models.User, error)
	FindItem(ctx context.Context, id string) (*models.ContentItem, error)
	FindInteraction(ctx context.Context, userID, itemID string) (*models.InteractionRecord, error)
	UpsertInteraction(ctx context.Context, userID, itemID string, patch models.InteractionPatch, now time.Time) error
	IncrementItemCounter(ctx context.Context, itemID string, counter database.ItemCounter, delta int64) error
	TouchUser(ctx context.Context, userID string, at time.Time) error
}

// ProfileInvalidator drops cached profiles after new interactions.
type ProfileInvalidator interface {
	InvalidateProfile(ctx context.Context, userID string)
}

// JobRunner lists and triggers scheduled jobs.
type JobRunner interface {
	ListJobs() []scheduler.JobInfo
	RunNow(ctx context.Context, name string) error
}

// Deps are the collaborators of a Handler.
type Deps struct {
	Store    Store
	Selector Selector
	Profiles ProfileInvalidator
	Jobs     JobRunner
	Clock    clock.Clock
	// DefaultLimit applies when a fetch names no limit.
	DefaultLimit int
}

// Handler serves the API endpoints.
type Handler struct {
	store        Store
	selector     Selector
	profiles     ProfileInvalidator
	jobs         JobRunner
	clock        clock.Clock
	defaultLimit int
	startTime    time.Time
	logger       zerolog.Logger
}

// NewHandler creates a Handler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(deps Deps, logger zerolog.Logger) *Handler {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.DefaultLimit < 1 {
		deps.DefaultLimit = recommend.DefaultConfig().DefaultLimit
	}
	return &Handler{
		store:        deps.Store,
		selector:     deps.Selector,
		profiles:     deps.Profiles,
		jobs:         deps.Jobs,
		clock:        deps.Clock,
		defaultLimit: deps.DefaultLimit,
		startTime:    deps.Clock.Now(),
		logger:       logger.With().Str("component", "api").Logger(),
	}
}
