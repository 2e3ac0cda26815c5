// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/dailyfacts/internal/database"
	"github.com/tomtom215/dailyfacts/internal/logging"
	"github.com/tomtom215/dailyfacts/internal/models"
	"github.com/tomtom215/dailyfacts/internal/recommend"
	"github.com/tomtom215/dailyfacts/internal/validation"
)

const maxBodyBytes = 64 << 10

// DailyFacts returns personalized items for a user.
//
// Query parameters: limit, exclude_viewed, difficulty (EASY..EXPERT),
// category (repeatable or comma-separated), include_recommendations.
func (h *Handler) DailyFacts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if !h.userExists(w, r, userID) {
		return
	}

	opts, err := h.parseSelectOptions(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	items, err := h.selector.SelectPersonalized(r.Context(), userID, opts)
	if errors.Is(err, recommend.ErrInvalidOptions) {
		writeError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	}
	if err != nil {
		writeInternalError(w, r, "select_personalized", err)
		return
	}
	writeList(w, r, items)
}

func (h *Handler) parseSelectOptions(r *http.Request) (recommend.Options, error) {
	q := r.URL.Query()
	opts := recommend.Options{Limit: h.defaultLimit, IncludeRecommendations: true}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New("limit must be an integer")
		}
		opts.Limit = n
	}
	if v := q.Get("exclude_viewed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("exclude_viewed must be a boolean")
		}
		opts.ExcludeViewed = b
	}
	if v := q.Get("include_recommendations"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("include_recommendations must be a boolean")
		}
		opts.IncludeRecommendations = b
	}
	if v := q.Get("difficulty"); v != "" {
		d, err := models.ParseDifficulty(v)
		if err != nil {
			return opts, err
		}
		opts.Difficulty = d
	}
	for _, raw := range q["category"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				opts.CategoryIDs = append(opts.CategoryIDs, id)
			}
		}
	}
	return opts, nil
}

// interactionRequest is a partial update; omitted fields are unchanged.
type interactionRequest struct {
	ItemID     string `json:"item_id" validate:"required,max=64"`
	Viewed     *bool  `json:"viewed"`
	Liked      *bool  `json:"liked"`
	Bookmarked *bool  `json:"bookmarked"`
	Shared     *bool  `json:"shared"`
	// TimeSpentSeconds is added to the stored total.
	TimeSpentSeconds *int `json:"time_spent_seconds" validate:"omitempty,gte=0,lte=86400"`
}

func (req *interactionRequest) validate() error {
	req.ItemID = strings.TrimSpace(req.ItemID)
	if verr := validation.ValidateStruct(req); verr != nil {
		return verr
	}
	if req.Viewed == nil && req.Liked == nil && req.Bookmarked == nil && req.Shared == nil && req.TimeSpentSeconds == nil {
		return errors.New("at least one interaction field is required")
	}
	return nil
}

// RecordInteraction applies an engagement update for a user and item,
// maintains the item's lifetime counters and drops the cached profile.
// Counter deltas are read-modify-write; concurrent flips of the same flag
// can both be applied.
func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "id")

	var req interactionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	}

	if !h.userExists(w, r, userID) {
		return
	}
	item, err := h.store.FindItem(ctx, req.ItemID)
	if err != nil {
		writeInternalError(w, r, "find_item", err)
		return
	}
	if item == nil {
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "item not found")
		return
	}

	prev, err := h.store.FindInteraction(ctx, userID, req.ItemID)
	if err != nil {
		writeInternalError(w, r, "find_interaction", err)
		return
	}
	now := h.clock.Now().UTC()
	current := models.InteractionRecord{UserID: userID, ItemID: req.ItemID, CreatedAt: now}
	if prev != nil {
		current = *prev
	}

	patch := buildInteractionPatch(&req, &current, now)
	if err := h.store.UpsertInteraction(ctx, userID, req.ItemID, patch, now); err != nil {
		writeInternalError(w, r, "upsert_interaction", err)
		return
	}

	logger := logging.Ctx(ctx).With().Str("user_id", userID).Str("item_id", req.ItemID).Logger()
	for counter, delta := range counterDeltas(&req, &current) {
		if err := h.store.IncrementItemCounter(ctx, req.ItemID, counter, delta); err != nil {
			logger.Warn().Err(err).Str("counter", string(counter)).Msg("Failed to update item counter")
		}
	}
	if err := h.store.TouchUser(ctx, userID, now); err != nil {
		logger.Warn().Err(err).Msg("Failed to record user activity")
	}
	if h.profiles != nil {
		h.profiles.InvalidateProfile(ctx, userID)
	}

	patch.ApplyTo(&current)
	current.UpdatedAt = now
	writeSuccess(w, r, current)
}

func buildInteractionPatch(req *interactionRequest, prev *models.InteractionRecord, now time.Time) models.InteractionPatch {
	var patch models.InteractionPatch
	if req.Viewed != nil {
		patch.Viewed = models.Some(*req.Viewed)
		switch {
		case *req.Viewed && !prev.Viewed:
			patch.ViewedAt = models.Some(now)
		case !*req.Viewed:
			patch.ViewedAt = models.Null[time.Time]()
		}
	}
	if req.Liked != nil {
		patch.Liked = models.Some(*req.Liked)
	}
	if req.Bookmarked != nil {
		patch.Bookmarked = models.Some(*req.Bookmarked)
	}
	if req.Shared != nil {
		patch.Shared = models.Some(*req.Shared)
	}
	if req.TimeSpentSeconds != nil {
		patch.TimeSpentSeconds = models.Some(prev.TimeSpentSeconds + *req.TimeSpentSeconds)
	}
	return patch
}

// counterDeltas returns the item counter changes implied by flag
// transitions. Repeating a flag is not counted twice.
func counterDeltas(req *interactionRequest, prev *models.InteractionRecord) map[database.ItemCounter]int64 {
	deltas := make(map[database.ItemCounter]int64)
	add := func(counter database.ItemCounter, next *bool, was bool) {
		if next == nil || *next == was {
			return
		}
		if *next {
			deltas[counter] = 1
		} else {
			deltas[counter] = -1
		}
	}
	// Views are lifetime totals and never decrease.
	if req.Viewed != nil && *req.Viewed && !prev.Viewed {
		deltas[database.CounterViews] = 1
	}
	add(database.CounterLikes, req.Liked, prev.Liked)
	add(database.CounterBookmarks, req.Bookmarked, prev.Bookmarked)
	add(database.CounterShares, req.Shared, prev.Shared)
	return deltas
}

// userExists answers 404 or 500 and returns false when the user cannot
// be served.
func (h *Handler) userExists(w http.ResponseWriter, r *http.Request, userID string) bool {
	user, err := h.store.FindUser(r.Context(), userID)
	if err != nil {
		writeInternalError(w, r, "find_user", err)
		return false
	}
	if user == nil {
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "user not found")
		return false
	}
	return true
}
