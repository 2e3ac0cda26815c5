// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

// Package validation wraps go-playground/validator v10 with a shared,
// thread-safe validator and readable error messages.
//
// Field names in messages use the json tag when present, so API clients see
// the names they sent:
//
//	type interactionRequest struct {
//	    ItemID string `json:"item_id" validate:"required,max=64"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    // verr.Error() == "item_id is required"
//	}
//
// Custom tags:
//   - difficulty: a known models.Difficulty level (EASY..EXPERT)
package validation
