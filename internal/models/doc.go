// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

// Package models defines the persisted records shared by the Dailyfacts
// storage, personalization and scheduling layers.
//
// Content items, users and preferences are owned by other subsystems and
// are read-only here. Interaction and notification records are written
// through patch types built from Optional fields, which distinguish an
// absent field (left untouched) from an explicit null (cleared).
package models
