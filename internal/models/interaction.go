// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package models

import "time"

// DeliveryStatus tracks delivery of an item to a user on the interaction record.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
	DeliveryCancelled DeliveryStatus = "cancelled"
)

// InteractionRecord is the single record per (user, item) pair.
type InteractionRecord struct {
	UserID           string         `json:"user_id"`
	ItemID           string         `json:"item_id"`
	Viewed           bool           `json:"viewed"`
	ViewedAt         *time.Time     `json:"viewed_at,omitempty"`
	Liked            bool           `json:"liked"`
	Bookmarked       bool           `json:"bookmarked"`
	Shared           bool           `json:"shared"`
	DeliveryStatus   DeliveryStatus `json:"delivery_status,omitempty"`
	TimeSpentSeconds int            `json:"time_spent_seconds"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	// Item is populated when the query asks for item metadata.
	Item *ContentItem `json:"item,omitempty"`
}

// Engaged reports whether the user has acted on the item. Delivery alone
// does not count.
func (r *InteractionRecord) Engaged() bool {
	return r.Viewed || r.Liked || r.Bookmarked || r.Shared || r.TimeSpentSeconds > 0
}

// InteractionFilter narrows FindInteractions.
type InteractionFilter struct {
	ViewedOnly  bool
	LikedOnly   bool
	ViewedSince *time.Time
	// OrderByViewedAt sorts by view time ascending; otherwise most recently
	// updated first.
	OrderByViewedAt bool
	WithItem        bool
	Limit           int
}

// InteractionPatch is a partial update of an interaction record.
type InteractionPatch struct {
	Viewed           Optional[bool]
	ViewedAt         Optional[time.Time]
	Liked            Optional[bool]
	Bookmarked       Optional[bool]
	Shared           Optional[bool]
	DeliveryStatus   Optional[DeliveryStatus]
	TimeSpentSeconds Optional[int]
}

// UserActivity reports whether the patch carries a user action rather than
// only a delivery status change.
func (p *InteractionPatch) UserActivity() bool {
	return p.Viewed.IsSet() || p.ViewedAt.IsSet() || p.Liked.IsSet() ||
		p.Bookmarked.IsSet() || p.Shared.IsSet() || p.TimeSpentSeconds.IsSet()
}

// Empty reports whether the patch sets nothing.
func (p *InteractionPatch) Empty() bool {
	return !p.Viewed.IsSet() && !p.ViewedAt.IsSet() && !p.Liked.IsSet() &&
		!p.Bookmarked.IsSet() && !p.Shared.IsSet() && !p.DeliveryStatus.IsSet() &&
		!p.TimeSpentSeconds.IsSet()
}

// ApplyTo applies the patch to r. Null clears a field to its zero value.
func (p *InteractionPatch) ApplyTo(r *InteractionRecord) {
	p.Viewed.ApplyTo(&r.Viewed)
	p.ViewedAt.ApplyToPtr(&r.ViewedAt)
	p.Liked.ApplyTo(&r.Liked)
	p.Bookmarked.ApplyTo(&r.Bookmarked)
	p.Shared.ApplyTo(&r.Shared)
	p.DeliveryStatus.ApplyTo(&r.DeliveryStatus)
	p.TimeSpentSeconds.ApplyTo(&r.TimeSpentSeconds)
}
