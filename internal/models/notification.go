// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package models

import "time"

// NotificationStatus is the audit and retry state of a notification.
type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationSent      NotificationStatus = "sent"
	NotificationDelivered NotificationStatus = "delivered"
	NotificationFailed    NotificationStatus = "failed"
	NotificationCancelled NotificationStatus = "cancelled"
)

// CountsTowardDailyCap reports whether a notification in this status uses
// up one of the user's daily deliveries. Pending records count: they are
// either in flight or were sent without their outcome being recorded.
func (s NotificationStatus) CountsTowardDailyCap() bool {
	return s == NotificationSent || s == NotificationDelivered || s == NotificationPending
}

// NotificationRecord is a persisted notification attempt.
type NotificationRecord struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	ItemID      *string            `json:"item_id,omitempty"`
	Title       string             `json:"title"`
	Body        string             `json:"body"`
	Status      NotificationStatus `json:"status"`
	RetryCount  int                `json:"retry_count"`
	NextRetryAt *time.Time         `json:"next_retry_at,omitempty"`
	ErrorDetail *string            `json:"error_detail,omitempty"`
	SentAt      *time.Time         `json:"sent_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// NewNotification holds the fields of a notification to create.
type NewNotification struct {
	UserID string
	ItemID *string
	Title  string
	Body   string
	Status NotificationStatus
}

// NotificationPatch is a partial update of a notification record.
type NotificationPatch struct {
	Status      Optional[NotificationStatus]
	RetryCount  Optional[int]
	NextRetryAt Optional[time.Time]
	ErrorDetail Optional[string]
	SentAt      Optional[time.Time]
}

// ApplyTo applies the patch to r.
func (p *NotificationPatch) ApplyTo(r *NotificationRecord) {
	p.Status.ApplyTo(&r.Status)
	p.RetryCount.ApplyTo(&r.RetryCount)
	p.NextRetryAt.ApplyToPtr(&r.NextRetryAt)
	p.ErrorDetail.ApplyToPtr(&r.ErrorDetail)
	p.SentAt.ApplyToPtr(&r.SentAt)
}
