// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package distribution

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/dailyfacts/internal/clock"
	"github.com/tomtom215/dailyfacts/internal/delivery"
	"github.com/tomtom215/dailyfacts/internal/events"
	"github.com/tomtom215/dailyfacts/internal/logging"
	"github.com/tomtom215/dailyfacts/internal/metrics"
	"github.com/tomtom215/dailyfacts/internal/models"
)

// Retry outcomes.
const (
	RetryScheduled = "scheduled"
	RetryResent    = "resent"
	RetryCancelled = "cancelled"
	RetryError     = "error"
)

// RetrySummary reports one retry tick.
type RetrySummary struct {
	Due       int
	Scheduled int
	Resent    int
	Cancelled int
	Errors    int
}

// RetryProcessor advances failed notifications.
type RetryProcessor struct {
	store     Store
	sender    delivery.Sender
	publisher EventPublisher
	clock     clock.Clock
	config    Config
	logger    zerolog.Logger
}

// NewRetryProcessor creates a RetryProcessor. sender is only used when
// Config.ResendOnRetry is set.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRetryProcessor(store Store, sender delivery.Sender, publisher EventPublisher,
	clk clock.Clock, cfg Config, logger zerolog.Logger) *RetryProcessor {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBatchSize < 1 {
		cfg.RetryBatchSize = 50
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 5 * time.Minute
	}
	return &RetryProcessor{
		store:     store,
		sender:    sender,
		publisher: publisher,
		clock:     clk,
		config:    cfg,
		logger:    logger.With().Str("component", "notification_retry").Logger(),
	}
}

// Backoff returns the delay before the attempt numbered retryCount:
// base × 2^retryCount.
func Backoff(base time.Duration, retryCount int) time.Duration {
	return base * time.Duration(1<<uint(retryCount))
}

// Run processes one batch of due failed notifications. Records that
// reached the retry limit are never selected, so their failed status is
// terminal.
func (p *RetryProcessor) Run(ctx context.Context) (*RetrySummary, error) {
	now := p.clock.Now()
	summary := &RetrySummary{}

	recs, err := p.store.FindFailedNotifications(ctx, now, p.config.MaxRetries, p.config.RetryBatchSize)
	if err != nil {
		return summary, fmt.Errorf("load failed notifications: %w", err)
	}
	summary.Due = len(recs)

	for i := range recs {
		outcome := p.process(ctx, &recs[i], now)
		metrics.RecordRetry(outcome)
		switch outcome {
		case RetryScheduled:
			summary.Scheduled++
		case RetryResent:
			summary.Resent++
		case RetryCancelled:
			summary.Cancelled++
		default:
			summary.Errors++
		}
	}

	if summary.Due > 0 {
		p.logger.Info().
			Str("correlation_id", logging.CorrelationIDFromContext(ctx)).
			Int("due", summary.Due).
			Int("scheduled", summary.Scheduled).
			Int("resent", summary.Resent).
			Int("cancelled", summary.Cancelled).
			Int("errors", summary.Errors).
			Msg("Retry tick complete")
	}
	return summary, nil
}

func (p *RetryProcessor) process(ctx context.Context, rec *models.NotificationRecord, now time.Time) string {
	logger := p.logger.With().Str("notification_id", rec.ID).Str("user_id", rec.UserID).Logger()

	prefs, err := p.store.FindUserPreferences(ctx, rec.UserID)
	if err != nil {
		logger.Error().Err(err).Str("operation", "find_user_preferences").Msg("Retry failed")
		return RetryError
	}
	if prefs == nil || !prefs.NotificationsEnabled {
		return p.cancel(ctx, rec, now, logger)
	}

	retryCount := rec.RetryCount + 1
	patch := models.NotificationPatch{
		RetryCount:  models.Some(retryCount),
		NextRetryAt: models.Some(now.Add(Backoff(p.config.RetryBaseDelay, retryCount))),
	}
	outcome := RetryScheduled

	if p.config.ResendOnRetry && p.sender != nil && rec.ItemID != nil {
		outcome = p.resend(ctx, rec, retryCount, &patch, now, logger)
	}

	if err := p.store.UpdateNotification(ctx, rec.ID, patch, now); err != nil {
		logger.Error().Err(err).Str("operation", "update_notification").Msg("Retry failed")
		return RetryError
	}
	return outcome
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (p *RetryProcessor) cancel(ctx context.Context, rec *models.NotificationRecord, now time.Time, logger zerolog.Logger) string {
	patch := models.NotificationPatch{
		Status:      models.Some(models.NotificationCancelled),
		NextRetryAt: models.Null[time.Time](),
	}
	if err := p.store.UpdateNotification(ctx, rec.ID, patch, now); err != nil {
		logger.Error().Err(err).Str("operation", "update_notification").Msg("Failed to cancel notification")
		return RetryError
	}
	if rec.ItemID != nil {
		ip := models.InteractionPatch{DeliveryStatus: models.Some(models.DeliveryCancelled)}
		if err := p.store.UpsertInteraction(ctx, rec.UserID, *rec.ItemID, ip, now); err != nil {
			logger.Warn().Err(err).Str("operation", "upsert_interaction").Msg("Failed to record cancellation")
		}
	}
	metrics.RecordNotification(string(models.NotificationCancelled))
	logger.Info().Msg("Notification cancelled, user disabled notifications")
	return RetryCancelled
}

// resend attempts delivery again, folding the result into patch.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (p *RetryProcessor) resend(ctx context.Context, rec *models.NotificationRecord, retryCount int,
	patch *models.NotificationPatch, now time.Time, logger zerolog.Logger) string {
	itemID := *rec.ItemID
	res := p.sender.Send(ctx, &delivery.Message{
		NotificationID: rec.ID,
		UserID:         rec.UserID,
		ItemID:         itemID,
		Title:          rec.Title,
		Body:           rec.Body,
	})

	ev := events.Event{
		NotificationID: rec.ID,
		UserID:         rec.UserID,
		ItemID:         itemID,
		RetryCount:     retryCount,
		OccurredAt:     now,
	}
	status := models.DeliveryFailed
	outcome := RetryScheduled
	if res.Delivered {
		patch.Status = models.Some(models.NotificationSent)
		patch.SentAt = models.Some(now)
		patch.NextRetryAt = models.Null[time.Time]()
		patch.ErrorDetail = models.Null[string]()
		ev.Outcome = events.OutcomeSent
		status = models.DeliverySent
		outcome = RetryResent
		metrics.RecordNotification(string(models.NotificationSent))
	} else {
		patch.ErrorDetail = models.Some(errorDetail(res))
		ev.Outcome = events.OutcomeFailed
		ev.ErrorCode = res.ErrorCode
		metrics.RecordNotification(string(models.NotificationFailed))
	}

	ip := models.InteractionPatch{DeliveryStatus: models.Some(status)}
	if err := p.store.UpsertInteraction(ctx, rec.UserID, itemID, ip, now); err != nil {
		logger.Warn().Err(err).Str("operation", "upsert_interaction").Msg("Failed to record delivery status")
	}
	if err := p.publisher.Publish(ctx, ev); err != nil {
		logger.Warn().Err(err).Msg("Failed to publish delivery event")
	}
	return outcome
}
