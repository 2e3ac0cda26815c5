// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package distribution

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/dailyfacts/internal/clock"
	"github.com/tomtom215/dailyfacts/internal/delivery"
	"github.com/tomtom215/dailyfacts/internal/events"
	"github.com/tomtom215/dailyfacts/internal/logging"
	"github.com/tomtom215/dailyfacts/internal/metrics"
	"github.com/tomtom215/dailyfacts/internal/models"
	"github.com/tomtom215/dailyfacts/internal/recommend"
)

// Per-user outcomes of a distribution tick.
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
	OutcomeCapped    = "capped"
	OutcomeNoContent = "no_content"
	OutcomeError     = "error"
)

// Summary reports one distribution tick.
type Summary struct {
	ReferenceHour  int
	Scheduled      int // active users with notifications enabled
	Matched        int // users whose delivery hour is now
	SkippedWeekend int
	Outcomes       map[string]int
}

func (s *Summary) add(outcome string) {
	s.Outcomes[outcome]++
}

// Distributor runs the hourly distribution tick.
type Distributor struct {
	store     Store
	selector  Selector
	sender    delivery.Sender
	publisher EventPublisher
	clock     clock.Clock
	loc       *time.Location
	config    Config
	logger    zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewDistributor creates a Distributor. loc is the reference time zone;
// rng drives the random fallback pick and must not be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewDistributor(store Store, selector Selector, sender delivery.Sender, publisher EventPublisher,
	clk clock.Clock, loc *time.Location, rng *rand.Rand, cfg Config, logger zerolog.Logger) *Distributor {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if loc == nil {
		loc = time.UTC
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 50
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	return &Distributor{
		store:     store,
		selector:  selector,
		sender:    sender,
		publisher: publisher,
		clock:     clk,
		loc:       loc,
		config:    cfg,
		rng:       rng,
		logger:    logger.With().Str("component", "distribution").Logger(),
	}
}

// Run executes one tick. It returns an error only when the user list
// cannot be loaded or ctx ends between batches.
func (d *Distributor) Run(ctx context.Context) (*Summary, error) {
	now := d.clock.Now()
	summary := &Summary{
		ReferenceHour: now.In(d.loc).Hour(),
		Outcomes:      make(map[string]int),
	}
	logger := d.logger.With().Str("correlation_id", logging.CorrelationIDFromContext(ctx)).Logger()

	users, err := d.store.FindScheduledUsers(ctx)
	if err != nil {
		return summary, fmt.Errorf("load scheduled users: %w", err)
	}
	summary.Scheduled = len(users)

	due := d.dueUsers(users, now, summary, logger)
	summary.Matched = len(due) + summary.SkippedWeekend

	var mu sync.Mutex
	for start := 0; start < len(due); start += d.config.BatchSize {
		if start > 0 && d.config.BatchPause > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(d.config.BatchPause):
			}
		}
		end := min(start+d.config.BatchSize, len(due))

		var g errgroup.Group
		g.SetLimit(d.config.Parallelism)
		for i := start; i < end; i++ {
			su := due[i]
			g.Go(func() error {
				outcome := d.processUser(ctx, &su, now)
				metrics.RecordDistributionOutcome(outcome)
				mu.Lock()
				summary.add(outcome)
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	logger.Info().
		Int("reference_hour", summary.ReferenceHour).
		Int("scheduled", summary.Scheduled).
		Int("matched", summary.Matched).
		Int("skipped_weekend", summary.SkippedWeekend).
		Int("delivered", summary.Outcomes[OutcomeDelivered]).
		Int("failed", summary.Outcomes[OutcomeFailed]).
		Int("capped", summary.Outcomes[OutcomeCapped]).
		Int("no_content", summary.Outcomes[OutcomeNoContent]).
		Int("errors", summary.Outcomes[OutcomeError]).
		Msg("Distribution tick complete")
	return summary, nil
}

// dueUsers keeps users whose delivery time converts to the current
// reference hour, dropping weekend opt-outs on Saturday and Sunday.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (d *Distributor) dueUsers(users []models.ScheduledUser, now time.Time, summary *Summary, logger zerolog.Logger) []models.ScheduledUser {
	weekend := clock.IsWeekend(now, d.loc)
	due := make([]models.ScheduledUser, 0, len(users))
	for i := range users {
		p := &users[i].Preferences
		hour, err := clock.ReferenceHour(p.NotificationTime, p.Timezone, now, d.loc)
		if err != nil {
			logger.Warn().Err(err).Str("user_id", users[i].User.ID).Msg("Invalid delivery time preference")
			continue
		}
		if hour != summary.ReferenceHour {
			continue
		}
		if weekend && !p.WeekendNotifications {
			summary.SkippedWeekend++
			continue
		}
		due = append(due, users[i])
	}
	return due
}

// processUser runs the sequential per-user flow: cap check, selection,
// notification record, send, outcome recording.
func (d *Distributor) processUser(ctx context.Context, su *models.ScheduledUser, now time.Time) string {
	userID := su.User.ID
	logger := d.logger.With().Str("user_id", userID).Logger()

	sent, err := d.store.CountTodaysNotifications(ctx, userID, clock.StartOfDay(now, d.loc))
	if err != nil {
		logger.Error().Err(err).Str("operation", "count_todays_notifications").Msg("Distribution failed for user")
		return OutcomeError
	}
	if sent >= dailyCap(&su.Preferences) {
		return OutcomeCapped
	}

	item := d.pickItem(ctx, su, now, logger)
	if item == nil {
		return OutcomeNoContent
	}

	itemID := item.ID
	rec, err := d.store.CreateNotification(ctx, models.NewNotification{
		UserID: userID,
		ItemID: &itemID,
		Title:  item.Title,
		Body:   item.Body,
		Status: models.NotificationPending,
	}, now)
	if err != nil {
		logger.Error().Err(err).Str("operation", "create_notification").Msg("Distribution failed for user")
		return OutcomeError
	}

	res := d.sender.Send(ctx, &delivery.Message{
		NotificationID: rec.ID,
		UserID:         userID,
		ItemID:         itemID,
		Title:          item.Title,
		Body:           item.Body,
	})
	return d.recordOutcome(ctx, rec, res, now, logger)
}

// recordOutcome persists a send result on the notification and the
// interaction record, then publishes the outcome event.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (d *Distributor) recordOutcome(ctx context.Context, rec *models.NotificationRecord, res delivery.Result,
	now time.Time, logger zerolog.Logger) string {
	itemID := ""
	if rec.ItemID != nil {
		itemID = *rec.ItemID
	}

	patch := models.NotificationPatch{}
	deliveryStatus := models.DeliverySent
	outcome := OutcomeDelivered
	ev := events.Event{
		NotificationID: rec.ID,
		UserID:         rec.UserID,
		ItemID:         itemID,
		OccurredAt:     now,
	}
	if res.Delivered {
		patch.Status = models.Some(models.NotificationSent)
		patch.SentAt = models.Some(now)
		ev.Outcome = events.OutcomeSent
		metrics.RecordNotification(string(models.NotificationSent))
	} else {
		patch.Status = models.Some(models.NotificationFailed)
		patch.ErrorDetail = models.Some(errorDetail(res))
		// Permanent rejections are terminal; transient failures are left
		// for the retry job.
		if !res.Transient {
			patch.RetryCount = models.Some(d.config.MaxRetries)
		}
		deliveryStatus = models.DeliveryFailed
		outcome = OutcomeFailed
		ev.Outcome = events.OutcomeFailed
		ev.ErrorCode = res.ErrorCode
		metrics.RecordNotification(string(models.NotificationFailed))
		logger.Warn().Str("notification_id", rec.ID).Str("error_code", res.ErrorCode).Msg("Notification send failed")
	}

	if err := d.store.UpdateNotification(ctx, rec.ID, patch, now); err != nil {
		logger.Error().Err(err).Str("operation", "update_notification").Str("notification_id", rec.ID).
			Bool("delivered", res.Delivered).Msg("Failed to record send outcome; notification left pending")
	}
	if itemID != "" {
		ip := models.InteractionPatch{DeliveryStatus: models.Some(deliveryStatus)}
		if err := d.store.UpsertInteraction(ctx, rec.UserID, itemID, ip, now); err != nil {
			logger.Error().Err(err).Str("operation", "upsert_interaction").Str("item_id", itemID).Msg("Failed to record delivery status")
		}
	}
	if err := d.publisher.Publish(ctx, ev); err != nil {
		logger.Warn().Err(err).Str("notification_id", rec.ID).Msg("Failed to publish delivery event")
	}
	return outcome
}

// pickItem selects one item: the personalized choice among unseen items,
// else a random eligible item at the user's difficulty.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (d *Distributor) pickItem(ctx context.Context, su *models.ScheduledUser, now time.Time, logger zerolog.Logger) *models.ContentItem {
	items, err := d.selector.SelectPersonalized(ctx, su.User.ID, recommend.Options{
		Limit:                  1,
		ExcludeViewed:          true,
		IncludeRecommendations: true,
	})
	if err != nil {
		logger.Warn().Err(err).Str("operation", "select_personalized").Msg("Personalized selection failed")
	}
	if len(items) > 0 {
		return &items[0]
	}

	metrics.RecordSelectionFallback("distribution_random")
	candidates, err := d.store.FindEligibleItems(ctx, models.ItemFilter{
		Now:        now,
		Difficulty: su.Preferences.Difficulty,
	})
	if err != nil {
		logger.Error().Err(err).Str("operation", "find_eligible_items").Msg("Fallback selection failed")
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	d.rngMu.Lock()
	idx := d.rng.Intn(len(candidates))
	d.rngMu.Unlock()
	return &candidates[idx]
}

// dailyCap returns the user's daily limit, at least 1.
func dailyCap(p *models.UserPreferences) int {
	if p.MaxNotificationsPerDay < 1 {
		return 1
	}
	return p.MaxNotificationsPerDay
}

func errorDetail(res delivery.Result) string {
	if res.Detail == "" {
		return res.ErrorCode
	}
	return res.ErrorCode + ": " + res.Detail
}
