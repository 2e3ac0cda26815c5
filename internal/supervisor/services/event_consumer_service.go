// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/dailyfacts/internal/events"
)

// EventSource is the subscribing side of *events.Publisher.
type EventSource interface {
	Subscribe(ctx context.Context, o events.Outcome) (<-chan *message.Message, error)
}

// EventConsumerService logs delivery outcome events published in
// process. With the NATS transport, consumers live elsewhere and the
// service idles until shutdown.
type EventConsumerService struct {
	source EventSource
	logger zerolog.Logger
}

// NewEventConsumerService creates the consumer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEventConsumerService(source EventSource, logger zerolog.Logger) *EventConsumerService {
	return &EventConsumerService{
		source: source,
		logger: logger.With().Str("service", "event-consumer").Logger(),
	}
}

// Serve implements suture.Service.
func (c *EventConsumerService) Serve(ctx context.Context) error {
	sent, err := c.source.Subscribe(ctx, events.OutcomeSent)
	if errors.Is(err, events.ErrSubscribeUnsupported) {
		c.logger.Debug().Msg("event transport is external, consumer idle")
		<-ctx.Done()
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("subscribe sent events: %w", err)
	}
	failed, err := c.source.Subscribe(ctx, events.OutcomeFailed)
	if err != nil {
		return fmt.Errorf("subscribe failed events: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-sent:
			if !ok {
				return errors.New("sent event stream closed")
			}
			c.handle(msg)
		case msg, ok := <-failed:
			if !ok {
				return errors.New("failed event stream closed")
			}
			c.handle(msg)
		}
	}
}

func (c *EventConsumerService) handle(msg *message.Message) {
	// Malformed payloads are acked so they are not redelivered forever.
	defer msg.Ack()

	ev, err := events.Decode(msg)
	if err != nil {
		c.logger.Warn().Err(err).Msg("dropping malformed event")
		return
	}

	entry := c.logger.Info()
	if ev.Outcome == events.OutcomeFailed {
		entry = c.logger.Warn().Str("error_code", ev.ErrorCode).Int("retry_count", ev.RetryCount)
	}
	entry.
		Str("outcome", string(ev.Outcome)).
		Str("notification_id", ev.NotificationID).
		Str("user_id", ev.UserID).
		Str("item_id", ev.ItemID).
		Msg("delivery event")
}

func (c *EventConsumerService) String() string {
	return "event-consumer"
}
