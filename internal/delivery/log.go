// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package delivery

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes notifications to the log. It is the default sender
// when no push gateway is configured.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a LogSender.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "log_sender").Logger()}
}

// Name returns the sender identifier.
func (s *LogSender) Name() string { return "log" }

// Send logs the message and reports it delivered.
func (s *LogSender) Send(_ context.Context, msg *Message) Result {
	if err := msg.Validate(); err != nil {
		return Failed(ErrorCodeInvalidMessage, err.Error())
	}
	s.logger.Info().
		Str("notification_id", msg.NotificationID).
		Str("user_id", msg.UserID).
		Str("item_id", msg.ItemID).
		Str("title", msg.Title).
		Msg("Daily fact notification")
	return Delivered()
}
