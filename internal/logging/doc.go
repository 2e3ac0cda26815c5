// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

// Package logging provides the process-wide zerolog logger for Dailyfacts.
//
// The logger is configured once at startup from the logging section of the
// service configuration:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
// Components derive a child logger tagged with their name:
//
//	logger := logging.WithComponent("distribution")
//	logger.Info().Str("user_id", id).Msg("notification sent")
//
// Scheduler ticks and HTTP requests carry a correlation ID in their context.
// Ctx returns a logger annotated with it:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Debug().Msg("tick started")
//
// NewSlogLogger adapts the global logger to log/slog for the suture
// supervisor event hook.
package logging
