// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

// Package delivery sends daily-fact notifications to users.
//
// A Sender reports a per-recipient outcome rather than an error: failure
// to deliver is an expected condition recorded on the notification and
// retried by the scheduler. Senders:
//
//   - LogSender: writes the notification to the log and reports success.
//   - WebhookSender: POSTs a JSON payload to a push gateway.
//   - Resilient: wraps another Sender with a token-bucket rate limiter and
//     a circuit breaker.
//
// New builds the configured sender wrapped in Resilient.
package delivery
