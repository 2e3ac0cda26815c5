// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

// Package events publishes notification delivery outcomes.
//
// After every send attempt the distribution jobs publish an Event to
// <topic>.sent or <topic>.failed. The transport is Watermill: an
// in-process Go channel pub/sub by default, or NATS JetStream when a
// NATS URL is configured. Publishing is best effort; callers log
// failures and carry on.
package events
