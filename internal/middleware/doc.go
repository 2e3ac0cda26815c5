// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

// Package middleware provides HTTP middleware shared by the API router.
//
//   - RequestID: honours or generates X-Request-ID and binds it to the
//     request context as the logging correlation ID.
//   - PrometheusMetrics: records request count and latency per chi route
//     pattern, so path parameters do not explode label cardinality.
//
// Both take and return http.Handler and plug into chi's r.Use.
package middleware
