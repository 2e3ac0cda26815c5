// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

// Package api serves the Dailyfacts HTTP API on a chi router.
//
// Routes:
//
//	GET  /health, /health/live, /health/ready
//	GET  /metrics
//	GET  /api/v1/users/{id}/daily-facts
//	POST /api/v1/users/{id}/interactions
//	GET  /api/v1/jobs
//	POST /api/v1/jobs/{name}/run
//
// Responses share the APIResponse envelope. Authentication happens in front
// of this service; {id} is trusted as the caller's user ID.
package api
