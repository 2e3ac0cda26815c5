// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

// Package scheduler runs named recurring jobs on cron schedules.
//
// Each job moves through stopped, scheduled and running states. Jobs are
// independent: a failing or panicking handler is logged and recorded in
// metrics, and its future executions stay scheduled. A job whose previous
// run is still in progress skips the overlapping tick. Different jobs may
// run at the same time.
//
// Handlers receive a context bounded by the configured run timeout and are
// free of any timer logic, so tests and the admin API invoke them directly
// through RunNow.
package scheduler
