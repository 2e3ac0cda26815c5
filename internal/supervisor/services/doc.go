// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

/*
Package services adapts Dailyfacts components to suture's Serve pattern.

	type Service interface {
	    Serve(ctx context.Context) error
	}

Services:

  - HTTPServerService: the API server, shut down gracefully on cancel
  - SchedulerService: the recurring job scheduler (Start/Stop lifecycle)
  - EventConsumerService: logs in-process delivery outcome events

Each service returns ctx.Err() on a requested shutdown and a wrapped error
on failure, which suture answers with a restart under backoff.
*/
package services
