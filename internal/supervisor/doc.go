// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

/*
Package supervisor runs the Dailyfacts long-lived services under suture v4.

	RootSupervisor ("dailyfacts")
	├── JobsSupervisor ("jobs-layer")
	│   └── SchedulerService (distribution, retry, maintenance jobs)
	├── MessagingSupervisor ("messaging-layer")
	│   └── EventConsumerService (in-process delivery events)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with suture's failure decay and backoff. Context
cancellation shuts the tree down; the scheduler waits for running ticks
before its service returns.

DuckDB and the profile cache are not supervised. They are libraries owned
by main and closed after the tree stops.

Supervisor events are logged through sutureslog using the zerolog-backed
slog handler from internal/logging.
*/
package supervisor
