// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

// Package config loads Dailyfacts configuration.
//
// Configuration is layered with koanf: built-in defaults, then an optional
// YAML file, then environment variables. Later layers win.
//
//	database:
//	  path: /data/dailyfacts.duckdb
//	scheduler:
//	  timezone: America/New_York
//	  batch_size: 50
//	cache:
//	  type: redis
//	  redis_addr: localhost:6379
//
// The same keys can be set from the environment, for example
// DUCKDB_PATH, SCHEDULER_TIMEZONE or CACHE_TYPE. See envMappings for the
// full table.
package config
