// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

// Package main is the entry point for the Dailyfacts server.
//
// Dailyfacts delivers one personalized fact per day to each subscribed
// user at their chosen local time, and serves on-demand personalized
// selections over HTTP.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, config file and environment (Koanf v2)
//  2. Database: DuckDB repository
//  3. Cache: profile cache (none, memory, badger or redis)
//  4. Personalization: analyzer, profile builder, similarity recommender,
//     diversity-capped selection engine
//  5. Delivery: rate-limited, circuit-broken notification sender
//  6. Events: delivery outcome publisher (in-process or NATS JetStream)
//  7. Jobs: hourly distribution, retry and maintenance on a cron scheduler
//  8. HTTP Server: health, metrics, jobs admin and daily-facts API
//
// Long-running parts run under a suture supervisor tree.
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the tree. The scheduler waits for running
// jobs, the HTTP server drains connections, then the event publisher,
// cache and database are closed.
//
// # Example Usage
//
//	export DUCKDB_PATH=/data/dailyfacts.duckdb
//	export SCHEDULER_TIMEZONE=UTC
//	export DELIVERY_SENDER=webhook
//	export DELIVERY_WEBHOOK_URL=https://push.internal/notify
//	./dailyfacts
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/dailyfacts/internal/config"
	"github.com/tomtom215/dailyfacts/internal/logging"
	"github.com/tomtom215/dailyfacts/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Service:   "dailyfacts",
	})
	logger := logging.Logger()

	logger.Info().
		Str("db_path", cfg.Database.Path).
		Str("cache", cfg.Cache.Type).
		Str("timezone", cfg.Scheduler.Timezone).
		Str("sender", cfg.Delivery.Sender).
		Msg("Starting Dailyfacts")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer app.Close()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	app.addServices(tree, cfg, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logger.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logger.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logger.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logger.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logger.Info().Msg("Application stopped gracefully")
}
