// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package main

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/dailyfacts/internal/api"
	"github.com/tomtom215/dailyfacts/internal/cache"
	"github.com/tomtom215/dailyfacts/internal/clock"
	"github.com/tomtom215/dailyfacts/internal/config"
	"github.com/tomtom215/dailyfacts/internal/database"
	"github.com/tomtom215/dailyfacts/internal/delivery"
	"github.com/tomtom215/dailyfacts/internal/distribution"
	"github.com/tomtom215/dailyfacts/internal/events"
	"github.com/tomtom215/dailyfacts/internal/recommend"
	"github.com/tomtom215/dailyfacts/internal/recommend/reranking"
	"github.com/tomtom215/dailyfacts/internal/scheduler"
	"github.com/tomtom215/dailyfacts/internal/supervisor"
	"github.com/tomtom215/dailyfacts/internal/supervisor/services"
)

// app holds the initialized components.
type app struct {
	db        *database.DB
	cache     cache.Store
	profiles  *recommend.ProfileBuilder
	engine    *recommend.Engine
	publisher *events.Publisher
	scheduler *scheduler.Scheduler
	logger    zerolog.Logger
}

//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (a *app, err error) {
	a = &app{logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.db, err = database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	logger.Info().Msg("Database initialized successfully")

	a.cache, err = cache.New(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize cache: %w", err)
	}

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		return nil, err
	}
	clk := clock.System{}

	if err := a.initRecommend(cfg, clk, logger); err != nil {
		return nil, err
	}

	sender, err := delivery.New(&cfg.Delivery, clk, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize delivery: %w", err)
	}

	var publisher distribution.EventPublisher
	if cfg.Events.Enabled {
		a.publisher, err = events.NewPublisher(&cfg.Events, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize events: %w", err)
		}
		publisher = a.publisher
	}

	a.scheduler = scheduler.New(scheduler.Options{Location: loc}, logger)
	if err := a.initJobs(cfg, clk, loc, sender, publisher, logger); err != nil {
		return nil, err
	}
	return a, nil
}

//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func (a *app) initRecommend(cfg *config.Config, clk clock.Clock, logger zerolog.Logger) error {
	rcfg := recommend.DefaultConfig()
	if cfg.Recommend.DefaultLimit > 0 {
		rcfg.DefaultLimit = cfg.Recommend.DefaultLimit
	}
	if cfg.Recommend.MaxLimit > 0 {
		rcfg.MaxLimit = cfg.Recommend.MaxLimit
	}
	if cfg.Cache.ProfileTTL > 0 {
		rcfg.ProfileTTL = cfg.Cache.ProfileTTL
	}
	rcfg.CategoryEngagement = cfg.Recommend.CategoryEngagement

	analyzer := recommend.NewAnalyzer(a.db, clk, logger)
	a.profiles = recommend.NewProfileBuilder(a.db, a.db, analyzer, a.cache, clk, rcfg, logger)
	similar := recommend.NewSimilarityRecommender(a.db, clk, logger)

	engine, err := recommend.NewEngine(a.db, a.profiles, similar, reranking.NewDiversityCap(), clk, rcfg, logger)
	if err != nil {
		return fmt.Errorf("initialize selection engine: %w", err)
	}
	a.engine = engine

	logger.Info().
		Int("default_limit", rcfg.DefaultLimit).
		Int("max_limit", rcfg.MaxLimit).
		Bool("category_engagement", rcfg.CategoryEngagement).
		Msg("Personalization initialized")
	return nil
}

//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func (a *app) initJobs(cfg *config.Config, clk clock.Clock, loc *time.Location, sender delivery.Sender,
	publisher distribution.EventPublisher, logger zerolog.Logger) error {
	dcfg := distribution.ConfigFrom(&cfg.Scheduler)

	seed := cfg.Scheduler.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	//nolint:gosec // item choice is not security sensitive
	rng := rand.New(rand.NewSource(seed))

	// The badger backend reclaims value-log space after pruning.
	var gc distribution.GarbageCollector
	if collector, ok := a.cache.(distribution.GarbageCollector); ok {
		gc = collector
	}

	jobs := &distribution.Jobs{
		Distributor: distribution.NewDistributor(a.db, a.engine, sender, publisher, clk, loc, rng, dcfg, logger),
		Retry:       distribution.NewRetryProcessor(a.db, sender, publisher, clk, dcfg, logger),
		Maintenance: distribution.NewMaintainer(a.db, gc, clk, loc, dcfg, logger),
	}
	if err := jobs.Register(a.scheduler, &cfg.Scheduler); err != nil {
		return fmt.Errorf("register jobs: %w", err)
	}
	return nil
}

// addServices puts the scheduler, event consumer and API under supervision.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func (a *app) addServices(tree *supervisor.SupervisorTree, cfg *config.Config, logger zerolog.Logger) {
	tree.AddJobService(services.NewSchedulerService(a.scheduler))

	if a.publisher != nil && a.publisher.InProcess() {
		tree.AddMessagingService(services.NewEventConsumerService(a.publisher, logger))
	}

	handler := api.NewHandler(api.Deps{
		Store:        a.db,
		Selector:     a.engine,
		Profiles:     a.profiles,
		Jobs:         a.scheduler,
		Clock:        clock.System{},
		DefaultLimit: a.engine.Config().DefaultLimit,
	}, logger)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Server)))

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	server := &http.Server{
		Addr:              addr,
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, addr, cfg.Server.ShutdownTimeout, logger))
}

// Close releases resources in reverse order of creation.
func (a *app) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Error closing event publisher")
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Error closing cache")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Error closing database")
		}
	}
}
