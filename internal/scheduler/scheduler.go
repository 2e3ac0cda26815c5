// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tomtom215/dailyfacts/internal/logging"
	"github.com/tomtom215/dailyfacts/internal/metrics"
)

var (
	// ErrJobNotFound is returned for operations on an unregistered job.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobExists is returned when registering a duplicate job name.
	ErrJobExists = errors.New("job already registered")
)

// defaultRunTimeout bounds a single job execution.
const defaultRunTimeout = 30 * time.Minute

// Handler is the work of one job execution.
type Handler func(ctx context.Context) error

// State is the lifecycle state of a job.
type State string

const (
	StateStopped   State = "stopped"
	StateScheduled State = "scheduled"
	StateRunning   State = "running"
)

// JobInfo describes a registered job.
type JobInfo struct {
	Name      string    `json:"name"`
	Spec      string    `json:"spec"`
	State     State     `json:"state"`
	NextRun   time.Time `json:"next_run,omitempty"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	Runs      int64     `json:"runs"`
	Failures  int64     `json:"failures"`
}

type job struct {
	name     string
	spec     string
	schedule cron.Schedule
	handler  Handler
	entryID  cron.EntryID
	running  int
	lastRun  time.Time
	lastErr  error
	runs     int64
	failures int64
}

// Options configure a Scheduler.
type Options struct {
	// Location is the reference time zone for cron specs.
	Location *time.Location
	// RunTimeout bounds each execution; zero uses 30 minutes.
	RunTimeout time.Duration
}

// Scheduler owns the set of registered jobs.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	logger  zerolog.Logger

	mu      sync.Mutex
	jobs    map[string]*job
	baseCtx context.Context
	cancel  context.CancelFunc
	started bool
}

// New creates a Scheduler. Jobs are registered stopped.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(opts Options, logger zerolog.Logger) *Scheduler {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	timeout := opts.RunTimeout
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}
	logger = logger.With().Str("component", "scheduler").Logger()
	cl := cronLogger{logger: logger}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.SkipIfStillRunning(cl)),
		),
		timeout: timeout,
		logger:  logger,
		jobs:    make(map[string]*job),
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Register adds a stopped job. spec uses the standard five-field cron
// syntax or a descriptor such as "@every 15m".
func (s *Scheduler) Register(name, spec string, handler Handler) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: %s", ErrJobExists, name)
	}
	s.jobs[name] = &job{name: name, spec: spec, schedule: schedule, handler: handler}
	s.logger.Debug().Str("job", name).Str("spec", spec).Msg("Registered job")
	return nil
}

// StartJob schedules a stopped job. Starting a scheduled job is a no-op.
func (s *Scheduler) StartJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if j.entryID != 0 {
		s.logger.Warn().Str("job", name).Msg("Job already scheduled")
		return nil
	}
	base := s.baseCtx
	j.entryID = s.cron.Schedule(j.schedule, cron.FuncJob(func() { _ = s.execute(base, j) }))
	s.logger.Info().Str("job", name).Str("spec", j.spec).Msg("Job scheduled")
	return nil
}

// StopJob unschedules a job. A run in progress is allowed to finish.
// Stopping a job that is not scheduled is a no-op.
func (s *Scheduler) StopJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if j.entryID == 0 {
		s.logger.Warn().Str("job", name).Msg("Job not scheduled")
		return nil
	}
	s.cron.Remove(j.entryID)
	j.entryID = 0
	s.logger.Info().Str("job", name).Msg("Job stopped")
	return nil
}

// Start schedules every registered job and starts the timer loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.started = true
	names := s.namesLocked()
	base := s.baseCtx
	s.mu.Unlock()

	for _, name := range names {
		if err := s.StartJob(name); err != nil {
			return err
		}
	}
	s.cron.Start()

	// Stop the timer loop when the parent context ends.
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Stop()
		case <-base.Done():
		}
	}()

	s.logger.Info().Int("jobs", len(names)).Msg("Scheduler started")
	return nil
}

// Stop unschedules all jobs, cancels running handlers and waits for them
// to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	for _, j := range s.jobs {
		if j.entryID != 0 {
			s.cron.Remove(j.entryID)
			j.entryID = 0
		}
	}
	s.mu.Unlock()

	s.logger.Info().Msg("Stopping scheduler...")
	done := s.cron.Stop()
	s.mu.Lock()
	cancel := s.cancel
	// Handlers scheduled after a restart run under a fresh context.
	s.baseCtx, s.cancel = context.WithCancel(context.Background())
	s.mu.Unlock()
	cancel()
	<-done.Done()
	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// RunNow executes a job synchronously regardless of its schedule and
// returns the handler's error.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.execute(ctx, j)
}

// ListJobs returns all jobs sorted by name.
func (s *Scheduler) ListJobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, name := range s.namesLocked() {
		j := s.jobs[name]
		info := JobInfo{
			Name:     j.name,
			Spec:     j.spec,
			State:    j.stateLocked(),
			LastRun:  j.lastRun,
			Runs:     j.runs,
			Failures: j.failures,
		}
		if j.lastErr != nil {
			info.LastError = j.lastErr.Error()
		}
		if j.entryID != 0 {
			info.NextRun = s.cron.Entry(j.entryID).Next
		}
		infos = append(infos, info)
	}
	return infos
}

// State returns the state of a job.
func (s *Scheduler) State(name string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return j.stateLocked(), nil
}

func (s *Scheduler) namesLocked() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (j *job) stateLocked() State {
	switch {
	case j.running > 0:
		return StateRunning
	case j.entryID != 0:
		return StateScheduled
	default:
		return StateStopped
	}
}

// execute runs one handler invocation with timeout, panic recovery,
// logging and metrics.
func (s *Scheduler) execute(parent context.Context, j *job) (err error) {
	s.mu.Lock()
	j.running++
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(logging.ContextWithNewCorrelationID(parent), s.timeout)
	start := time.Now()
	logger := s.logger.With().
		Str("job", j.name).
		Str("correlation_id", logging.CorrelationIDFromContext(ctx)).
		Logger()
	ctx = logging.ContextWithLogger(ctx, logger)
	logger.Debug().Msg("Job started")

	defer func() {
		status := "success"
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.name, r)
			status = "panic"
			logger.Error().Str("stack", string(debug.Stack())).Interface("panic", r).Msg("Job panicked")
		} else if err != nil {
			status = "error"
			logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Job failed")
		} else {
			logger.Debug().Dur("duration", time.Since(start)).Msg("Job completed")
		}
		cancel()
		metrics.RecordJobRun(j.name, status, time.Since(start))

		s.mu.Lock()
		j.running--
		j.runs++
		j.lastRun = start
		j.lastErr = err
		if err != nil {
			j.failures++
		}
		s.mu.Unlock()
	}()

	return j.handler(ctx)
}
