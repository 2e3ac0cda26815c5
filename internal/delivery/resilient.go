// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/dailyfacts/internal/metrics"
)

// errTransientFailure marks a transient send failure for the breaker.
var errTransientFailure = errors.New("transient delivery failure")

// ResilientConfig tunes the Resilient wrapper.
type ResilientConfig struct {
	// RatePerSecond of 0 disables rate limiting.
	RatePerSecond float64
	Burst         int
	// MaxFailures is the consecutive transient failures that open the
	// breaker. 0 uses 5.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open. 0 uses 30s.
	OpenTimeout time.Duration
}

// Resilient wraps a Sender with a rate limiter and a circuit breaker.
// Only transient failures count against the breaker; permanent
// rejections are a property of the message, not of the gateway.
type Resilient struct {
	next    Sender
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[Result]
	logger  zerolog.Logger
}

// NewResilient wraps next.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewResilient(next Sender, cfg ResilientConfig, logger zerolog.Logger) *Resilient {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	r := &Resilient{
		next:   next,
		logger: logger.With().Str("component", "delivery").Str("sender", next.Name()).Logger(),
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	name := next.Name()
	r.breaker = gobreaker.NewCircuitBreaker[Result](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetCircuitBreakerState(name, breakerStateValue(to))
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
			r.logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("Sender circuit breaker state changed")
		},
	})
	metrics.SetCircuitBreakerState(name, 0)
	return r
}

// Name returns the wrapped sender's name.
func (r *Resilient) Name() string { return r.next.Name() }

// State returns the breaker state.
func (r *Resilient) State() gobreaker.State { return r.breaker.State() }

// Send waits for a rate-limit token, then sends through the breaker. An
// open breaker fails fast with ErrorCodeCircuitOpen.
func (r *Resilient) Send(ctx context.Context, msg *Message) Result {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return Failed(ErrorCodeTimeout, "rate limiter: "+err.Error())
		}
	}

	res, err := r.breaker.Execute(func() (Result, error) {
		res := r.next.Send(ctx, msg)
		if !res.Delivered && res.Transient {
			return res, errTransientFailure
		}
		return res, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Failed(ErrorCodeCircuitOpen, err.Error())
	}
	return res
}

func breakerStateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
