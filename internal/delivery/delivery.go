// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package delivery

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/dailyfacts/internal/clock"
	"github.com/tomtom215/dailyfacts/internal/config"
)

// Error codes reported in Result.ErrorCode.
const (
	ErrorCodeInvalidMessage   = "invalid_message"
	ErrorCodeConnectionFailed = "connection_failed"
	ErrorCodeTimeout          = "timeout"
	ErrorCodeRateLimited      = "rate_limited"
	ErrorCodeServerError      = "server_error"
	ErrorCodeRejected         = "rejected"
	ErrorCodeCircuitOpen      = "circuit_open"
	ErrorCodeUnknown          = "unknown"
)

// Message is the content of one notification.
type Message struct {
	NotificationID string
	UserID         string
	ItemID         string
	Title          string
	Body           string
}

// Validate checks the fields every sender requires.
func (m *Message) Validate() error {
	if m == nil {
		return fmt.Errorf("message is required")
	}
	if m.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(m.Title) == "" && strings.TrimSpace(m.Body) == "" {
		return fmt.Errorf("message has no content")
	}
	return nil
}

// Result is the outcome of one send.
type Result struct {
	Delivered bool
	ErrorCode string
	// Transient marks failures worth retrying.
	Transient bool
	Detail    string
}

// Delivered returns a successful result.
func Delivered() Result {
	return Result{Delivered: true}
}

// Failed returns a failed result with the given code.
func Failed(code, detail string) Result {
	return Result{ErrorCode: code, Transient: isTransient(code), Detail: detail}
}

// Sender delivers one notification to one user.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg *Message) Result
}

// isTransient reports whether a failure code may succeed on retry.
func isTransient(code string) bool {
	switch code {
	case ErrorCodeConnectionFailed, ErrorCodeTimeout, ErrorCodeRateLimited,
		ErrorCodeServerError, ErrorCodeCircuitOpen:
		return true
	default:
		return false
	}
}

// New builds the sender selected by cfg, wrapped with rate limiting and
// a circuit breaker.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *config.DeliveryConfig, clk clock.Clock, logger zerolog.Logger) (*Resilient, error) {
	var base Sender
	switch cfg.Sender {
	case config.SenderLog, "":
		base = NewLogSender(logger)
	case config.SenderWebhook:
		wh, err := NewWebhookSender(cfg.WebhookURL, cfg.Timeout, clk)
		if err != nil {
			return nil, err
		}
		base = wh
	default:
		return nil, fmt.Errorf("unknown sender %q", cfg.Sender)
	}
	return NewResilient(base, ResilientConfig{
		RatePerSecond: cfg.RatePerSecond,
		Burst:         cfg.Burst,
		MaxFailures:   cfg.BreakerMaxFailures,
		OpenTimeout:   cfg.BreakerTimeout,
	}, logger), nil
}
