// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dailyfacts/internal/clock"
)

// WebhookSender POSTs notifications to a push gateway.
type WebhookSender struct {
	url    string
	client *http.Client
	clock  clock.Clock
}

// WebhookPayload is the JSON body sent to the gateway.
type WebhookPayload struct {
	Event          string    `json:"event"`
	NotificationID string    `json:"notification_id,omitempty"`
	UserID         string    `json:"user_id"`
	ItemID         string    `json:"item_id,omitempty"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	SentAt         time.Time `json:"sent_at"`
}

// NewWebhookSender creates a sender for an absolute http(s) URL.
func NewWebhookSender(rawURL string, timeout time.Duration, clk clock.Clock) (*WebhookSender, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid webhook URL %q", rawURL)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &WebhookSender{
		url:    rawURL,
		client: &http.Client{Timeout: timeout},
		clock:  clk,
	}, nil
}

// Name returns the sender identifier.
func (s *WebhookSender) Name() string { return "webhook" }

// Send posts the message. 2xx is delivered; 429, 5xx and network errors
// are transient; any other status is a permanent rejection.
func (s *WebhookSender) Send(ctx context.Context, msg *Message) Result {
	if err := msg.Validate(); err != nil {
		return Failed(ErrorCodeInvalidMessage, err.Error())
	}

	payload, err := json.Marshal(WebhookPayload{
		Event:          "dailyfacts.notification",
		NotificationID: msg.NotificationID,
		UserID:         msg.UserID,
		ItemID:         msg.ItemID,
		Title:          msg.Title,
		Body:           msg.Body,
		SentAt:         s.clock.Now().UTC(),
	})
	if err != nil {
		return Failed(ErrorCodeInvalidMessage, fmt.Sprintf("failed to marshal payload: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return Failed(ErrorCodeUnknown, fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Dailyfacts-Notifier/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return Failed(classifyHTTPError(err), fmt.Sprintf("failed to send webhook: %v", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Delivered()
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		body = []byte("(failed to read response)")
	}
	return Failed(classifyHTTPStatusCode(resp.StatusCode),
		fmt.Sprintf("webhook returned %d: %s", resp.StatusCode, string(body)))
}

func classifyHTTPError(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorCodeTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return ErrorCodeTimeout
	default:
		return ErrorCodeConnectionFailed
	}
}

func classifyHTTPStatusCode(code int) string {
	switch {
	case code == http.StatusTooManyRequests:
		return ErrorCodeRateLimited
	case code >= 500:
		return ErrorCodeServerError
	default:
		return ErrorCodeRejected
	}
}
