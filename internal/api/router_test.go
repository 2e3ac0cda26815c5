// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/dailyfacts/internal/clock"
	"github.com/tomtom215/dailyfacts/internal/config"
)

func TestRouterSecurityHeadersAndRequestID(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
		"X-Request-ID":           "req-42",
		"Content-Type":           "application/json",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if !strings.Contains(rec.Body.String(), `"request_id":"req-42"`) {
		t.Errorf("body missing request id: %s", rec.Body.String())
	}
}

func TestRouterNotFoundAndMethod(t *testing.T) {
	env := newTestEnv(t)
	code, resp := env.do(t, http.MethodGet, "/api/v1/nowhere", "")
	if code != http.StatusNotFound || resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
		t.Errorf("status = %d, resp = %+v", code, resp)
	}

	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/jobs/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE status = %d, want 405", rec.Code)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/v1/jobs", "")

	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "dailyfacts_api_requests_total") {
		t.Error("metrics output missing API request counter")
	}
}

func TestRouterRateLimit(t *testing.T) {
	h := NewHandler(Deps{Store: newMockStore(), Selector: &mockSelector{}, Jobs: &mockJobs{}, Clock: clock.NewFixed(testNow)}, zerolog.Nop())
	mw := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitRequests: 2, RateLimitWindow: time.Minute})
	server := NewRouter(h, mw).SetupChi()

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u-1/daily-facts", nil)
		req.RemoteAddr = "192.0.2.10:1234"
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", last)
	}
}

func TestRouterCORS(t *testing.T) {
	h := NewHandler(Deps{Store: newMockStore(), Jobs: &mockJobs{}, Clock: clock.NewFixed(testNow)}, zerolog.Nop())
	cfg := ChiMiddlewareConfigFrom(&config.ServerConfig{
		CORSOrigins:   []string{"https://app.example"},
		RateLimitReqs: 0,
	})
	if !cfg.RateLimitDisabled {
		t.Error("zero request limit should disable rate limiting")
	}
	server := NewRouter(h, NewChiMiddleware(cfg)).SetupChi()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/jobs/", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	// Without configured origins no CORS headers are sent.
	plain := NewRouter(h, nil).SetupChi()
	rec = httptest.NewRecorder()
	plain.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected CORS header %q", got)
	}
}
