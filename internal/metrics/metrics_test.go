// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordJobRun(t *testing.T) {
	before := testutil.ToFloat64(JobRunsTotal.WithLabelValues("test-job", "success"))
	RecordJobRun("test-job", "success", 20*time.Millisecond)
	after := testutil.ToFloat64(JobRunsTotal.WithLabelValues("test-job", "success"))
	if after-before != 1 {
		t.Errorf("expected job run counter to increase by 1, got %v", after-before)
	}
}

// TestRecordDBQuery tests database query metric recording
func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name       string
		operation  string
		table      string
		err        error
		wantErrInc float64
	}{
		{"successful select", "SELECT", "content_items", nil, 0},
		{"failed upsert", "UPSERT", "user_interactions", errors.New("constraint"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table))
			RecordDBQuery(tt.operation, tt.table, 5*time.Millisecond, tt.err)
			after := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table))
			if after-before != tt.wantErrInc {
				t.Errorf("error counter delta = %v, want %v", after-before, tt.wantErrInc)
			}
		})
	}
}

func TestRecordMaintenanceIgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(MaintenancePurged.WithLabelValues("sessions"))
	RecordMaintenance("sessions", 0)
	RecordMaintenance("sessions", 4)
	after := testutil.ToFloat64(MaintenancePurged.WithLabelValues("sessions"))
	if after-before != 4 {
		t.Errorf("purged delta = %v, want 4", after-before)
	}
}

func TestSetCircuitBreakerState(t *testing.T) {
	SetCircuitBreakerState("webhook", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("webhook")); got != 2 {
		t.Errorf("breaker gauge = %v, want 2", got)
	}
	SetCircuitBreakerState("webhook", 0)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("webhook")); got != 0 {
		t.Errorf("breaker gauge = %v, want 0", got)
	}
}

func TestRecordEventPublish(t *testing.T) {
	okBefore := testutil.ToFloat64(EventsPublished.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(EventsPublished.WithLabelValues("error"))
	RecordEventPublish(nil)
	RecordEventPublish(errors.New("nats down"))
	if d := testutil.ToFloat64(EventsPublished.WithLabelValues("ok")) - okBefore; d != 1 {
		t.Errorf("ok delta = %v", d)
	}
	if d := testutil.ToFloat64(EventsPublished.WithLabelValues("error")) - errBefore; d != 1 {
		t.Errorf("error delta = %v", d)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/healthz", "200"))
	RecordAPIRequest("GET", "/healthz", 200, time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/healthz", "200"))
	if after-before != 1 {
		t.Errorf("request counter delta = %v, want 1", after-before)
	}
}
