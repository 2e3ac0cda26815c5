// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

// Package metrics holds the Prometheus collectors for Dailyfacts.
//
// Collectors are registered on the default registry through promauto and
// exposed by the HTTP layer at /metrics. Callers use the Record* helpers
// rather than touching collectors directly.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Scheduler
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyfacts_scheduler_job_runs_total",
			Help: "Total scheduled job executions by outcome",
		},
		[]string{"job", "status"}, // "success", "error", "panic"
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dailyfacts_scheduler_job_duration_seconds",
			Help:    "Duration of scheduled job executions",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"job"},
	)

	// Distribution
	DistributionUsersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyfacts_distribution_users_total",
			Help: "Users processed by the distribution job by outcome",
		},
		[]string{"outcome"}, // "sent", "failed", "capped", "no_content", "error"
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyfacts_notifications_sent_total",
			Help: "Notification send attempts by resulting status",
		},
		[]string{"status"},
	)

	NotificationRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyfacts_notification_retries_total",
			Help: "Failed notifications handled by the retry job",
		},
		[]string{"outcome"}, // "scheduled", "cancelled", "resent", "exhausted"
	)

	MaintenancePurged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyfacts_maintenance_purged_total",
			Help: "Records removed or updated by maintenance jobs",
		},
		[]string{"task"},
	)

	// Personalization
	ProfileCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyfacts_profile_cache_total",
			Help: "Profile cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	SelectionFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyfacts_selection_fallback_total",
			Help: "Selections served from the popularity fallback by reason",
		},
		[]string{"reason"}, // "no_profile", "error", "recommender"
	)

	// Storage
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dailyfacts_db_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyfacts_db_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Delivery
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dailyfacts_delivery_circuit_breaker_state",
			Help: "Sender circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"sender"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyfacts_delivery_circuit_breaker_transitions_total",
			Help: "Sender circuit breaker state transitions",
		},
		[]string{"sender", "from", "to"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyfacts_events_published_total",
			Help: "Delivery outcome events published",
		},
		[]string{"status"}, // "ok", "error"
	)

	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyfacts_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dailyfacts_api_request_duration_seconds",
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordJobRun records one scheduled job execution.
func RecordJobRun(job, status string, duration time.Duration) {
	JobRunsTotal.WithLabelValues(job, status).Inc()
	JobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

// RecordDistributionOutcome counts one user processed by the distribution job.
func RecordDistributionOutcome(outcome string) {
	DistributionUsersTotal.WithLabelValues(outcome).Inc()
}

// RecordNotification counts a notification send attempt.
func RecordNotification(status string) {
	NotificationsTotal.WithLabelValues(status).Inc()
}

// RecordRetry counts a notification handled by the retry job.
func RecordRetry(outcome string) {
	NotificationRetriesTotal.WithLabelValues(outcome).Inc()
}

// RecordMaintenance adds n affected records for a maintenance task.
func RecordMaintenance(task string, n int64) {
	if n > 0 {
		MaintenancePurged.WithLabelValues(task).Add(float64(n))
	}
}

// RecordProfileCache counts a profile cache lookup.
func RecordProfileCache(result string) {
	ProfileCacheTotal.WithLabelValues(result).Inc()
}

// RecordSelectionFallback counts a selection served from the fallback list.
func RecordSelectionFallback(reason string) {
	SelectionFallbackTotal.WithLabelValues(reason).Inc()
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// SetCircuitBreakerState sets the breaker gauge (0=closed, 1=half-open, 2=open).
func SetCircuitBreakerState(sender string, state int) {
	CircuitBreakerState.WithLabelValues(sender).Set(float64(state))
}

// RecordCircuitBreakerTransition counts a breaker state change.
func RecordCircuitBreakerTransition(sender, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(sender, from, to).Inc()
}

// RecordEventPublish counts a published delivery event.
func RecordEventPublish(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	EventsPublished.WithLabelValues(status).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
