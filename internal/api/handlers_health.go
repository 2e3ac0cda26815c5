// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/dailyfacts/internal/scheduler"
)

const healthPingTimeout = 2 * time.Second

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status            string  `json:"status"`
	DatabaseConnected bool    `json:"database_connected"`
	Jobs              int     `json:"jobs"`
	RunningJobs       int     `json:"running_jobs"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// Health reports dependency status. It always answers 200; the status
// field is "degraded" when the database is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.databaseConnected(r.Context())

	status := HealthStatus{
		Status:            "healthy",
		DatabaseConnected: dbConnected,
		UptimeSeconds:     h.clock.Now().Sub(h.startTime).Seconds(),
	}
	if !dbConnected {
		status.Status = "degraded"
	}
	if h.jobs != nil {
		for _, j := range h.jobs.ListJobs() {
			status.Jobs++
			if j.State == scheduler.StateRunning {
				status.RunningJobs++
			}
		}
	}
	writeSuccess(w, r, status)
}

// HealthLive answers 200 while the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, map[string]interface{}{
		"alive":          true,
		"uptime_seconds": h.clock.Now().Sub(h.startTime).Seconds(),
	})
}

// HealthReady answers 503 until the database is reachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.databaseConnected(r.Context()) {
		writeError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "database not reachable")
		return
	}
	writeSuccess(w, r, map[string]bool{"ready": true})
}

func (h *Handler) databaseConnected(ctx context.Context) bool {
	if h.store == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("Database ping failed")
		return false
	}
	return true
}
