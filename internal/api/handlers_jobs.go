// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/dailyfacts/internal/logging"
	"github.com/tomtom215/dailyfacts/internal/scheduler"
)

// jobRunResult reports a manual job trigger.
type jobRunResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ListJobs returns every registered job with its state and run times.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	writeList(w, r, h.jobs.ListJobs())
}

// RunJob triggers a job immediately. With async=true it answers 202 and
// the run continues after the request ends; otherwise it waits for the
// handler and reports its outcome.
func (h *Handler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !h.jobKnown(name) {
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "job not found: "+name)
		return
	}

	async := false
	if v := r.URL.Query().Get("async"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "async must be a boolean")
			return
		}
		async = b
	}

	logger := logging.Ctx(r.Context()).With().Str("job", name).Logger()
	logger.Info().Bool("async", async).Msg("Manual job run requested")

	if async {
		ctx := context.WithoutCancel(r.Context())
		go func() {
			if err := h.jobs.RunNow(ctx, name); err != nil {
				logger.Warn().Err(err).Msg("Manual job run failed")
			}
		}()
		writeJSON(w, r, http.StatusAccepted, &APIResponse{
			Success: true,
			Data:    jobRunResult{Name: name, Status: "accepted"},
			Meta:    meta(r),
		})
		return
	}

	err := h.jobs.RunNow(r.Context(), name)
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "job not found: "+name)
	case err != nil:
		writeJSON(w, r, http.StatusInternalServerError, &APIResponse{
			Success: false,
			Data:    jobRunResult{Name: name, Status: "error", Error: err.Error()},
			Error:   &APIError{Code: ErrCodeInternalError, Message: "job failed"},
			Meta:    meta(r),
		})
	default:
		writeSuccess(w, r, jobRunResult{Name: name, Status: "success"})
	}
}

func (h *Handler) jobKnown(name string) bool {
	for _, j := range h.jobs.ListJobs() {
		if j.Name == name {
			return true
		}
	}
	return false
}
