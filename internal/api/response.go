// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dailyfacts/internal/logging"
	"github.com/tomtom215/dailyfacts/internal/middleware"
)

// APIResponse is the envelope for every API response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	// Code is machine-readable, one of the ErrCode constants.
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta carries response metadata.
type APIMeta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Count     *int      `json:"count,omitempty"`
}

// Error codes for API responses.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
)

func meta(r *http.Request) *APIMeta {
	return &APIMeta{
		RequestID: middleware.GetRequestID(r.Context()),
		Timestamp: time.Now().UTC(),
	}
}

// writeSuccess writes a 200 response with data.
func writeSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	writeJSON(w, r, http.StatusOK, &APIResponse{Success: true, Data: data, Meta: meta(r)})
}

// writeList writes a 200 response with a slice and its length.
func writeList[T any](w http.ResponseWriter, r *http.Request, items []T) {
	if items == nil {
		items = []T{}
	}
	m := meta(r)
	n := len(items)
	m.Count = &n
	writeJSON(w, r, http.StatusOK, &APIResponse{Success: true, Data: items, Meta: m})
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, r, status, &APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    meta(r),
	})
}

// writeInternalError logs err and answers 500 without leaking it.
func writeInternalError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	logging.Ctx(r.Context()).Error().Err(err).Str("operation", operation).Msg("Request failed")
	writeError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, resp *APIResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		status = http.StatusInternalServerError
		fallback := &APIResponse{
			Success: false,
			Error:   &APIError{Code: ErrCodeInternalError, Message: "internal error"},
		}
		if resp.Meta != nil {
			m := *resp.Meta
			m.Count = nil
			fallback.Meta = &m
		}
		data, err = json.Marshal(fallback)
		if err != nil {
			w.WriteHeader(status)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write JSON response")
	}
}
