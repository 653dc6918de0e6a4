// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/validation"
)

// Recommendations handles GET /api/v1/recommendations?title=&k=.
//
// An unknown title is a 200 with found=false and no items; the caller
// asked a valid question that has an empty answer. k defaults to the
// configured default and is clamped to the configured maximum.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := validation.RecommendParams{
		Title: q.Get("title"),
		K:     h.config.Recommend.DefaultK,
	}
	if q.Has("k") {
		k, err := queryInt(q, "k")
		if err != nil {
			respondParamError(w, r, err)
			return
		}
		params.K = k
	}
	if !validateParams(w, r, &params) {
		return
	}

	ctx, cancel := h.queryContext(r.Context())
	defer cancel()

	resp, err := h.engine.Recommend(ctx, recommend.Request{
		Title:     params.Title,
		K:         params.K,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, resp, nil)
}

// respondEngineError maps engine errors to HTTP statuses.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrNoSnapshot):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeNoSnapshot, "no snapshot installed yet", nil)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, ErrCodeTimeout, "request timed out", err)
	case errors.Is(err, context.Canceled):
		// The client went away; nobody reads this.
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "request canceled", nil)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to compute recommendations", err)
	}
}
