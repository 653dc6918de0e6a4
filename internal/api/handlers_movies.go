// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"

	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/validation"
)

// currentSnapshot returns the installed snapshot or writes a 503.
func (h *Handler) currentSnapshot(w http.ResponseWriter, r *http.Request) *recommend.Snapshot {
	snap := h.engine.Current()
	if snap == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeNoSnapshot, "no snapshot installed yet", nil)
	}
	return snap
}

// Movies handles GET /api/v1/movies?offset=&limit=, paging the catalog in
// corpus order.
func (h *Handler) Movies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	offset, err := queryInt(q, "offset")
	if err != nil {
		respondParamError(w, r, err)
		return
	}
	limit, err := queryInt(q, "limit")
	if err != nil {
		respondParamError(w, r, err)
		return
	}

	params := validation.PageParams{Offset: offset, Limit: limit}
	if !validateParams(w, r, &params) {
		return
	}
	if params.Limit == 0 {
		params.Limit = h.config.API.DefaultPageSize
	}
	params.Limit = min(params.Limit, h.config.API.MaxPageSize)

	snap := h.currentSnapshot(w, r)
	if snap == nil {
		return
	}

	page := snap.Page(params.Offset, params.Limit)
	total := snap.Len()

	respondJSON(w, r, http.StatusOK, page, &APIMeta{
		Pagination: &PaginationMeta{
			Total:   total,
			Count:   len(page),
			Offset:  params.Offset,
			Limit:   params.Limit,
			HasMore: params.Offset+len(page) < total,
		},
	})
}

// MovieTitles handles GET /api/v1/movies/titles: the distinct titles in
// lexicographic order, for selection widgets.
func (h *Handler) MovieTitles(w http.ResponseWriter, r *http.Request) {
	snap := h.currentSnapshot(w, r)
	if snap == nil {
		return
	}
	respondJSON(w, r, http.StatusOK, snap.Titles(), nil)
}

// MovieLookup handles GET /api/v1/movies/lookup?title=. Matching is exact
// and case-sensitive; a miss is a 404.
func (h *Handler) MovieLookup(w http.ResponseWriter, r *http.Request) {
	params := validation.LookupParams{Title: r.URL.Query().Get("title")}
	if !validateParams(w, r, &params) {
		return
	}

	snap := h.currentSnapshot(w, r)
	if snap == nil {
		return
	}

	idx, ok := snap.Lookup(params.Title)
	if !ok {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "title not in catalog", nil)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"position":         idx,
		"movie":            snap.Movie(idx),
		"snapshot_version": snap.Version(),
	}, nil)
}
