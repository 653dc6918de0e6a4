// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/reelmatch/internal/dataset"
	"github.com/tomtom215/reelmatch/internal/validation"
)

// AnalyticsGenres handles GET /api/v1/analytics/genres?metric=&genre=&limit=:
// the distribution of a score per genre. metric defaults to meta_score.
func (h *Handler) AnalyticsGenres(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := queryInt(q, "limit")
	if err != nil {
		respondParamError(w, r, err)
		return
	}
	params := validation.GenreParams{
		Metric: q.Get("metric"),
		Genres: queryList(q, "genre"),
		Limit:  limit,
	}
	if !validateParams(w, r, &params) {
		return
	}
	metric, _ := dataset.ParseMetric(params.Metric, dataset.MetricMetaScore)

	serveAnalytics(h, w, r, func(ctx context.Context, store AnalyticsStore) ([]dataset.GenreStat, error) {
		return store.GenreStats(ctx, dataset.GenreQuery{
			Metric: metric,
			Genres: params.Genres,
			Limit:  params.Limit,
		})
	})
}

// AnalyticsGrossVsRating handles GET /api/v1/analytics/gross-vs-rating?metric=:
// per-movie gross against a score, with a least squares trend. metric
// defaults to imdb_rating.
func (h *Handler) AnalyticsGrossVsRating(w http.ResponseWriter, r *http.Request) {
	metric, ok := h.metricParam(w, r, dataset.MetricIMDBRating)
	if !ok {
		return
	}
	serveAnalytics(h, w, r, func(ctx context.Context, store AnalyticsStore) (*dataset.GrossVsRating, error) {
		return store.GrossVsRating(ctx, metric)
	})
}

// AnalyticsRatingByYear handles GET /api/v1/analytics/rating-by-year?metric=:
// the mean score per release year. metric defaults to imdb_rating.
func (h *Handler) AnalyticsRatingByYear(w http.ResponseWriter, r *http.Request) {
	metric, ok := h.metricParam(w, r, dataset.MetricIMDBRating)
	if !ok {
		return
	}
	serveAnalytics(h, w, r, func(ctx context.Context, store AnalyticsStore) ([]dataset.YearValue, error) {
		return store.RatingByYear(ctx, metric)
	})
}

// AnalyticsGrossByGenre handles GET /api/v1/analytics/gross-by-genre.
func (h *Handler) AnalyticsGrossByGenre(w http.ResponseWriter, r *http.Request) {
	serveAnalytics(h, w, r, func(ctx context.Context, store AnalyticsStore) ([]dataset.GenreGross, error) {
		return store.GrossByGenre(ctx)
	})
}

func (h *Handler) metricParam(w http.ResponseWriter, r *http.Request, def dataset.Metric) (dataset.Metric, bool) {
	params := validation.MetricParams{Metric: r.URL.Query().Get("metric")}
	if !validateParams(w, r, &params) {
		return "", false
	}
	metric, _ := dataset.ParseMetric(params.Metric, def)
	return metric, true
}

// serveAnalytics runs compute against the analytics store under the query
// timeout and writes the result.
func serveAnalytics[T any](h *Handler, w http.ResponseWriter, r *http.Request, compute func(context.Context, AnalyticsStore) (T, error)) {
	if h.analytics == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "analytics are not available", nil)
		return
	}

	ctx, cancel := h.queryContext(r.Context())
	defer cancel()

	result, err := compute(ctx, h.analytics)
	switch {
	case err == nil:
		respondJSON(w, r, http.StatusOK, result, nil)
	case errors.Is(err, dataset.ErrNotLoaded):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeNoSnapshot, "no dataset loaded yet", nil)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, ErrCodeTimeout, "analytics query timed out", err)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "analytics query failed", err)
	}
}
