// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. CORS and the default rate limit come from
// cfg.API; a nil cfg uses the defaults.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	mwConfig := DefaultChiMiddlewareConfig()
	if cfg != nil {
		mwConfig.CORSAllowedOrigins = cfg.API.CORSOrigins
		mwConfig.RateLimitRequests = cfg.API.RateLimitReqs
		mwConfig.RateLimitWindow = cfg.API.RateLimitWindow
		mwConfig.RateLimitDisabled = cfg.API.RateLimitDisabled
	}

	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered
	r.Use(APISecurityHeaders())
	r.Use(middleware.PrometheusMetrics)
	r.Use(h.perfMon.Middleware)

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	// ========================
	// Core API Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		r.Get("/recommendations", h.Recommendations)

		r.With(middleware.Compression).Get("/movies", h.Movies)
		r.With(middleware.Compression).Get("/movies/titles", h.MovieTitles)
		r.Get("/movies/lookup", h.MovieLookup)

		r.Get("/snapshot", h.Snapshot)
		r.With(router.chiMiddleware.RateLimitCustom(RateLimitReload)).Post("/snapshot/reload", h.Reload)
		r.Get("/stats", h.Stats)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/genres", h.AnalyticsGenres)
			r.Get("/gross-vs-rating", h.AnalyticsGrossVsRating)
			r.Get("/rating-by-year", h.AnalyticsRatingByYear)
			r.Get("/gross-by-genre", h.AnalyticsGrossByGenre)
		})

		r.With(router.chiMiddleware.RateLimitCustom(RateLimitWebSocket)).Get("/ws", h.WebSocket)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
