// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"time"

	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/dataset"
	"github.com/tomtom215/reelmatch/internal/middleware"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/supervisor/services"
	ws "github.com/tomtom215/reelmatch/internal/websocket"
)

// AnalyticsStore answers the catalog analytics views. *dataset.Loader
// implements it.
type AnalyticsStore interface {
	GenreStats(ctx context.Context, q dataset.GenreQuery) ([]dataset.GenreStat, error)
	GrossVsRating(ctx context.Context, metric dataset.Metric) (*dataset.GrossVsRating, error)
	RatingByYear(ctx context.Context, metric dataset.Metric) ([]dataset.YearValue, error)
	GrossByGenre(ctx context.Context) ([]dataset.GenreGross, error)
	Ping(ctx context.Context) error
	AnalyticsCacheStats() cache.Stats
}

// Reloader accepts snapshot rebuild requests. *services.ReloadService
// implements it.
type Reloader interface {
	Trigger(source string) error
	Stats() services.ReloadStats
}

// Handler holds the dependencies of the HTTP handlers.
//
// Handler methods are split by area:
//   - handlers_health.go: liveness, readiness and status
//   - handlers_recommend.go: the recommendation query
//   - handlers_movies.go: catalog listing and lookup
//   - handlers_snapshot.go: snapshot info, reload and stats
//   - handlers_analytics.go: catalog analytics views
//   - handlers_websocket.go: the live event stream
//
// analytics, reloader and hub may be nil; their endpoints then answer 503.
type Handler struct {
	engine    *recommend.Engine
	analytics AnalyticsStore
	reloader  Reloader
	wsHub     *ws.Hub
	config    *config.Config
	perfMon   *middleware.PerformanceMonitor
	startTime time.Time
}

// NewHandler creates the API handler.
//
//	handler := api.NewHandler(cfg, engine, loader, reloadSvc, hub)
//	router := api.NewRouter(handler, cfg)
//	server := &http.Server{Handler: router.SetupChi()}
func NewHandler(cfg *config.Config, engine *recommend.Engine, analytics AnalyticsStore, reloader Reloader, hub *ws.Hub) *Handler {
	if cfg == nil {
		cfg = config.Defaults()
	}
	return &Handler{
		engine:    engine,
		analytics: analytics,
		reloader:  reloader,
		wsHub:     hub,
		config:    cfg,
		perfMon:   middleware.NewPerformanceMonitor(1000),
		startTime: time.Now(),
	}
}

// PerformanceMonitor returns the monitor fed by the router.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}

// queryContext bounds a handler's backend work by the server timeout.
func (h *Handler) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := h.config.Server.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}
