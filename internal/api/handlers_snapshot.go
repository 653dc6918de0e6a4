// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"errors"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/middleware"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/supervisor/services"
)

// Snapshot handles GET /api/v1/snapshot: the installed snapshot's summary.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap := h.currentSnapshot(w, r)
	if snap == nil {
		return
	}
	respondJSON(w, r, http.StatusOK, snap.Info(), nil)
}

// Reload handles POST /api/v1/snapshot/reload. The rebuild runs in the
// background; clients learn the outcome from the websocket stream or by
// polling the snapshot endpoint.
//
//   - 202 when the request was queued or merged with a pending one
//   - 429 inside the minimum reload interval
//   - 503 while the reload circuit breaker is open
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if h.reloader == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "reloading is not available", nil)
		return
	}

	err := h.reloader.Trigger(services.SourceManual)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrReloadThrottled):
		w.Header().Set("Retry-After", "5")
		respondError(w, r, http.StatusTooManyRequests, ErrCodeReloadThrottled, "a reload ran recently, try again shortly", nil)
		return
	case errors.Is(err, gobreaker.ErrOpenState):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeCircuitOpen, "dataset reloads are failing, breaker is open", nil)
		return
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "reload request failed", err)
		return
	}

	body := map[string]any{"accepted": true}
	if snap := h.engine.Current(); snap != nil {
		body["current_version"] = snap.Version()
	}
	respondJSON(w, r, http.StatusAccepted, body, nil)
}

// recentRequestsShown is how many of the latest requests the stats
// endpoint lists.
const recentRequestsShown = 20

// ServerStats is the body of the stats endpoint.
type ServerStats struct {
	Engine                recommend.Stats             `json:"engine"`
	Reload                *services.ReloadStats       `json:"reload,omitempty"`
	AnalyticsCache        *cache.Stats                `json:"analytics_cache,omitempty"`
	AnalyticsCacheHitRate float64                     `json:"analytics_cache_hit_rate"`
	WebSocketClients      int                         `json:"websocket_clients"`
	Endpoints             []middleware.EndpointStats  `json:"endpoints"`
	RecentRequests        []middleware.RequestMetrics `json:"recent_requests"`
	UptimeSeconds         float64                     `json:"uptime_seconds"`
}

// Stats handles GET /api/v1/stats: engine counters, reload activity,
// analytics cache usage, per-route latency and the latest requests.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := ServerStats{
		Engine:         h.engine.Stats(),
		Endpoints:      h.perfMon.GetStats(),
		RecentRequests: h.perfMon.GetRecentMetrics(recentRequestsShown),
		UptimeSeconds:  time.Since(h.startTime).Seconds(),
	}
	if h.reloader != nil {
		rs := h.reloader.Stats()
		stats.Reload = &rs
	}
	if h.analytics != nil {
		cs := h.analytics.AnalyticsCacheStats()
		stats.AnalyticsCache = &cs
		stats.AnalyticsCacheHitRate = cs.HitRate()
	}
	if h.wsHub != nil {
		stats.WebSocketClients = h.wsHub.GetClientCount()
	}

	respondJSON(w, r, http.StatusOK, stats, nil)
}
