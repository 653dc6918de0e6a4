// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status          string  `json:"status"`
	SnapshotReady   bool    `json:"snapshot_ready"`
	SnapshotVersion uint64  `json:"snapshot_version,omitempty"`
	DatabaseOK      bool    `json:"database_ok"`
	ReloadBreaker   string  `json:"reload_breaker,omitempty"`
	LastBuildError  string  `json:"last_build_error,omitempty"`
	WebSocketPeers  int     `json:"websocket_clients"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
}

// Health reports overall status. It is always 200; Status is "degraded"
// when no snapshot is installed, DuckDB does not answer, or the reload
// breaker is open.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:        "healthy",
		SnapshotReady: h.engine.Ready(),
		DatabaseOK:    h.analytics != nil && h.analytics.Ping(ctx) == nil,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	stats := h.engine.Stats()
	if stats.Snapshot != nil {
		status.SnapshotVersion = stats.Snapshot.Version
	}
	status.LastBuildError = stats.LastBuildErr
	if h.reloader != nil {
		status.ReloadBreaker = h.reloader.Stats().BreakerState
	}
	if h.wsHub != nil {
		status.WebSocketPeers = h.wsHub.GetClientCount()
	}

	if !status.SnapshotReady || !status.DatabaseOK || status.ReloadBreaker == "open" {
		status.Status = "degraded"
	}

	respondJSON(w, r, http.StatusOK, status, nil)
}

// HealthLive answers 200 while the process runs.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{
		"alive":          true,
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	}, nil)
}

// HealthReady answers 200 once a snapshot is installed and 503 before.
// A failed reload does not make a ready server unready: the previous
// snapshot keeps serving.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Current()
	if snap == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeNoSnapshot, "no snapshot installed yet", nil)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{
		"ready":            true,
		"snapshot_version": snap.Version(),
		"items":            snap.Len(),
	}, nil)
}
