// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package middleware

import (
	"cmp"
	"net/http"
	"slices"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tomtom215/reelmatch/internal/logging"
)

// defaultSlowThreshold is the latency above which a request is logged.
const defaultSlowThreshold = time.Second

// RequestMetrics is one observed request.
type RequestMetrics struct {
	Route      string        `json:"route"`
	Method     string        `json:"method"`
	Duration   time.Duration `json:"duration_ns"`
	StatusCode int           `json:"status"`
	Timestamp  time.Time     `json:"timestamp"`
}

// EndpointStats summarizes the recent requests of one route.
type EndpointStats struct {
	Endpoint     string  `json:"endpoint"`
	RequestCount int64   `json:"request_count"`
	ErrorCount   int64   `json:"error_count"`
	AvgMS        float64 `json:"avg_ms"`
	P50MS        float64 `json:"p50_ms"`
	P95MS        float64 `json:"p95_ms"`
	P99MS        float64 `json:"p99_ms"`
	MaxMS        float64 `json:"max_ms"`
}

// PerformanceMonitor keeps the last maxMetrics requests in a ring and
// computes per-route latency percentiles on demand.
type PerformanceMonitor struct {
	mu         sync.RWMutex
	metrics    []RequestMetrics
	next       int
	full       bool
	totals     map[string]int64
	slowAfter  time.Duration
	maxMetrics int
}

// NewPerformanceMonitor creates a monitor holding up to maxMetrics requests.
// Non-positive values mean 1000.
func NewPerformanceMonitor(maxMetrics int) *PerformanceMonitor {
	if maxMetrics <= 0 {
		maxMetrics = 1000
	}
	return &PerformanceMonitor{
		metrics:    make([]RequestMetrics, maxMetrics),
		totals:     make(map[string]int64),
		slowAfter:  defaultSlowThreshold,
		maxMetrics: maxMetrics,
	}
}

// RecordRequest adds m to the window, overwriting the oldest entry when
// full. Lifetime per-route counts are kept separately.
func (pm *PerformanceMonitor) RecordRequest(m RequestMetrics) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.metrics[pm.next] = m
	pm.next++
	if pm.next == pm.maxMetrics {
		pm.next = 0
		pm.full = true
	}
	pm.totals[m.Method+" "+m.Route]++
}

// window returns the recorded entries, oldest first. Callers hold mu.
func (pm *PerformanceMonitor) window() []RequestMetrics {
	if !pm.full {
		return slices.Clone(pm.metrics[:pm.next])
	}
	return slices.Concat(pm.metrics[pm.next:], pm.metrics[:pm.next])
}

// GetStats returns per-route statistics over the window, busiest first.
// RequestCount is the lifetime count; the latency figures cover the window.
func (pm *PerformanceMonitor) GetStats() []EndpointStats {
	pm.mu.RLock()
	window := pm.window()
	totals := make(map[string]int64, len(pm.totals))
	for k, v := range pm.totals {
		totals[k] = v
	}
	pm.mu.RUnlock()

	durations := make(map[string][]time.Duration)
	errorsByRoute := make(map[string]int64)
	for _, m := range window {
		key := m.Method + " " + m.Route
		durations[key] = append(durations[key], m.Duration)
		if m.StatusCode >= http.StatusInternalServerError {
			errorsByRoute[key]++
		}
	}

	stats := make([]EndpointStats, 0, len(durations))
	for endpoint, ds := range durations {
		slices.Sort(ds)

		var sum time.Duration
		for _, d := range ds {
			sum += d
		}

		stats = append(stats, EndpointStats{
			Endpoint:     endpoint,
			RequestCount: totals[endpoint],
			ErrorCount:   errorsByRoute[endpoint],
			AvgMS:        ms(sum / time.Duration(len(ds))),
			P50MS:        ms(percentile(ds, 0.50)),
			P95MS:        ms(percentile(ds, 0.95)),
			P99MS:        ms(percentile(ds, 0.99)),
			MaxMS:        ms(ds[len(ds)-1]),
		})
	}

	slices.SortFunc(stats, func(a, b EndpointStats) int {
		if c := cmp.Compare(b.RequestCount, a.RequestCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Endpoint, b.Endpoint)
	})
	return stats
}

// GetRecentMetrics returns up to n of the most recent requests, oldest
// first.
func (pm *PerformanceMonitor) GetRecentMetrics(n int) []RequestMetrics {
	pm.mu.RLock()
	window := pm.window()
	pm.mu.RUnlock()

	if n > len(window) {
		n = len(window)
	}
	return window[len(window)-n:]
}

// Middleware records every request and logs those slower than one second.
func (pm *PerformanceMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		route := RoutePattern(r)
		pm.RecordRequest(RequestMetrics{
			Route:      route,
			Method:     r.Method,
			Duration:   duration,
			StatusCode: statusOf(ww),
			Timestamp:  start,
		})

		if duration > pm.slowAfter {
			logging.Ctx(r.Context()).Warn().
				Str("method", r.Method).
				Str("route", route).
				Dur("duration", duration).
				Msg("slow request")
		}
	})
}

// percentile uses nearest-rank on sorted.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
