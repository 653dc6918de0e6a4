// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package middleware holds the HTTP middleware shared by the API router. Every
middleware has the chi shape func(http.Handler) http.Handler.

  - RequestID: propagates or generates X-Request-ID and seeds the logging
    context with request and correlation IDs.
  - PrometheusMetrics: request count, latency and in-flight gauge, labeled
    by chi route pattern so path parameters do not explode cardinality.
  - Compression: gzip for clients that accept it. Websocket upgrades pass
    through untouched.
  - PerformanceMonitor: a sliding window of recent request latencies with
    per-route percentiles, served by the stats endpoint.

Status codes are captured with chi's WrapResponseWriter, which keeps
http.Hijacker available for the websocket upgrade.

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(perfMon.Middleware)
	r.With(middleware.Compression).Get("/api/v1/movies", h.Movies)
*/
package middleware
