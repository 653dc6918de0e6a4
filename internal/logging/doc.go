// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package logging provides centralized zerolog-based structured logging.
//
// A single global logger is configured once at startup with Init and read
// through package-level helpers. Components derive child loggers tagged with
// a component field:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logger := logging.WithComponent("reload")
//	logger.Info().Str("path", path).Msg("Dataset changed")
//
// # Request Context
//
// HTTP middleware stores the request ID in the request context; Ctx returns a
// logger pre-populated with it and with any correlation ID:
//
//	logging.Ctx(r.Context()).Warn().Str("title", title).Msg("Unknown title")
//
// # Adapters
//
// Two adapters route third-party logging through zerolog:
//
//   - SlogHandler implements slog.Handler for the suture supervisor tree
//     (via sutureslog).
//   - WatermillAdapter implements watermill.LoggerAdapter for the snapshot
//     event router and its in-process pub/sub.
//
// # Output Formats
//
// "json" (default) writes one JSON object per line. "console" writes
// colorized, human-readable lines for local development.
//
// # Thread Safety
//
// All functions are safe for concurrent use. Init swaps the global logger
// under a mutex.
package logging
