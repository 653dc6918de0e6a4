// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package services adapts server components to suture.Service.
//
//   - HTTPServerService: ListenAndServe with graceful Shutdown on cancel.
//   - WebSocketHubService: runs the websocket hub until ctx is done.
//   - ReloadService: watches the dataset file and rebuilds the
//     recommendation snapshot when it changes or when Trigger is called.
//
// Every wrapper implements fmt.Stringer so supervisor logs name it.
package services
