// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package websocket pushes snapshot lifecycle events to browser clients.

A Hub owns the set of connected clients and fans out messages; each Client
runs a read pump and a write pump over a gorilla/websocket connection. The
event router feeds the hub through BroadcastRaw, which implements
eventprocessor.WebSocketBroadcaster.

Message Types:

  - snapshot_installed: a new snapshot serves queries
  - snapshot_failed: a rebuild failed; the previous snapshot keeps serving
  - ping / pong: application-level keepalive initiated by the client

Messages are JSON objects of the form {"type": ..., "data": ...}.

Backpressure:

Broadcasting never blocks the caller. When the hub's queue is full the
message is dropped, and a client whose send queue is full is disconnected.
Both cases are counted in websocket_errors_total.

Supervision:

RunWithContext returns when its context is canceled, closing every client,
so the hub runs as a suture service in the messaging layer.
*/
package websocket
