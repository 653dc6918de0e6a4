// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package eventprocessor carries snapshot lifecycle events over an
// in-process Watermill bus.
//
// The recommend engine notifies its listeners after every build attempt.
// Publisher is such a listener: it turns each notification into a
// SnapshotEvent, serializes it with goccy/go-json and publishes it to the
// gochannel bus under one of two topics:
//
//   - snapshot.installed: a new snapshot was built and swapped in
//   - snapshot.failed: a rebuild failed and the previous snapshot, if any,
//     keeps serving
//
// A Router subscribes to both topics and hands each message to its
// handlers. The WebSocketHandler relays payloads unchanged to the websocket
// hub, which pushes them to browser clients.
//
//	bus := eventprocessor.NewBus(cfg, logger)
//	engine.AddListener(eventprocessor.NewPublisher(bus, logger))
//	router, _ := eventprocessor.NewRouter(cfg, logger)
//	_ = eventprocessor.RegisterWebSocketRelay(router, bus, hub, logger)
//	tree.AddMessagingService(router)
//
// The bus is not persistent: events published while nobody subscribes are
// dropped. Delivery to subscribers never blocks the building goroutine.
package eventprocessor
