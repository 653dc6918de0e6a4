// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package eventprocessor

import (
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// WebSocketBroadcaster is satisfied by the websocket hub.
type WebSocketBroadcaster interface {
	// BroadcastRaw sends raw JSON bytes to all connected clients.
	BroadcastRaw(data []byte)
}

// WebSocketHandler relays event payloads to websocket clients.
type WebSocketHandler struct {
	hub    WebSocketBroadcaster
	logger watermill.LoggerAdapter

	messagesReceived  atomic.Int64
	messagesBroadcast atomic.Int64
	invalidMessages   atomic.Int64
}

// NewWebSocketHandler creates a relay handler for hub.
func NewWebSocketHandler(hub WebSocketBroadcaster, logger watermill.LoggerAdapter) (*WebSocketHandler, error) {
	if hub == nil {
		return nil, fmt.Errorf("hub required")
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &WebSocketHandler{hub: hub, logger: logger}, nil
}

// Handle broadcasts msg. It always returns nil: a payload that does not
// decode is counted and skipped, since retrying cannot fix it, and a slow
// browser must not hold up the bus.
func (h *WebSocketHandler) Handle(msg *message.Message) error {
	h.messagesReceived.Add(1)

	if _, err := DeserializeEvent(msg.Payload); err != nil {
		h.invalidMessages.Add(1)
		h.logger.Error("Skipping undecodable event", err, watermill.LogFields{"uuid": msg.UUID})
		return nil
	}

	h.hub.BroadcastRaw(msg.Payload)
	h.messagesBroadcast.Add(1)
	return nil
}

// WebSocketHandlerStats holds runtime statistics.
type WebSocketHandlerStats struct {
	MessagesReceived  int64 `json:"messages_received"`
	MessagesBroadcast int64 `json:"messages_broadcast"`
	InvalidMessages   int64 `json:"invalid_messages"`
}

// Stats returns current handler statistics.
func (h *WebSocketHandler) Stats() WebSocketHandlerStats {
	return WebSocketHandlerStats{
		MessagesReceived:  h.messagesReceived.Load(),
		MessagesBroadcast: h.messagesBroadcast.Load(),
		InvalidMessages:   h.invalidMessages.Load(),
	}
}

// RegisterWebSocketRelay subscribes a WebSocketHandler to both snapshot
// topics on sub.
func RegisterWebSocketRelay(
	r *Router,
	sub message.Subscriber,
	hub WebSocketBroadcaster,
	logger watermill.LoggerAdapter,
) (*WebSocketHandler, error) {
	h, err := NewWebSocketHandler(hub, logger)
	if err != nil {
		return nil, err
	}
	r.AddConsumerHandler("ws_relay_installed", TopicSnapshotInstalled, sub, h.Handle)
	r.AddConsumerHandler("ws_relay_failed", TopicSnapshotFailed, sub, h.Handle)
	return h, nil
}
