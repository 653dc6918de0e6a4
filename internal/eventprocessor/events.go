// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package eventprocessor

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// SchemaVersion is the current event schema version.
// Increment this when making breaking changes to SnapshotEvent.
const SchemaVersion = 1

// Topics
const (
	TopicSnapshotInstalled = "snapshot.installed"
	TopicSnapshotFailed    = "snapshot.failed"
)

// SnapshotEvent describes one snapshot build attempt. Type equals the topic
// the event is published to.
type SnapshotEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`

	// Set for snapshot.installed
	Snapshot *recommend.SnapshotInfo `json:"snapshot,omitempty"`

	// Set for snapshot.failed
	Error              string `json:"error,omitempty"`
	ConfigurationError bool   `json:"configuration_error,omitempty"`
}

// NewInstalledEvent creates a snapshot.installed event for info.
//
//nolint:gocritic // hugeParam: info is copied into the event
func NewInstalledEvent(info recommend.SnapshotInfo) *SnapshotEvent {
	return &SnapshotEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.NewString(),
		Type:          TopicSnapshotInstalled,
		Timestamp:     time.Now().UTC(),
		Snapshot:      &info,
	}
}

// NewFailedEvent creates a snapshot.failed event for err. Failures caused
// by an invalid catalog are flagged as configuration errors.
func NewFailedEvent(err error) *SnapshotEvent {
	return &SnapshotEvent{
		SchemaVersion:      SchemaVersion,
		EventID:            uuid.NewString(),
		Type:               TopicSnapshotFailed,
		Timestamp:          time.Now().UTC(),
		Error:              err.Error(),
		ConfigurationError: errors.Is(err, recommend.ErrInvalidCatalog),
	}
}

// Validate checks the fields every consumer relies on.
func (e *SnapshotEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("%w: event_id is required", ErrInvalidEvent)
	}
	switch e.Type {
	case TopicSnapshotInstalled:
		if e.Snapshot == nil {
			return fmt.Errorf("%w: snapshot is required for %s", ErrInvalidEvent, e.Type)
		}
	case TopicSnapshotFailed:
		if e.Error == "" {
			return fmt.Errorf("%w: error is required for %s", ErrInvalidEvent, e.Type)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidEvent)
	}
	return nil
}

// Topic returns the bus topic for this event.
func (e *SnapshotEvent) Topic() string {
	return e.Type
}
