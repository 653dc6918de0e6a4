// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package eventprocessor

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Publisher turns engine build notifications into bus events. It
// implements recommend.Listener.
type Publisher struct {
	publisher message.Publisher
	logger    watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool

	published atomic.Int64
	failed    atomic.Int64
}

var _ recommend.Listener = (*Publisher)(nil)

// NewPublisher creates a publisher writing to pub.
func NewPublisher(pub message.Publisher, logger watermill.LoggerAdapter) *Publisher {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Publisher{
		publisher: pub,
		logger:    logger.With(watermill.LogFields{"component": "event-publisher"}),
	}
}

// SnapshotInstalled publishes a snapshot.installed event.
//
//nolint:gocritic // hugeParam: signature fixed by recommend.Listener
func (p *Publisher) SnapshotInstalled(info recommend.SnapshotInfo) {
	p.publishAndLog(NewInstalledEvent(info))
}

// SnapshotFailed publishes a snapshot.failed event.
func (p *Publisher) SnapshotFailed(err error) {
	p.publishAndLog(NewFailedEvent(err))
}

// publishAndLog is used from listener callbacks, which cannot return errors.
func (p *Publisher) publishAndLog(event *SnapshotEvent) {
	if err := p.PublishEvent(event); err != nil {
		p.logger.Error("Event publish failed", err, watermill.LogFields{
			"topic":    event.Topic(),
			"event_id": event.EventID,
		})
	}
}

// PublishEvent serializes event and publishes it to its topic.
func (p *Publisher) PublishEvent(event *SnapshotEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	topic := event.Topic()
	if p.closed {
		metrics.RecordEventPublish(topic, ErrPublisherClosed)
		p.failed.Add(1)
		return ErrPublisherClosed
	}

	data, err := SerializeEvent(event)
	if err != nil {
		metrics.RecordEventPublish(topic, err)
		p.failed.Add(1)
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("schema_version", strconv.Itoa(event.SchemaVersion))
	if event.Snapshot != nil {
		msg.Metadata.Set("snapshot_version", strconv.FormatUint(event.Snapshot.Version, 10))
	}

	err = p.publisher.Publish(topic, msg)
	metrics.RecordEventPublish(topic, err)
	if err != nil {
		p.failed.Add(1)
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	p.published.Add(1)
	p.logger.Debug("Event published", watermill.LogFields{
		"topic":    topic,
		"event_id": event.EventID,
	})
	return nil
}

// Close stops publishing. The underlying bus is owned by the caller.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// PublisherStats holds runtime statistics.
type PublisherStats struct {
	Published int64 `json:"published"`
	Failed    int64 `json:"failed"`
}

// Stats returns publish counters.
func (p *Publisher) Stats() PublisherStats {
	return PublisherStats{
		Published: p.published.Load(),
		Failed:    p.failed.Load(),
	}
}
