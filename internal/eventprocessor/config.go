// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package eventprocessor

import "time"

// Config holds bus and router settings.
type Config struct {
	// BufferSize is the per-subscriber output buffer of the gochannel bus.
	BufferSize int64

	// CloseTimeout is how long the router waits for handlers when closing.
	CloseTimeout time.Duration

	// Retry settings for failing handlers.
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:           64,
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     2 * time.Second,
	}
}
