// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

// DefaultTopN is the neighbor count used when a query asks for fewer than one.
const DefaultTopN = 5

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid recommend config")

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Limits bounds the K parameter of incoming requests.
	Limits LimitsConfig `json:"limits"`

	// Workers is the number of goroutines used for the similarity build.
	// Zero means runtime.NumCPU().
	Workers int `json:"workers"`

	// Cache controls the per-snapshot query cache.
	Cache CacheConfig `json:"cache"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultK is used when a request leaves K at zero.
	// Default: 5.
	DefaultK int `json:"default_k"`

	// MaxK is the maximum allowed K value.
	// Default: 50.
	MaxK int `json:"max_k"`
}

// CacheConfig contains caching parameters.
type CacheConfig struct {
	// Enabled controls whether caching is active.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 10m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached results.
	// Default: 4096.
	MaxEntries int `json:"max_entries"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			DefaultK: DefaultTopN,
			MaxK:     50,
		},
		Workers: 0,
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        10 * time.Minute,
			MaxEntries: 4096,
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("%w: limits.default_k must be positive, got %d", ErrInvalidConfig, c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("%w: limits.max_k (%d) must be >= limits.default_k (%d)", ErrInvalidConfig, c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.Cache.Enabled {
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("%w: cache.max_entries must be positive when cache is enabled, got %d", ErrInvalidConfig, c.Cache.MaxEntries)
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("%w: cache.ttl must be positive when cache is enabled, got %s", ErrInvalidConfig, c.Cache.TTL)
		}
	}
	return nil
}

// workerCount resolves the effective similarity build parallelism.
func (c *Config) workerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}
