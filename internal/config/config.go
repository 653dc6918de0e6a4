// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"time"

	"github.com/tomtom215/reelmatch/internal/dataset"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Recommend RecommendConfig `koanf:"recommend"`
	API       APIConfig       `koanf:"api"`
	Events    EventsConfig    `koanf:"events"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// DatasetConfig locates the catalog file and controls how changes to it
// are picked up.
type DatasetConfig struct {
	// Path is the CSV file to index.
	Path string `koanf:"path" validate:"required"`

	// Watch enables filesystem notifications for Path. Polling runs either
	// way as a fallback for filesystems without notify support.
	Watch bool `koanf:"watch"`

	// PollInterval is how often the file's size and mtime are checked.
	// Zero disables polling.
	PollInterval time.Duration `koanf:"poll_interval" validate:"min=0"`

	// Debounce collapses bursts of change events into one reload.
	Debounce time.Duration `koanf:"debounce" validate:"min=0"`

	// MinReloadInterval is the minimum spacing between rebuilds.
	MinReloadInterval time.Duration `koanf:"min_reload_interval" validate:"min=0"`

	// BreakerFailures is the consecutive failure count that opens the
	// rebuild circuit breaker.
	BreakerFailures uint32 `koanf:"breaker_failures" validate:"min=1"`

	// BreakerTimeout is how long the breaker stays open.
	BreakerTimeout time.Duration `koanf:"breaker_timeout" validate:"gt=0"`

	// DuckDB tuning.
	Threads           int           `koanf:"threads" validate:"min=0,max=256"`
	MaxMemory         string        `koanf:"max_memory" validate:"required"`
	QueryTimeout      time.Duration `koanf:"query_timeout" validate:"gt=0"`
	AnalyticsCacheTTL time.Duration `koanf:"analytics_cache_ttl" validate:"gt=0"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	DefaultK     int           `koanf:"default_k" validate:"min=1"`
	MaxK         int           `koanf:"max_k" validate:"min=1,max=1000"`
	Workers      int           `koanf:"workers" validate:"min=0,max=1024"`
	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheSize    int           `koanf:"cache_size" validate:"min=0"`
	CacheTTL     time.Duration `koanf:"cache_ttl" validate:"min=0"`
}

// APIConfig holds HTTP API settings.
type APIConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	DefaultPageSize   int           `koanf:"default_page_size" validate:"min=1"`
	MaxPageSize       int           `koanf:"max_page_size" validate:"min=1,max=1000"`
}

// EventsConfig holds in-process event bus settings.
type EventsConfig struct {
	// BufferSize is the per-subscriber channel buffer of the bus.
	BufferSize int64 `koanf:"buffer_size" validate:"min=0"`

	// WebSocketBuffer is the per-client send buffer of the push hub.
	WebSocketBuffer int `koanf:"websocket_buffer" validate:"min=1"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// EngineConfig converts the recommend section into engine configuration.
func (c *Config) EngineConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.Limits.DefaultK = c.Recommend.DefaultK
	cfg.Limits.MaxK = c.Recommend.MaxK
	cfg.Workers = c.Recommend.Workers
	cfg.Cache.Enabled = c.Recommend.CacheEnabled
	cfg.Cache.MaxEntries = c.Recommend.CacheSize
	cfg.Cache.TTL = c.Recommend.CacheTTL
	return cfg
}

// LoaderConfig converts the dataset section into DuckDB loader settings.
func (c *Config) LoaderConfig() dataset.Config {
	return dataset.Config{
		Threads:           c.Dataset.Threads,
		MaxMemory:         c.Dataset.MaxMemory,
		QueryTimeout:      c.Dataset.QueryTimeout,
		AnalyticsCacheTTL: c.Dataset.AnalyticsCacheTTL,
	}
}

// Load reads configuration from defaults, an optional config file and
// environment variables, in increasing priority. See LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Defaults returns the built-in configuration without reading any file or
// environment variable.
func Defaults() *Config {
	return defaultConfig()
}
