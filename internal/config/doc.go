// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package config loads application configuration with Koanf v2.

Sources, later overriding earlier:

 1. Built-in defaults (defaultConfig)
 2. YAML file: $CONFIG_PATH, then config.yaml, config.yml, /etc/reelmatch/config.yaml
 3. Environment variables

# Sections

  - server: host, port, timeout, shutdown_timeout
  - dataset: path, watch, poll_interval, debounce, min_reload_interval,
    breaker_failures, breaker_timeout and the DuckDB settings threads,
    max_memory, query_timeout, analytics_cache_ttl
  - recommend: default_k, max_k, workers, cache_enabled, cache_size, cache_ttl
  - api: cors_origins, rate_limit_requests, rate_limit_window,
    rate_limit_disabled, default_page_size, max_page_size
  - events: buffer_size, websocket_buffer
  - logging: level, format, caller

# Environment Variables

Environment names are flat and mapped explicitly, for example:

	DATASET_PATH=/data/imdb_top_1000.csv
	RECOMMEND_MAX_K=20
	CORS_ORIGINS=https://a.example,https://b.example
	LOG_LEVEL=debug

Unmapped variables are ignored.

# Example config.yaml

	server:
	  port: 8080
	dataset:
	  path: /data/imdb_top_1000.csv
	  watch: true
	recommend:
	  default_k: 5
	  max_k: 50
*/
package config
