// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Dataset and DuckDB:
  - duckdb_query_duration_seconds{operation,table}
  - duckdb_query_errors_total{operation,table,error_type}
  - dataset_rows_read, dataset_rows_dropped

Snapshots:
  - snapshot_builds_total{result}: success, schema_error, error
  - snapshot_build_duration_seconds
  - snapshot_items, snapshot_vocabulary_size, snapshot_version
  - snapshot_last_success_timestamp

Recommendations:
  - recommend_queries_total{outcome}: hit, miss, empty
  - recommend_query_duration_seconds
  - cache_hits_total{cache_type}, cache_misses_total{cache_type}
  - cache_entries{cache_type}, cache_evictions_total{cache_type}

API:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Reloads and events:
  - reload_requests_total{source,result}
  - events_published_total{topic}, events_publish_errors_total{topic}
  - circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_consecutive_failures{name}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

WebSocket:
  - websocket_connections
  - websocket_messages_sent_total, websocket_messages_received_total
  - websocket_errors_total{error_type}

# Usage

Callers use the Record* helpers rather than touching collectors directly:

	start := time.Now()
	res := snap.Recommend(title, k)
	metrics.RecordRecommendQuery("hit", time.Since(start))
*/
package metrics
