// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// getHistogramCount extracts the sample count from a Prometheus histogram
func getHistogramCount(h prometheus.Histogram) uint64 {
	var m io_prometheus_client.Metric
	if err := h.Write(&m); err != nil {
		return 0
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		err       error
		errorType string
	}{
		{"successful read", "read_csv", "movies_raw", nil, ""},
		{"canceled load", "clean", "movies", context.Canceled, "canceled"},
		{"timed out", "analytics", "movies", fmt.Errorf("query: %w", context.DeadlineExceeded), "timeout"},
		{"missing file", "read_csv", "movies_raw", errors.New("IO Error: No files found that match the pattern"), "not_found"},
		{"binder error", "schema", "movies_raw", errors.New(`Binder Error: Referenced column "Genre" not found`), "binder"},
		{"unclassified", "clean", "movies", errors.New("boom"), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before float64
			if tt.err != nil {
				before = testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table, tt.errorType))
			}

			RecordDBQuery(tt.operation, tt.table, 10*time.Millisecond, tt.err)

			if tt.err == nil {
				return
			}
			after := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table, tt.errorType))
			if after != before+1 {
				t.Errorf("error counter for %q = %v, want %v", tt.errorType, after, before+1)
			}
		})
	}
}

func TestRecordSnapshotBuild(t *testing.T) {
	before := testutil.ToFloat64(SnapshotBuildsTotal.WithLabelValues("success"))
	beforeCount := getHistogramCount(SnapshotBuildDuration)

	RecordSnapshotBuild(250*time.Millisecond, 842, 2210, 7)

	if got := testutil.ToFloat64(SnapshotBuildsTotal.WithLabelValues("success")); got != before+1 {
		t.Errorf("snapshot_builds_total{success} = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(SnapshotItems); got != 842 {
		t.Errorf("snapshot_items = %v, want 842", got)
	}
	if got := testutil.ToFloat64(SnapshotVocabularySize); got != 2210 {
		t.Errorf("snapshot_vocabulary_size = %v, want 2210", got)
	}
	if got := testutil.ToFloat64(SnapshotVersion); got != 7 {
		t.Errorf("snapshot_version = %v, want 7", got)
	}
	if got := getHistogramCount(SnapshotBuildDuration); got != beforeCount+1 {
		t.Errorf("build duration sample count = %d, want %d", got, beforeCount+1)
	}
	if testutil.ToFloat64(SnapshotLastSuccess) == 0 {
		t.Error("snapshot_last_success_timestamp not set")
	}
}

func TestRecordSnapshotBuildFailure(t *testing.T) {
	tests := []struct {
		name      string
		schemaErr bool
		label     string
	}{
		{"schema error", true, "schema_error"},
		{"other error", false, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(SnapshotBuildsTotal.WithLabelValues(tt.label))
			RecordSnapshotBuildFailure(tt.schemaErr)
			if got := testutil.ToFloat64(SnapshotBuildsTotal.WithLabelValues(tt.label)); got != before+1 {
				t.Errorf("snapshot_builds_total{%s} = %v, want %v", tt.label, got, before+1)
			}
		})
	}
}

func TestRecordRecommendQuery(t *testing.T) {
	for _, outcome := range []string{"hit", "miss", "empty"} {
		t.Run(outcome, func(t *testing.T) {
			before := testutil.ToFloat64(RecommendQueriesTotal.WithLabelValues(outcome))
			RecordRecommendQuery(outcome, time.Millisecond)
			if got := testutil.ToFloat64(RecommendQueriesTotal.WithLabelValues(outcome)); got != before+1 {
				t.Errorf("recommend_queries_total{%s} = %v, want %v", outcome, got, before+1)
			}
		})
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hitsBefore := testutil.ToFloat64(CacheHits.WithLabelValues("test"))
	missesBefore := testutil.ToFloat64(CacheMisses.WithLabelValues("test"))

	RecordCacheLookup("test", true)
	RecordCacheLookup("test", true)
	RecordCacheLookup("test", false)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("test")); got != hitsBefore+2 {
		t.Errorf("cache_hits_total = %v, want %v", got, hitsBefore+2)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("test")); got != missesBefore+1 {
		t.Errorf("cache_misses_total = %v, want %v", got, missesBefore+1)
	}

	evBefore := testutil.ToFloat64(CacheEvictions.WithLabelValues("test"))
	RecordCacheEvictions("test", 0)
	RecordCacheEvictions("test", 3)
	if got := testutil.ToFloat64(CacheEvictions.WithLabelValues("test")); got != evBefore+3 {
		t.Errorf("cache_evictions_total = %v, want %v", got, evBefore+3)
	}

	SetCacheSize("test", 12)
	if got := testutil.ToFloat64(CacheSize.WithLabelValues("test")); got != 12 {
		t.Errorf("cache_entries = %v, want 12", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("after inc = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("after dec = %v, want %v", got, before)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/recommendations", "200"))
	RecordAPIRequest("GET", "/api/v1/recommendations", "200", 3*time.Millisecond)
	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/recommendations", "200")); got != before+1 {
		t.Errorf("api_requests_total = %v, want %v", got, before+1)
	}
}

func TestRecordReloadAndEvents(t *testing.T) {
	before := testutil.ToFloat64(ReloadRequestsTotal.WithLabelValues("api", "throttled"))
	RecordReloadRequest("api", "throttled")
	if got := testutil.ToFloat64(ReloadRequestsTotal.WithLabelValues("api", "throttled")); got != before+1 {
		t.Errorf("reload_requests_total = %v, want %v", got, before+1)
	}

	pubBefore := testutil.ToFloat64(EventsPublished.WithLabelValues("snapshot.installed"))
	errBefore := testutil.ToFloat64(EventsPublishErrors.WithLabelValues("snapshot.installed"))
	RecordEventPublish("snapshot.installed", nil)
	RecordEventPublish("snapshot.installed", errors.New("closed"))
	if got := testutil.ToFloat64(EventsPublished.WithLabelValues("snapshot.installed")); got != pubBefore+1 {
		t.Errorf("events_published_total = %v, want %v", got, pubBefore+1)
	}
	if got := testutil.ToFloat64(EventsPublishErrors.WithLabelValues("snapshot.installed")); got != errBefore+1 {
		t.Errorf("events_publish_errors_total = %v, want %v", got, errBefore+1)
	}

	rlBefore := testutil.ToFloat64(APIRateLimitHits.WithLabelValues("/api/v1/snapshot/reload"))
	RecordRateLimitHit("/api/v1/snapshot/reload")
	if got := testutil.ToFloat64(APIRateLimitHits.WithLabelValues("/api/v1/snapshot/reload")); got != rlBefore+1 {
		t.Errorf("api_rate_limit_hits_total = %v, want %v", got, rlBefore+1)
	}
}

func TestRecordDatasetLoad(t *testing.T) {
	RecordDatasetLoad(1000, 158)
	if got := testutil.ToFloat64(DatasetRowsRead); got != 1000 {
		t.Errorf("dataset_rows_read = %v, want 1000", got)
	}
	if got := testutil.ToFloat64(DatasetRowsDropped); got != 158 {
		t.Errorf("dataset_rows_dropped = %v, want 158", got)
	}
}

// TestMetricGathering tests that metrics can be gathered using testutil
func TestMetricGathering(t *testing.T) {
	RecordDBQuery("TEST", "test_table", time.Millisecond, nil)
	RecordAPIRequest("GET", "/test", "200", time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}

func BenchmarkRecordRecommendQuery(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordRecommendQuery("hit", time.Microsecond)
	}
}
