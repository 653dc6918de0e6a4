// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelmatch/internal/dataset"
	"github.com/tomtom215/reelmatch/internal/middleware"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/supervisor/services"
)

func TestRecommendations(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t, true)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantFound  bool
		wantItems  int
		wantCode   string
	}{
		{"default k", "title=The+Dark+Knight", http.StatusOK, true, 4, ""},
		{"explicit k", "title=The+Dark+Knight&k=2", http.StatusOK, true, 2, ""},
		{"k above catalog", "title=Heat&k=40", http.StatusOK, true, 4, ""},
		{"unknown title", "title=Nope", http.StatusOK, false, 0, ""},
		{"case sensitive", "title=heat", http.StatusOK, false, 0, ""},
		{"missing title", "", http.StatusBadRequest, false, 0, ErrCodeValidation},
		{"zero k", "title=Heat&k=0", http.StatusBadRequest, false, 0, ErrCodeValidation},
		{"negative k", "title=Heat&k=-3", http.StatusBadRequest, false, 0, ErrCodeValidation},
		{"non-integer k", "title=Heat&k=five", http.StatusBadRequest, false, 0, ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := serve(h.Recommendations, http.MethodGet, "/api/v1/recommendations?"+tt.query)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			env := decodeEnvelope(t, w)
			if tt.wantCode != "" {
				if env.Error == nil || env.Error.Code != tt.wantCode {
					t.Fatalf("error = %+v, want code %s", env.Error, tt.wantCode)
				}
				return
			}

			var resp recommend.Response
			decodeData(t, env, &resp)
			if resp.Found != tt.wantFound {
				t.Errorf("Found = %v, want %v", resp.Found, tt.wantFound)
			}
			if len(resp.Items) != tt.wantItems {
				t.Errorf("len(Items) = %d, want %d", len(resp.Items), tt.wantItems)
			}
			for _, item := range resp.Items {
				if item.Title == resp.Query {
					t.Errorf("query %q recommended itself", resp.Query)
				}
			}
		})
	}
}

func TestRecommendations_Ranking(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t, true)
	w := serve(h.Recommendations, http.MethodGet, "/api/v1/recommendations?title="+url.QueryEscape("The Dark Knight")+"&k=1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp recommend.Response
	decodeData(t, decodeEnvelope(t, w), &resp)
	if len(resp.Items) != 1 || resp.Items[0].Title != "The Prestige" {
		t.Fatalf("Items = %+v, want The Prestige first", resp.Items)
	}
	if resp.Items[0].LeadActor != "Christian Bale" {
		t.Errorf("LeadActor = %q", resp.Items[0].LeadActor)
	}
}

func TestRecommendations_NoSnapshot(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t, false)
	w := serve(h.Recommendations, http.MethodGet, "/api/v1/recommendations?title=Heat")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error.Code != ErrCodeNoSnapshot {
		t.Errorf("code = %s, want %s", env.Error.Code, ErrCodeNoSnapshot)
	}
}

func TestMovies_Pagination(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t, true)

	tests := []struct {
		query       string
		wantStatus  int
		wantTitles  []string
		wantHasMore bool
	}{
		{"", http.StatusOK, []string{"The Dark Knight", "Inception", "The Prestige", "Heat", "Toy Story"}, false},
		{"limit=2", http.StatusOK, []string{"The Dark Knight", "Inception"}, true},
		{"offset=3&limit=2", http.StatusOK, []string{"Heat", "Toy Story"}, false},
		{"offset=10", http.StatusOK, []string{}, false},
		{"limit=-1", http.StatusBadRequest, nil, false},
		{"offset=x", http.StatusBadRequest, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			t.Parallel()
			w := serve(h.Movies, http.MethodGet, "/api/v1/movies?"+tt.query)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			env := decodeEnvelope(t, w)
			var movies []recommend.Movie
			decodeData(t, env, &movies)
			titles := make([]string, 0, len(movies))
			for _, m := range movies {
				titles = append(titles, m.Title)
			}
			if !slices.Equal(titles, tt.wantTitles) {
				t.Errorf("titles = %v, want %v", titles, tt.wantTitles)
			}
			p := env.Meta.Pagination
			if p == nil || p.Total != 5 || p.HasMore != tt.wantHasMore {
				t.Errorf("pagination = %+v, want total 5 has_more %v", p, tt.wantHasMore)
			}
		})
	}
}

func TestMovieTitles_Sorted(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t, true)
	w := serve(h.MovieTitles, http.MethodGet, "/api/v1/movies/titles")

	var titles []string
	decodeData(t, decodeEnvelope(t, w), &titles)
	if !slices.IsSorted(titles) || len(titles) != 5 {
		t.Errorf("titles = %v, want 5 sorted", titles)
	}
}

func TestMovieLookup(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t, true)

	w := serve(h.MovieLookup, http.MethodGet, "/api/v1/movies/lookup?title=Heat")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Position int             `json:"position"`
		Movie    recommend.Movie `json:"movie"`
	}
	decodeData(t, decodeEnvelope(t, w), &body)
	if body.Position != 3 || body.Movie.Director != "Michael Mann" {
		t.Errorf("body = %+v", body)
	}

	if w := serve(h.MovieLookup, http.MethodGet, "/api/v1/movies/lookup?title=Heat+2"); w.Code != http.StatusNotFound {
		t.Errorf("unknown title status = %d, want 404", w.Code)
	}
	if w := serve(h.MovieLookup, http.MethodGet, "/api/v1/movies/lookup"); w.Code != http.StatusBadRequest {
		t.Errorf("missing title status = %d, want 400", w.Code)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		install    bool
		pingErr    error
		breaker    string
		wantStatus string
	}{
		{"healthy", true, nil, "closed", "healthy"},
		{"no snapshot", false, nil, "closed", "degraded"},
		{"database down", true, errors.New("closed"), "closed", "degraded"},
		{"breaker open", true, nil, "open", "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, analytics, reloader := newTestHandler(t, tt.install)
			analytics.pingErr = tt.pingErr
			reloader.state = tt.breaker

			w := serve(h.Health, http.MethodGet, "/api/v1/health")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			var status HealthStatus
			decodeData(t, decodeEnvelope(t, w), &status)
			if status.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", status.Status, tt.wantStatus)
			}
			if status.ReloadBreaker != tt.breaker {
				t.Errorf("ReloadBreaker = %q, want %q", status.ReloadBreaker, tt.breaker)
			}
		})
	}
}

func TestHealthReady(t *testing.T) {
	t.Parallel()

	empty, _, _ := newTestHandler(t, false)
	if w := serve(empty.HealthReady, http.MethodGet, "/api/v1/health/ready"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("before install status = %d, want 503", w.Code)
	}

	ready, _, _ := newTestHandler(t, true)
	if w := serve(ready.HealthReady, http.MethodGet, "/api/v1/health/ready"); w.Code != http.StatusOK {
		t.Errorf("after install status = %d, want 200", w.Code)
	}
}

func TestReload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"accepted", nil, http.StatusAccepted, ""},
		{"throttled", services.ErrReloadThrottled, http.StatusTooManyRequests, ErrCodeReloadThrottled},
		{"breaker open", gobreaker.ErrOpenState, http.StatusServiceUnavailable, ErrCodeCircuitOpen},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, _, reloader := newTestHandler(t, true)
			reloader.err = tt.err

			w := serve(h.Reload, http.MethodPost, "/api/v1/snapshot/reload")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if reloader.calls != 1 {
				t.Errorf("Trigger calls = %d, want 1", reloader.calls)
			}
			env := decodeEnvelope(t, w)
			if tt.wantCode != "" && (env.Error == nil || env.Error.Code != tt.wantCode) {
				t.Errorf("error = %+v, want %s", env.Error, tt.wantCode)
			}
			if tt.wantStatus == http.StatusTooManyRequests && w.Header().Get("Retry-After") == "" {
				t.Error("throttled response should carry Retry-After")
			}
		})
	}
}

func TestReload_Unavailable(t *testing.T) {
	t.Parallel()

	h := NewHandler(nil, newTestEngine(t, true), nil, nil, nil)
	if w := serve(h.Reload, http.MethodPost, "/api/v1/snapshot/reload"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t, true)
	serve(h.Recommendations, http.MethodGet, "/api/v1/recommendations?title=Heat")
	for i := range recentRequestsShown + 5 {
		h.perfMon.RecordRequest(middleware.RequestMetrics{
			Route:      "/api/v1/recommendations",
			Method:     http.MethodGet,
			Duration:   time.Duration(i+1) * time.Millisecond,
			StatusCode: http.StatusOK,
			Timestamp:  time.Now(),
		})
	}

	w := serve(h.Stats, http.MethodGet, "/api/v1/stats")
	var stats ServerStats
	decodeData(t, decodeEnvelope(t, w), &stats)
	if stats.Engine.Requests != 1 || stats.Engine.Snapshot == nil {
		t.Errorf("Engine = %+v", stats.Engine)
	}
	if stats.Reload == nil || stats.AnalyticsCache == nil || stats.AnalyticsCache.Hits != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.AnalyticsCacheHitRate != 100 {
		t.Errorf("AnalyticsCacheHitRate = %v, want 100", stats.AnalyticsCacheHitRate)
	}
	if len(stats.RecentRequests) != recentRequestsShown {
		t.Fatalf("RecentRequests len = %d, want %d", len(stats.RecentRequests), recentRequestsShown)
	}
	last := stats.RecentRequests[len(stats.RecentRequests)-1]
	if last.Duration != time.Duration(recentRequestsShown+5)*time.Millisecond || last.StatusCode != http.StatusOK {
		t.Errorf("last recent request = %+v", last)
	}
}

func TestAnalytics_MetricDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler func(*Handler) http.HandlerFunc
		query   string
		want    dataset.Metric
	}{
		{"gross-vs-rating default", func(h *Handler) http.HandlerFunc { return h.AnalyticsGrossVsRating }, "", dataset.MetricIMDBRating},
		{"gross-vs-rating meta", func(h *Handler) http.HandlerFunc { return h.AnalyticsGrossVsRating }, "metric=meta_score", dataset.MetricMetaScore},
		{"rating-by-year default", func(h *Handler) http.HandlerFunc { return h.AnalyticsRatingByYear }, "", dataset.MetricIMDBRating},
		{"genres default", func(h *Handler) http.HandlerFunc { return h.AnalyticsGenres }, "", dataset.MetricMetaScore},
		{"genres rating", func(h *Handler) http.HandlerFunc { return h.AnalyticsGenres }, "metric=imdb_rating", dataset.MetricIMDBRating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, analytics, _ := newTestHandler(t, true)
			w := serve(tt.handler(h), http.MethodGet, "/?"+tt.query)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", w.Code, w.Body.String())
			}
			got := analytics.metric()
			if q := analytics.query(); q.Metric != "" {
				got = q.Metric
			}
			if got != tt.want {
				t.Errorf("metric = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAnalyticsGenres_Filters(t *testing.T) {
	t.Parallel()

	h, analytics, _ := newTestHandler(t, true)
	w := serve(h.AnalyticsGenres, http.MethodGet, "/?genre=Drama,+Crime&genre=Sci-Fi&limit=3")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	q := analytics.query()
	if want := []string{"Drama", "Crime", "Sci-Fi"}; !slices.Equal(q.Genres, want) {
		t.Errorf("Genres = %v, want %v", q.Genres, want)
	}
	if q.Limit != 3 {
		t.Errorf("Limit = %d, want 3", q.Limit)
	}
}

func TestAnalytics_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		query      string
		nilStore   bool
		wantStatus int
		wantCode   string
	}{
		{"unknown metric", nil, "metric=votes", false, http.StatusBadRequest, ErrCodeValidation},
		{"not loaded", fmt.Errorf("genres: %w", dataset.ErrNotLoaded), "", false, http.StatusServiceUnavailable, ErrCodeNoSnapshot},
		{"query failure", errors.New("duckdb: IO error"), "", false, http.StatusInternalServerError, ErrCodeDatabase},
		{"no store", nil, "", true, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, analytics, _ := newTestHandler(t, true)
			analytics.err = tt.err
			if tt.nilStore {
				h.analytics = nil
			}

			w := serve(h.AnalyticsRatingByYear, http.MethodGet, "/?"+tt.query)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if env := decodeEnvelope(t, w); env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want %s", env.Error, tt.wantCode)
			}
		})
	}
}

func TestCheckWebSocketOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"missing origin", []string{"*"}, "", false},
		{"wildcard", []string{"*"}, "https://any.example", true},
		{"listed", []string{"https://movies.example"}, "https://movies.example", true},
		{"not listed", []string{"https://movies.example"}, "https://evil.example", false},
		{"none configured", nil, "https://movies.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, _, _ := newTestHandler(t, false)
			h.config.API.CORSOrigins = tt.allowed

			req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := h.checkWebSocketOrigin(req); got != tt.want {
				t.Errorf("checkWebSocketOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWebSocket_NoHub(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t, true)
	if w := serve(h.WebSocket, http.MethodGet, "/api/v1/ws"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
