// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/dataset"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/supervisor/services"
)

func testCatalog() *recommend.Catalog {
	return &recommend.Catalog{
		Origin: "test",
		Movies: []recommend.Movie{
			{Title: "The Dark Knight", Year: 2008, Director: "Christopher Nolan", Genre: "Action, Crime, Drama",
				Cast: []string{"Christian Bale", "Heath Ledger", "Aaron Eckhart", "Michael Caine"}},
			{Title: "Inception", Year: 2010, Director: "Christopher Nolan", Genre: "Action, Adventure, Sci-Fi",
				Cast: []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt", "Elliot Page", "Ken Watanabe"}},
			{Title: "The Prestige", Year: 2006, Director: "Christopher Nolan", Genre: "Drama, Mystery, Sci-Fi",
				Cast: []string{"Christian Bale", "Hugh Jackman", "Scarlett Johansson", "Michael Caine"}},
			{Title: "Heat", Year: 1995, Director: "Michael Mann", Genre: "Action, Crime, Drama",
				Cast: []string{"Al Pacino", "Robert De Niro", "Val Kilmer", "Jon Voight"}},
			{Title: "Toy Story", Year: 1995, Director: "John Lasseter", Genre: "Animation, Adventure, Comedy",
				Cast: []string{"Tom Hanks", "Tim Allen", "Don Rickles", "Jim Varney"}},
		},
	}
}

// newTestEngine returns an engine with testCatalog installed, or an empty
// engine when install is false.
func newTestEngine(t *testing.T, install bool) *recommend.Engine {
	t.Helper()
	engine, err := recommend.NewEngine(recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if install {
		engine.Install(testCatalog())
	}
	return engine
}

type fakeAnalytics struct {
	mu         sync.Mutex
	err        error
	pingErr    error
	lastQuery  dataset.GenreQuery
	lastMetric dataset.Metric
}

func (f *fakeAnalytics) GenreStats(_ context.Context, q dataset.GenreQuery) ([]dataset.GenreStat, error) {
	f.mu.Lock()
	f.lastQuery = q
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return []dataset.GenreStat{{Genre: "Drama", Count: 3}}, nil
}

func (f *fakeAnalytics) GrossVsRating(_ context.Context, metric dataset.Metric) (*dataset.GrossVsRating, error) {
	f.setMetric(metric)
	if f.err != nil {
		return nil, f.err
	}
	return &dataset.GrossVsRating{Metric: metric}, nil
}

func (f *fakeAnalytics) RatingByYear(_ context.Context, metric dataset.Metric) ([]dataset.YearValue, error) {
	f.setMetric(metric)
	if f.err != nil {
		return nil, f.err
	}
	return []dataset.YearValue{{Year: 1995, Mean: 8.2, Count: 2}}, nil
}

func (f *fakeAnalytics) GrossByGenre(context.Context) ([]dataset.GenreGross, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []dataset.GenreGross{}, nil
}

func (f *fakeAnalytics) Ping(context.Context) error { return f.pingErr }

func (f *fakeAnalytics) AnalyticsCacheStats() cache.Stats { return cache.Stats{Hits: 1} }

func (f *fakeAnalytics) setMetric(m dataset.Metric) {
	f.mu.Lock()
	f.lastMetric = m
	f.mu.Unlock()
}

func (f *fakeAnalytics) metric() dataset.Metric {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastMetric
}

func (f *fakeAnalytics) query() dataset.GenreQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQuery
}

type fakeReloader struct {
	err   error
	state string
	calls int
}

func (f *fakeReloader) Trigger(string) error {
	f.calls++
	return f.err
}

func (f *fakeReloader) Stats() services.ReloadStats {
	return services.ReloadStats{BreakerState: f.state}
}

// envelope mirrors APIResponse with undecoded data.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *struct {
		RequestID  string          `json:"request_id"`
		Pagination *PaginationMeta `json:"pagination"`
	} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return env
}

func decodeData(t *testing.T, env envelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func newTestHandler(t *testing.T, install bool) (*Handler, *fakeAnalytics, *fakeReloader) {
	t.Helper()
	analytics := &fakeAnalytics{}
	reloader := &fakeReloader{state: "closed"}
	h := NewHandler(config.Defaults(), newTestEngine(t, install), analytics, reloader, nil)
	return h, analytics, reloader
}

func serve(handler http.HandlerFunc, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}
