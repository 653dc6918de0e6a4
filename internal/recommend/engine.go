// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

var (
	// ErrNoSnapshot is returned by queries issued before the first snapshot
	// has been installed.
	ErrNoSnapshot = errors.New("no snapshot installed")

	// ErrInvalidCatalog marks catalogs that cannot be indexed because their
	// source is misconfigured (for example a dataset missing required
	// columns). Sources wrap it so the engine can tell configuration failures
	// from transient ones.
	ErrInvalidCatalog = errors.New("invalid catalog")
)

const queryCacheType = "recommend"

// Listener is notified after every build attempt. Calls are made
// synchronously from the building goroutine and must not block.
type Listener interface {
	SnapshotInstalled(info SnapshotInfo)
	SnapshotFailed(err error)
}

// queryKey identifies a cached result. Including the version makes results
// from a replaced snapshot unreachable.
type queryKey struct {
	version uint64
	title   string
	k       int
}

// Engine serves recommendations from the currently installed snapshot and
// rebuilds snapshots on demand. It is safe for concurrent use.
//
// Queries load the current snapshot once and never block on a rebuild. A
// rebuild constructs the new snapshot off to the side and installs it with
// a single atomic store, so in-flight queries finish on the snapshot they
// started with.
type Engine struct {
	config *Config
	logger zerolog.Logger

	current atomic.Pointer[Snapshot]

	// buildMu serializes rebuilds; queries never take it.
	buildMu      sync.Mutex
	nextVersion  uint64
	lastBuildErr atomic.Pointer[string]

	listenersMu sync.RWMutex
	listeners   []Listener

	queryCache *cache.LRU[queryKey, Result]

	requestCount atomic.Int64
	missCount    atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	buildCount   atomic.Int64
	buildErrors  atomic.Int64
}

// NewEngine creates an engine with no snapshot installed.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
	}
	if cfg.Cache.Enabled {
		e.queryCache = cache.NewLRU[queryKey, Result](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}
	return e, nil
}

// AddListener registers l for build notifications.
func (e *Engine) AddListener(l Listener) {
	e.listenersMu.Lock()
	defer e.listenersMu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Current returns the installed snapshot, or nil before the first install.
func (e *Engine) Current() *Snapshot {
	return e.current.Load()
}

// Ready reports whether a snapshot is installed.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// Config returns the engine configuration. It must not be modified.
func (e *Engine) Config() *Config {
	return e.config
}

// Rebuild loads a catalog from src, builds a snapshot from it and installs
// it. On failure the previous snapshot, if any, stays installed and the
// error is returned once; it is not retried here.
func (e *Engine) Rebuild(ctx context.Context, src Source) (SnapshotInfo, error) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	start := time.Now()

	cat, err := src.Load(ctx)
	if err != nil {
		e.recordBuildFailure(err)
		return SnapshotInfo{}, fmt.Errorf("load catalog: %w", err)
	}

	info := e.installLocked(cat, start)
	return info, nil
}

// Install builds a snapshot from an already loaded catalog and installs it.
func (e *Engine) Install(cat *Catalog) SnapshotInfo {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	return e.installLocked(cat, time.Now())
}

// installLocked must be called with buildMu held.
func (e *Engine) installLocked(cat *Catalog, start time.Time) SnapshotInfo {
	e.nextVersion++
	snap := NewSnapshot(cat, e.nextVersion, e.config.workerCount())

	prev := e.current.Swap(snap)
	e.lastBuildErr.Store(nil)
	e.buildCount.Add(1)
	e.purgeStale(snap.Version())

	info := snap.Info()
	metrics.RecordSnapshotBuild(time.Since(start), info.Items, info.VocabularySize, info.Version)

	ev := e.logger.Info().
		Uint64("version", info.Version).
		Int("items", info.Items).
		Int("vocabulary", info.VocabularySize).
		Int("rows_dropped", info.RowsDropped).
		Int64("build_ms", info.BuildMS)
	if prev != nil {
		ev = ev.Uint64("replaced_version", prev.Version())
	}
	ev.Msg("snapshot installed")

	for _, l := range e.getListeners() {
		l.SnapshotInstalled(info)
	}
	return info
}

func (e *Engine) recordBuildFailure(err error) {
	e.buildErrors.Add(1)
	msg := err.Error()
	e.lastBuildErr.Store(&msg)

	invalid := errors.Is(err, ErrInvalidCatalog)
	metrics.RecordSnapshotBuildFailure(invalid)

	e.logger.Error().
		Err(err).
		Bool("configuration_error", invalid).
		Bool("serving_previous", e.current.Load() != nil).
		Msg("snapshot build failed")

	for _, l := range e.getListeners() {
		l.SnapshotFailed(err)
	}
}

func (e *Engine) getListeners() []Listener {
	e.listenersMu.RLock()
	defer e.listenersMu.RUnlock()
	return e.listeners
}

// purgeStale drops cached results of older snapshots.
func (e *Engine) purgeStale(version uint64) {
	if e.queryCache == nil {
		return
	}
	removed := e.queryCache.RemoveFunc(func(k queryKey) bool {
		return k.version != version
	})
	metrics.RecordCacheEvictions(queryCacheType, removed)
	metrics.SetCacheSize(queryCacheType, e.queryCache.Len())
}

// Recommend answers a title query against the current snapshot.
//
// An unknown title is not an error: the response has Found unset and no
// items. Errors are limited to ErrNoSnapshot and a done ctx.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	snap := e.current.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}

	req = e.prepareRequest(req)
	logger := e.createRequestLogger(req)

	res, cacheHit := e.lookup(snap, req)
	outcome := queryOutcome(res)
	if outcome == "miss" {
		e.missCount.Add(1)
	}

	latency := time.Since(start)
	metrics.RecordRecommendQuery(outcome, latency)

	logger.Debug().
		Bool("found", res.Found).
		Int("returned", len(res.Items)).
		Bool("cache_hit", cacheHit).
		Dur("latency", latency).
		Msg("recommendation complete")

	return &Response{
		Result: res,
		Metadata: ResponseMetadata{
			RequestID: req.RequestID,
			K:         req.K,
			LatencyMS: latency.Milliseconds(),
			CacheHit:  cacheHit,
			BuiltAt:   snap.BuiltAt(),
			Timestamp: time.Now(),
		},
	}, nil
}

// lookup serves req from the cache when possible.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) lookup(snap *Snapshot, req Request) (Result, bool) {
	if e.queryCache == nil {
		return snap.Recommend(req.Title, req.K), false
	}

	key := queryKey{version: snap.Version(), title: req.Title, k: req.K}
	if cached, ok := e.queryCache.Get(key); ok {
		e.cacheHits.Add(1)
		metrics.RecordCacheLookup(queryCacheType, true)
		return copyResult(cached), true
	}

	e.cacheMisses.Add(1)
	metrics.RecordCacheLookup(queryCacheType, false)

	res := snap.Recommend(req.Title, req.K)
	e.queryCache.Add(key, res)
	return copyResult(res), false
}

// prepareRequest applies defaults, clamps K and generates a request ID.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.K < 1 {
		req.K = e.config.Limits.DefaultK
	}
	if req.K > e.config.Limits.MaxK {
		req.K = e.config.Limits.MaxK
	}
	return req
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Str("title", req.Title).
		Int("k", req.K).
		Logger()
}

// Stats returns engine counters and a summary of the installed snapshot.
func (e *Engine) Stats() Stats {
	s := Stats{
		Requests:    e.requestCount.Load(),
		Misses:      e.missCount.Load(),
		CacheHits:   e.cacheHits.Load(),
		CacheMisses: e.cacheMisses.Load(),
		Builds:      e.buildCount.Load(),
		BuildErrors: e.buildErrors.Load(),
	}
	if msg := e.lastBuildErr.Load(); msg != nil {
		s.LastBuildErr = *msg
	}
	if snap := e.current.Load(); snap != nil {
		info := snap.Info()
		s.Snapshot = &info
	}
	return s
}

func queryOutcome(res Result) string {
	switch {
	case !res.Found:
		return "miss"
	case len(res.Items) == 0:
		return "empty"
	default:
		return "hit"
	}
}

// copyResult returns res with its own Items slice so callers cannot mutate
// cached state.
func copyResult(res Result) Result {
	items := make([]Recommendation, len(res.Items))
	copy(items, res.Items)
	res.Items = items
	return res
}
