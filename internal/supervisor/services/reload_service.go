// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// ErrReloadThrottled is returned by Trigger when a reload ran less than
// MinInterval ago.
var ErrReloadThrottled = errors.New("reload throttled")

// Trigger sources, used as the metrics label.
const (
	SourceManual  = "manual"
	SourceWatch   = "watch"
	SourcePoll    = "poll"
	SourceStartup = "startup"
)

const breakerName = "dataset-reload"

// Rebuilder is satisfied by *recommend.Engine.
type Rebuilder interface {
	Rebuild(ctx context.Context, src recommend.Source) (recommend.SnapshotInfo, error)
}

// SourceFactory returns the catalog source for a dataset path. The dataset
// loader's Source method has this shape.
type SourceFactory func(path string) recommend.Source

// ReloadConfig configures the reload service.
type ReloadConfig struct {
	// Path is the dataset file.
	Path string

	// Watch enables fsnotify on the file's directory.
	Watch bool

	// PollInterval is how often the file's size and mtime are compared.
	// Zero disables polling.
	PollInterval time.Duration

	// Debounce collapses bursts of file events into one reload.
	Debounce time.Duration

	// MinInterval is the minimum time between rebuilds.
	MinInterval time.Duration

	// BreakerFailures consecutive failures open the breaker for
	// BreakerTimeout.
	BreakerFailures uint32
	BreakerTimeout  time.Duration

	// BuildTimeout bounds one load and rebuild. Default: 5m
	BuildTimeout time.Duration
}

// ReloadStats reports reload activity.
type ReloadStats struct {
	Path         string    `json:"path"`
	Watching     bool      `json:"watching"`
	Reloads      int64     `json:"reloads"`
	Failures     int64     `json:"failures"`
	Throttled    int64     `json:"throttled"`
	Rejected     int64     `json:"rejected"`
	LastReload   time.Time `json:"last_reload,omitempty"`
	LastSource   string    `json:"last_source,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	BreakerState string    `json:"breaker_state"`
}

// fileStamp identifies one version of the dataset file.
type fileStamp struct {
	modTime time.Time
	size    int64
}

// ReloadService rebuilds the engine's snapshot when the dataset changes or
// when asked to. It runs in the data layer of the supervisor tree.
//
// Changes are detected two ways: fsnotify events on the file's directory
// (so editors that replace the file by rename are seen) and a polling
// ticker that compares size and mtime, for filesystems where notifications
// are not delivered. Both feed a debounce timer. Rebuilds are spaced at
// least MinInterval apart by a token-bucket limiter and run inside a
// circuit breaker so a persistently broken file is not reparsed on every
// event.
type ReloadService struct {
	engine Rebuilder
	source SourceFactory
	cfg    ReloadConfig
	logger zerolog.Logger

	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[recommend.SnapshotInfo]
	triggers chan string

	mu        sync.Mutex
	stats     ReloadStats
	lastStamp fileStamp
}

// NewReloadService creates the service. The current state of the file is
// taken as the baseline, so polling fires only on later changes.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewReloadService(engine Rebuilder, source SourceFactory, cfg ReloadConfig, logger zerolog.Logger) *ReloadService {
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = 5 * time.Minute
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 3
	}

	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	s := &ReloadService{
		engine:   engine,
		source:   source,
		cfg:      cfg,
		logger:   logger.With().Str("service", "reload").Str("path", cfg.Path).Logger(),
		limiter:  rate.NewLimiter(limit, 1),
		triggers: make(chan string, 1),
		stats:    ReloadStats{Path: cfg.Path},
	}
	s.breaker = s.newBreaker()
	s.lastStamp, _ = stat(cfg.Path)
	return s
}

func (s *ReloadService) newBreaker() *gobreaker.CircuitBreaker[recommend.SnapshotInfo] {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker[recommend.SnapshotInfo](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     s.cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.cfg.BreakerFailures
		},
		// Shutdown is not a failure of the dataset.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("reload circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Trigger asks for a rebuild from the given source. It never blocks: the
// request is queued for the Serve loop, and a request arriving while one is
// already queued is merged into it.
//
// It returns gobreaker.ErrOpenState while the breaker is open and
// ErrReloadThrottled inside MinInterval of the previous rebuild.
func (s *ReloadService) Trigger(source string) error {
	if s.breaker.State() == gobreaker.StateOpen {
		s.count(func(st *ReloadStats) { st.Rejected++ })
		metrics.RecordReloadRequest(source, "rejected")
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		return gobreaker.ErrOpenState
	}
	if !s.limiter.Allow() {
		s.count(func(st *ReloadStats) { st.Throttled++ })
		metrics.RecordReloadRequest(source, "throttled")
		return ErrReloadThrottled
	}

	select {
	case s.triggers <- source:
		metrics.RecordReloadRequest(source, "accepted")
	default:
		metrics.RecordReloadRequest(source, "coalesced")
	}
	return nil
}

// ReloadNow loads the dataset and rebuilds the snapshot synchronously,
// bypassing the limiter. It is used for the initial load.
func (s *ReloadService) ReloadNow(ctx context.Context, source string) (recommend.SnapshotInfo, error) {
	start := time.Now()

	info, err := s.breaker.Execute(func() (recommend.SnapshotInfo, error) {
		buildCtx, cancel := context.WithTimeout(ctx, s.cfg.BuildTimeout)
		defer cancel()
		return s.engine.Rebuild(buildCtx, s.source(s.cfg.Path))
	})
	s.setStamp()
	s.recordOutcome(source, err)

	if err != nil {
		// The engine logs build failures; only breaker rejections are ours.
		ev := s.logger.Debug()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			ev = s.logger.Warn()
		}
		ev.Err(err).Str("source", source).Dur("duration", time.Since(start)).Msg("dataset reload failed")
		return recommend.SnapshotInfo{}, fmt.Errorf("reload %s: %w", s.cfg.Path, err)
	}

	s.logger.Info().
		Str("source", source).
		Uint64("version", info.Version).
		Int("items", info.Items).
		Dur("duration", time.Since(start)).
		Msg("dataset reloaded")
	return info, nil
}

func (s *ReloadService) recordOutcome(source string, err error) {
	now := time.Now()
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		metrics.RecordReloadRequest(source, "rejected")
		s.count(func(st *ReloadStats) { st.Rejected++ })
		return
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).
			Set(float64(s.breaker.Counts().ConsecutiveFailures))
		metrics.RecordReloadRequest(source, "failed")
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)
		metrics.RecordReloadRequest(source, "succeeded")
	}

	s.count(func(st *ReloadStats) {
		st.Reloads++
		st.LastReload = now
		st.LastSource = source
		st.LastError = ""
		if err != nil {
			st.Failures++
			st.LastError = err.Error()
		}
	})
}

// Serve implements suture.Service.
func (s *ReloadService) Serve(ctx context.Context) error {
	events, watchErrs, closeWatcher := s.startWatcher()
	defer closeWatcher()

	var pollC <-chan time.Time
	if s.cfg.PollInterval > 0 {
		ticker := time.NewTicker(s.cfg.PollInterval)
		defer ticker.Stop()
		pollC = ticker.C
	}

	var (
		debounce  *time.Timer
		debounceC <-chan time.Time
		pending   string
	)
	schedule := func(source string) {
		pending = source
		if debounce == nil {
			debounce = time.NewTimer(s.cfg.Debounce)
		} else {
			debounce.Reset(s.cfg.Debounce)
		}
		debounceC = debounce.C
	}
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	s.logger.Info().
		Bool("watch", events != nil).
		Dur("poll_interval", s.cfg.PollInterval).
		Msg("reload service running")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if s.relevant(ev) {
				schedule(SourceWatch)
			}

		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			s.logger.Warn().Err(err).Msg("file watcher error")

		case <-pollC:
			if s.changed() {
				schedule(SourcePoll)
			}

		case <-debounceC:
			debounceC = nil
			if err := s.limiter.Wait(ctx); err != nil {
				return ctx.Err()
			}
			_, _ = s.ReloadNow(ctx, pending)

		case source := <-s.triggers:
			_, _ = s.ReloadNow(ctx, source)
		}
	}
}

// startWatcher watches the dataset's directory. Watch failures are logged
// and leave the service on polling alone.
func (s *ReloadService) startWatcher() (<-chan fsnotify.Event, <-chan error, func()) {
	noop := func() {}
	if !s.cfg.Watch {
		return nil, nil, noop
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn().Err(err).Msg("file watcher unavailable, polling only")
		return nil, nil, noop
	}
	if err := watcher.Add(filepath.Dir(s.cfg.Path)); err != nil {
		_ = watcher.Close()
		s.logger.Warn().Err(err).Msg("cannot watch dataset directory, polling only")
		return nil, nil, noop
	}

	s.count(func(st *ReloadStats) { st.Watching = true })
	return watcher.Events, watcher.Errors, func() {
		_ = watcher.Close()
		s.count(func(st *ReloadStats) { st.Watching = false })
	}
}

// relevant reports whether ev may have changed the dataset contents.
func (s *ReloadService) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(s.cfg.Path) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

// changed compares the file against the last seen stamp and records the
// new one.
func (s *ReloadService) changed() bool {
	current, err := stat(s.cfg.Path)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if current == s.lastStamp {
		return false
	}
	s.lastStamp = current
	return true
}

func (s *ReloadService) setStamp() {
	current, err := stat(s.cfg.Path)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.lastStamp = current
	s.mu.Unlock()
}

func stat(path string) (fileStamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, err
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size()}, nil
}

func (s *ReloadService) count(fn func(*ReloadStats)) {
	s.mu.Lock()
	fn(&s.stats)
	s.mu.Unlock()
}

// Stats returns a copy of the reload counters.
func (s *ReloadService) Stats() ReloadStats {
	s.mu.Lock()
	st := s.stats
	s.mu.Unlock()
	st.BreakerState = s.breaker.State().String()
	return st
}

// String implements fmt.Stringer for supervisor logs.
func (s *ReloadService) String() string {
	return "reload-service"
}
