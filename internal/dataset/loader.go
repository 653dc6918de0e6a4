// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Table names inside the in-memory database.
const (
	tableRaw     = "movies_raw"
	tableStaging = "movies_staging"
	tableMovies  = "movies"
)

// Config tunes the embedded DuckDB instance.
type Config struct {
	// Threads is the DuckDB worker count. Zero means runtime.NumCPU.
	Threads int `koanf:"threads" validate:"min=0,max=256"`

	// MaxMemory caps DuckDB memory, e.g. "1GB".
	MaxMemory string `koanf:"max_memory" validate:"required"`

	// QueryTimeout bounds queries whose context carries no deadline.
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"min=0"`

	// AnalyticsCacheTTL is how long analytics results are reused.
	AnalyticsCacheTTL time.Duration `koanf:"analytics_cache_ttl" validate:"min=0"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxMemory:         "1GB",
		QueryTimeout:      30 * time.Second,
		AnalyticsCacheTTL: 10 * time.Minute,
	}
}

// Dataset is the cleaned result of one load.
type Dataset struct {
	Path        string
	Columns     []string
	Movies      []recommend.Movie
	RowsRead    int
	RowsKept    int
	RowsDropped int
	LoadedAt    time.Time
	Duration    time.Duration
}

// Catalog converts the dataset into an indexable catalog.
func (d *Dataset) Catalog() *recommend.Catalog {
	return &recommend.Catalog{
		Movies:      d.Movies,
		Origin:      d.Path,
		LoadedAt:    d.LoadedAt,
		RowsRead:    d.RowsRead,
		RowsDropped: d.RowsDropped,
	}
}

// Loader owns an in-memory DuckDB database holding the most recently loaded
// catalog. Loads are serialized; analytics queries run concurrently with
// them and always see a complete table.
type Loader struct {
	db     *sql.DB
	cfg    Config
	logger zerolog.Logger

	loadMu     sync.Mutex
	generation atomic.Uint64

	results *cache.Cache
}

// Open starts an in-memory DuckDB instance.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg Config, logger zerolog.Logger) (*Loader, error) {
	if cfg.MaxMemory == "" {
		cfg.MaxMemory = DefaultConfig().MaxMemory
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultConfig().QueryTimeout
	}
	if cfg.AnalyticsCacheTTL <= 0 {
		cfg.AnalyticsCacheTTL = DefaultConfig().AnalyticsCacheTTL
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	// Row order is corpus order, so insertion order must be preserved.
	// Extension autoloading stays off; read_csv is built in.
	connStr := fmt.Sprintf(":memory:?threads=%d&max_memory=%s&preserve_insertion_order=true&autoinstall_known_extensions=false&autoload_known_extensions=false",
		threads, cfg.MaxMemory)

	db, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.QueryTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Loader{
		db:      db,
		cfg:     cfg,
		logger:  logger.With().Str("component", "dataset").Logger(),
		results: cache.New(cfg.AnalyticsCacheTTL, time.Minute),
	}, nil
}

// Close releases the database and stops the analytics cache sweep.
func (l *Loader) Close() error {
	l.results.Close()
	if err := l.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Ping checks that the database is usable.
func (l *Loader) Ping(ctx context.Context) error {
	ctx, cancel := l.ensureContext(ctx)
	defer cancel()
	return l.db.PingContext(ctx)
}

// Generation counts successful loads. Zero means nothing is loaded yet.
func (l *Loader) Generation() uint64 {
	return l.generation.Load()
}

// AnalyticsCacheStats reports the analytics result cache counters.
func (l *Loader) AnalyticsCacheStats() cache.Stats {
	return l.results.GetStats()
}

// Source returns a recommend.Source that loads path on every call.
func (l *Loader) Source(path string) recommend.Source {
	return recommend.SourceFunc(func(ctx context.Context) (*recommend.Catalog, error) {
		ds, err := l.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		return ds.Catalog(), nil
	})
}

// Load reads, validates and cleans the CSV file at path. On success the
// analytics table is replaced and the result cache invalidated. On failure
// the previously loaded table stays in place.
func (l *Loader) Load(ctx context.Context, path string) (*Dataset, error) {
	l.loadMu.Lock()
	defer l.loadMu.Unlock()

	start := time.Now()
	ctx, cancel := l.ensureContext(ctx)
	defer cancel()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("dataset file: %w", err)
	}

	columns, err := l.readColumns(ctx, path)
	if err != nil {
		return nil, err
	}
	if missing := missingColumns(columns); len(missing) > 0 {
		return nil, &SchemaError{Path: path, Missing: missing}
	}

	defer l.dropStaging()

	rawQuery := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv(%s, header=true, all_varchar=true)",
		quoteIdent(tableRaw), quoteLiteral(path))
	if err := l.exec(ctx, "stage", tableRaw, rawQuery); err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	if err := l.exec(ctx, "clean", tableStaging, buildCleanQuery(tableStaging, tableRaw, columns)); err != nil {
		return nil, fmt.Errorf("failed to clean dataset: %w", err)
	}

	rowsRead, err := l.count(ctx, tableRaw)
	if err != nil {
		return nil, err
	}
	movies, err := l.scanMovies(ctx, tableStaging)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyDataset)
	}

	swap := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * FROM %s ORDER BY row_id",
		quoteIdent(tableMovies), quoteIdent(tableStaging))
	if err := l.exec(ctx, "swap", tableMovies, swap); err != nil {
		return nil, fmt.Errorf("failed to install dataset: %w", err)
	}

	l.generation.Add(1)
	l.results.Clear()

	ds := &Dataset{
		Path:        path,
		Columns:     columns,
		Movies:      movies,
		RowsRead:    rowsRead,
		RowsKept:    len(movies),
		RowsDropped: rowsRead - len(movies),
		LoadedAt:    time.Now(),
		Duration:    time.Since(start),
	}
	metrics.RecordDatasetLoad(ds.RowsRead, ds.RowsDropped)

	l.logger.Info().
		Str("path", path).
		Int("rows_read", ds.RowsRead).
		Int("rows_kept", ds.RowsKept).
		Int("rows_dropped", ds.RowsDropped).
		Dur("duration", ds.Duration).
		Msg("dataset loaded")

	return ds, nil
}

// readColumns returns the header of the CSV file without reading its rows.
func (l *Loader) readColumns(ctx context.Context, path string) ([]string, error) {
	start := time.Now()
	query := fmt.Sprintf("SELECT * FROM read_csv(%s, header=true, all_varchar=true) LIMIT 0", quoteLiteral(path))

	rows, err := l.db.QueryContext(ctx, query)
	metrics.RecordDBQuery("describe", "read_csv", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header %s: %w", path, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset columns: %w", err)
	}
	return columns, nil
}

func (l *Loader) scanMovies(ctx context.Context, table string) ([]recommend.Movie, error) {
	query := fmt.Sprintf(`SELECT title, year, director, star1, star2, star3, star4, genre,
		certificate, runtime, COALESCE(rating, 0), COALESCE(meta_score, 0), votes,
		COALESCE(gross, 0), overview, poster_url
	FROM %s ORDER BY row_id`, quoteIdent(table))

	start := time.Now()
	movies, err := queryAndScan(ctx, l.db, query, nil, scanMovie)
	metrics.RecordDBQuery("select", table, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to scan movies: %w", err)
	}
	return movies, nil
}

func scanMovie(rows *sql.Rows) (recommend.Movie, error) {
	var m recommend.Movie
	cast := make([]string, recommend.MaxCastSize)
	err := rows.Scan(
		&m.Title, &m.Year, &m.Director,
		&cast[0], &cast[1], &cast[2], &cast[3],
		&m.Genre, &m.Certificate, &m.Runtime,
		&m.Rating, &m.MetaScore, &m.Votes, &m.Gross,
		&m.Overview, &m.PosterURL,
	)
	if err != nil {
		return m, fmt.Errorf("failed to scan movie row: %w", err)
	}
	m.Cast = cast
	return m, nil
}

func (l *Loader) count(ctx context.Context, table string) (int, error) {
	start := time.Now()
	var n int
	err := l.db.QueryRowContext(ctx, "SELECT count(*) FROM "+quoteIdent(table)).Scan(&n)
	metrics.RecordDBQuery("count", table, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

func (l *Loader) exec(ctx context.Context, operation, table, query string) error {
	start := time.Now()
	_, err := l.db.ExecContext(ctx, query)
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
	return err
}

// dropStaging removes intermediate tables. It runs on its own context so a
// canceled load still cleans up.
func (l *Loader) dropStaging() {
	ctx, cancel := context.WithTimeout(context.Background(), l.cfg.QueryTimeout)
	defer cancel()
	for _, t := range []string{tableStaging, tableRaw} {
		if _, err := l.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(t)); err != nil {
			l.logger.Warn().Err(err).Str("table", t).Msg("failed to drop staging table")
		}
	}
}

// ensureContext applies the configured timeout when ctx has no deadline.
func (l *Loader) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, l.cfg.QueryTimeout)
}

// queryAndScan runs query and collects every row through scan.
func queryAndScan[T any](ctx context.Context, db *sql.DB, query string, args []any, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

