// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

// Metric selects the score an analytics view summarizes.
type Metric string

// Supported metrics.
const (
	MetricIMDBRating Metric = "imdb_rating"
	MetricMetaScore  Metric = "meta_score"
)

// ParseMetric validates s. An empty s yields def.
func ParseMetric(s string, def Metric) (Metric, error) {
	if s == "" {
		return def, nil
	}
	switch m := Metric(s); m {
	case MetricIMDBRating, MetricMetaScore:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
}

// column is the cleaned column backing m.
func (m Metric) column() string {
	if m == MetricMetaScore {
		return "meta_score"
	}
	return "rating"
}

// GenreStat is the distribution of a metric within one genre.
type GenreStat struct {
	Genre  string  `json:"genre"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// GenreQuery filters GenreStats.
type GenreQuery struct {
	Metric Metric   `json:"metric"`
	Genres []string `json:"genres,omitempty"`
	Limit  int      `json:"limit,omitempty"`
}

// GrossPoint pairs a movie's gross with its score.
type GrossPoint struct {
	Title string  `json:"title"`
	Gross float64 `json:"gross"`
	Value float64 `json:"value"`
}

// Trend is an ordinary least squares fit of score on gross.
type Trend struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r2"`
}

// GrossVsRating holds the scatter data with its trend line. Trend is nil
// when fewer than two distinct points exist.
type GrossVsRating struct {
	Metric Metric       `json:"metric"`
	Points []GrossPoint `json:"points"`
	Trend  *Trend       `json:"trend,omitempty"`
}

// YearValue is the mean score of one release year.
type YearValue struct {
	Year  int     `json:"year"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// GenreGross is the mean gross of one genre.
type GenreGross struct {
	Genre     string  `json:"genre"`
	MeanGross float64 `json:"mean_gross"`
	Count     int     `json:"count"`
}

// explodedGenres expands the comma-joined genre column into one row per
// genre, carrying value along.
const explodedGenres = `WITH split AS (
	SELECT unnest(string_split(genre, ',')) AS g, %s AS value FROM movies
),
exploded AS (
	SELECT trim(g) AS genre, value FROM split WHERE trim(g) <> '' AND value IS NOT NULL
)
`

// GenreStats summarizes q.Metric per genre, most frequent genre first.
// Genres restricts the output when non-empty; Limit caps it when positive.
//
//nolint:gocritic // hugeParam: q passed by value for cache keying
func (l *Loader) GenreStats(ctx context.Context, q GenreQuery) ([]GenreStat, error) {
	if q.Metric == "" {
		q.Metric = MetricMetaScore
	}
	return cached(l, "genre_stats", q, func() ([]GenreStat, error) {
		var b strings.Builder
		fmt.Fprintf(&b, explodedGenres, q.Metric.column())
		b.WriteString(`SELECT genre, count(*), min(value), quantile_cont(value, 0.25), median(value),
	quantile_cont(value, 0.75), max(value), avg(value)
FROM exploded`)

		args := make([]any, 0, len(q.Genres)+1)
		if len(q.Genres) > 0 {
			placeholders := make([]string, len(q.Genres))
			for i, g := range q.Genres {
				placeholders[i] = "?"
				args = append(args, g)
			}
			fmt.Fprintf(&b, "\nWHERE genre IN (%s)", strings.Join(placeholders, ", "))
		}
		b.WriteString("\nGROUP BY genre\nORDER BY count(*) DESC, genre")
		if q.Limit > 0 {
			b.WriteString("\nLIMIT ?")
			args = append(args, q.Limit)
		}

		return analyticsQuery(ctx, l, "genre_stats", b.String(), args, func(rows *sql.Rows) (GenreStat, error) {
			var s GenreStat
			err := rows.Scan(&s.Genre, &s.Count, &s.Min, &s.Q1, &s.Median, &s.Q3, &s.Max, &s.Mean)
			return s, err
		})
	})
}

// GrossVsRating returns every movie's gross against metric in corpus order.
func (l *Loader) GrossVsRating(ctx context.Context, metric Metric) (*GrossVsRating, error) {
	return cached(l, "gross_vs_rating", metric, func() (*GrossVsRating, error) {
		col := metric.column()
		query := fmt.Sprintf(`SELECT title, gross, %[1]s FROM movies
WHERE gross IS NOT NULL AND %[1]s IS NOT NULL
ORDER BY row_id`, col)

		points, err := analyticsQuery(ctx, l, "gross_vs_rating", query, nil, func(rows *sql.Rows) (GrossPoint, error) {
			var p GrossPoint
			err := rows.Scan(&p.Title, &p.Gross, &p.Value)
			return p, err
		})
		if err != nil {
			return nil, err
		}

		trend, err := l.trend(ctx, col)
		if err != nil {
			return nil, err
		}
		return &GrossVsRating{Metric: metric, Points: points, Trend: trend}, nil
	})
}

func (l *Loader) trend(ctx context.Context, col string) (*Trend, error) {
	ctx, cancel := l.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`SELECT regr_slope(%[1]s, gross), regr_intercept(%[1]s, gross), regr_r2(%[1]s, gross)
FROM movies WHERE gross IS NOT NULL AND %[1]s IS NOT NULL`, col)

	start := time.Now()
	var slope, intercept, r2 sql.NullFloat64
	err := l.db.QueryRowContext(ctx, query).Scan(&slope, &intercept, &r2)
	metrics.RecordDBQuery("trend", tableMovies, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to fit trend: %w", err)
	}
	if !slope.Valid || !intercept.Valid {
		return nil, nil
	}
	return &Trend{Slope: slope.Float64, Intercept: intercept.Float64, R2: r2.Float64}, nil
}

// RatingByYear returns the mean of metric per release year, oldest first.
func (l *Loader) RatingByYear(ctx context.Context, metric Metric) ([]YearValue, error) {
	return cached(l, "rating_by_year", metric, func() ([]YearValue, error) {
		query := fmt.Sprintf(`SELECT year, avg(%[1]s), count(*) FROM movies
WHERE %[1]s IS NOT NULL
GROUP BY year
ORDER BY year`, metric.column())

		return analyticsQuery(ctx, l, "rating_by_year", query, nil, func(rows *sql.Rows) (YearValue, error) {
			var y YearValue
			err := rows.Scan(&y.Year, &y.Mean, &y.Count)
			return y, err
		})
	})
}

// GrossByGenre returns the mean gross per genre, highest first.
func (l *Loader) GrossByGenre(ctx context.Context) ([]GenreGross, error) {
	return cached(l, "gross_by_genre", struct{}{}, func() ([]GenreGross, error) {
		query := fmt.Sprintf(explodedGenres, "gross") + `SELECT genre, avg(value) AS mean_gross, count(*)
FROM exploded
GROUP BY genre
ORDER BY mean_gross DESC, genre`

		return analyticsQuery(ctx, l, "gross_by_genre", query, nil, func(rows *sql.Rows) (GenreGross, error) {
			var g GenreGross
			err := rows.Scan(&g.Genre, &g.MeanGross, &g.Count)
			return g, err
		})
	})
}

// analyticsQuery runs an analytics query against the installed table.
func analyticsQuery[T any](ctx context.Context, l *Loader, operation, query string, args []any, scan func(*sql.Rows) (T, error)) ([]T, error) {
	ctx, cancel := l.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	results, err := queryAndScan(ctx, l.db, query, args, scan)
	metrics.RecordDBQuery(operation, tableMovies, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%s query failed: %w", operation, err)
	}
	return results, nil
}

// cached serves method(params) from the result cache for the current load
// generation, computing it on a miss. Cached values are shared and must not
// be modified.
func cached[T any](l *Loader, method string, params any, compute func() (T, error)) (T, error) {
	var zero T

	gen := l.generation.Load()
	if gen == 0 {
		return zero, ErrNotLoaded
	}

	key := cache.GenerateKey(method, struct {
		Generation uint64 `json:"generation"`
		Params     any    `json:"params"`
	}{gen, params})

	if v, ok := l.results.Get(key); ok {
		if typed, ok := v.(T); ok {
			metrics.RecordCacheLookup(analyticsCacheType, true)
			return typed, nil
		}
	}
	metrics.RecordCacheLookup(analyticsCacheType, false)

	v, err := compute()
	if err != nil {
		return zero, err
	}
	l.results.Set(key, v)
	metrics.SetCacheSize(analyticsCacheType, l.results.GetStats().Size)
	return v, nil
}

const analyticsCacheType = "analytics"
