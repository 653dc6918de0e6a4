// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"time"
)

// MaxCastSize is the number of cast columns carried per movie.
const MaxCastSize = 4

// Movie is one catalog entry. Movies are immutable once loaded and owned by
// the snapshot they were built into.
type Movie struct {
	// Title is the lookup key. Matching is exact and case-sensitive.
	Title string `json:"title"`

	// Year is the release year.
	Year int `json:"year"`

	// Director is the credited director.
	Director string `json:"director"`

	// Cast holds up to MaxCastSize actor names in billing order.
	// Entries may repeat or be empty.
	Cast []string `json:"cast"`

	// Genre is the comma-joined genre list, kept unsplit for profiling.
	Genre string `json:"genre"`

	// Display-only attributes. They never contribute to the profile.
	Certificate string  `json:"certificate,omitempty"`
	Runtime     string  `json:"runtime,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	MetaScore   float64 `json:"meta_score,omitempty"`
	Votes       int64   `json:"votes,omitempty"`
	Gross       float64 `json:"gross,omitempty"`
	Overview    string  `json:"overview,omitempty"`
	PosterURL   string  `json:"poster_url,omitempty"`
}

// LeadActor returns the top-billed cast member, or "" when there is none.
func (m *Movie) LeadActor() string {
	if len(m.Cast) == 0 {
		return ""
	}
	return m.Cast[0]
}

// Recommendation is one ranked neighbor of a queried movie.
type Recommendation struct {
	Title     string  `json:"title"`
	Year      int     `json:"year"`
	Director  string  `json:"director"`
	LeadActor string  `json:"lead_actor"`
	Score     float64 `json:"score"`

	// Position is the neighbor's index in the snapshot corpus.
	Position int `json:"position"`
}

// Result is the outcome of a single title query against one snapshot.
// Items is never nil so callers can range over it unconditionally.
type Result struct {
	Query           string           `json:"query"`
	Found           bool             `json:"found"`
	Items           []Recommendation `json:"items"`
	SnapshotVersion uint64           `json:"snapshot_version"`
}

// Request is an engine-level query.
type Request struct {
	// Title is the exact title to look up.
	Title string `json:"title"`

	// K is the number of neighbors wanted. Zero means the configured default;
	// values above the configured maximum are clamped.
	K int `json:"k"`

	// RequestID correlates logs. Generated when empty.
	RequestID string `json:"request_id,omitempty"`
}

// Response wraps a Result with serving metadata.
type Response struct {
	Result
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RequestID string    `json:"request_id"`
	K         int       `json:"k"`
	LatencyMS int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	BuiltAt   time.Time `json:"built_at"`
	Timestamp time.Time `json:"timestamp"`
}

// Catalog is a cleaned, schema-complete batch of movies ready for indexing.
type Catalog struct {
	// Movies in source order. The order becomes the corpus order.
	Movies []Movie

	// Origin identifies where the catalog came from (usually a file path).
	Origin string

	// LoadedAt is when the source was read.
	LoadedAt time.Time

	// RowsRead and RowsDropped describe the cleaning pass.
	RowsRead    int
	RowsDropped int
}

// Source produces catalogs. Implementations validate the schema before
// returning, so a nil error guarantees every required column was present.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*Catalog, error)

// Load implements Source.
func (f SourceFunc) Load(ctx context.Context) (*Catalog, error) {
	return f(ctx)
}

// SnapshotInfo summarizes an installed snapshot.
type SnapshotInfo struct {
	Version        uint64    `json:"version"`
	Items          int       `json:"items"`
	VocabularySize int       `json:"vocabulary_size"`
	Origin         string    `json:"origin,omitempty"`
	RowsRead       int       `json:"rows_read"`
	RowsDropped    int       `json:"rows_dropped"`
	BuiltAt        time.Time `json:"built_at"`
	BuildMS        int64     `json:"build_ms"`
}

// Stats reports engine counters.
type Stats struct {
	Requests     int64         `json:"requests"`
	Misses       int64         `json:"misses"`
	CacheHits    int64         `json:"cache_hits"`
	CacheMisses  int64         `json:"cache_misses"`
	Builds       int64         `json:"builds"`
	BuildErrors  int64         `json:"build_errors"`
	LastBuildErr string        `json:"last_build_error,omitempty"`
	Snapshot     *SnapshotInfo `json:"snapshot,omitempty"`
}
