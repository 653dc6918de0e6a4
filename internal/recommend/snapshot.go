// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"cmp"
	"slices"
	"sort"
	"time"
)

// Snapshot is an immutable, fully built index over one catalog: the movies,
// their profiles, the fitted vector space, the similarity matrix and the
// title lookup table. A Snapshot is safe for concurrent use by any number of
// readers; nothing in it changes after NewSnapshot returns.
type Snapshot struct {
	version uint64
	movies  []Movie
	corpus  []string
	space   *VectorSpace
	matrix  *SimilarityMatrix

	// index maps a title to the position of its first occurrence.
	index map[string]int

	origin      string
	rowsRead    int
	rowsDropped int
	builtAt     time.Time
	buildTime   time.Duration
}

// NewSnapshot builds every stage of the pipeline over cat and stamps the
// result with version. workers bounds the similarity build parallelism.
// The catalog's movie slice is copied; the caller may reuse it.
func NewSnapshot(cat *Catalog, version uint64, workers int) *Snapshot {
	start := time.Now()

	movies := slices.Clone(cat.Movies)
	corpus := BuildCorpus(movies)
	space := FitVectorSpace(corpus)
	matrix := BuildSimilarity(space, workers)

	index := make(map[string]int, len(movies))
	for i := range movies {
		if _, dup := index[movies[i].Title]; !dup {
			index[movies[i].Title] = i
		}
	}

	return &Snapshot{
		version:     version,
		movies:      movies,
		corpus:      corpus,
		space:       space,
		matrix:      matrix,
		index:       index,
		origin:      cat.Origin,
		rowsRead:    cat.RowsRead,
		rowsDropped: cat.RowsDropped,
		builtAt:     time.Now(),
		buildTime:   time.Since(start),
	}
}

// Version returns the snapshot's monotonically increasing version.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// Len returns the number of indexed movies.
func (s *Snapshot) Len() int {
	return len(s.movies)
}

// BuiltAt returns when the snapshot finished building.
func (s *Snapshot) BuiltAt() time.Time {
	return s.builtAt
}

// Lookup returns the corpus position of the first movie titled exactly title.
func (s *Snapshot) Lookup(title string) (int, bool) {
	idx, ok := s.index[title]
	return idx, ok
}

// Movie returns the movie at corpus position i.
func (s *Snapshot) Movie(i int) *Movie {
	return &s.movies[i]
}

// Movies returns all movies in corpus order. The slice must not be modified.
func (s *Snapshot) Movies() []Movie {
	return s.movies
}

// Profile returns the text profile of the movie at position i.
func (s *Snapshot) Profile(i int) string {
	return s.corpus[i]
}

// VectorSpace returns the fitted TF-IDF model.
func (s *Snapshot) VectorSpace() *VectorSpace {
	return s.space
}

// Similarity returns the pairwise similarity matrix.
func (s *Snapshot) Similarity() *SimilarityMatrix {
	return s.matrix
}

// Titles returns the distinct titles in lexicographic order.
func (s *Snapshot) Titles() []string {
	titles := make([]string, 0, len(s.index))
	for title := range s.index {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

// Page returns up to limit movies starting at offset, in corpus order.
func (s *Snapshot) Page(offset, limit int) []Movie {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.movies) || limit < 1 {
		return []Movie{}
	}
	end := min(offset+limit, len(s.movies))
	return s.movies[offset:end]
}

// Info summarizes the snapshot.
func (s *Snapshot) Info() SnapshotInfo {
	return SnapshotInfo{
		Version:        s.version,
		Items:          len(s.movies),
		VocabularySize: s.space.VocabularySize(),
		Origin:         s.origin,
		RowsRead:       s.rowsRead,
		RowsDropped:    s.rowsDropped,
		BuiltAt:        s.builtAt,
		BuildMS:        s.buildTime.Milliseconds(),
	}
}

// Recommend returns the topN movies most similar to the movie titled exactly
// title, best first. The queried movie is never part of its own result.
//
// Neighbors are ordered by descending score with a stable sort, so equal
// scores keep corpus order. topN below 1 means DefaultTopN. A title that is
// not in the snapshot yields an empty result with Found unset.
func (s *Snapshot) Recommend(title string, topN int) Result {
	if topN < 1 {
		topN = DefaultTopN
	}

	res := Result{
		Query:           title,
		Items:           []Recommendation{},
		SnapshotVersion: s.version,
	}

	idx, ok := s.index[title]
	if !ok {
		return res
	}
	res.Found = true

	row := s.matrix.Row(idx)
	candidates := make([]int, 0, len(row)-1)
	for j := range row {
		if j != idx {
			candidates = append(candidates, j)
		}
	}

	slices.SortStableFunc(candidates, func(a, b int) int {
		return cmp.Compare(row[b], row[a])
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}

	res.Items = make([]Recommendation, len(candidates))
	for k, j := range candidates {
		m := &s.movies[j]
		res.Items[k] = Recommendation{
			Title:     m.Title,
			Year:      m.Year,
			Director:  m.Director,
			LeadActor: m.LeadActor(),
			Score:     row[j],
			Position:  j,
		}
	}
	return res
}
