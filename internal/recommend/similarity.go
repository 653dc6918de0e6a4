// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"golang.org/x/sync/errgroup"
)

// SimilarityMatrix is a dense, symmetric N×N cosine similarity matrix stored
// row-major. It is read-only after BuildSimilarity returns.
type SimilarityMatrix struct {
	n      int
	values []float64
}

// Size returns N.
func (m *SimilarityMatrix) Size() int {
	return m.n
}

// At returns the similarity between documents i and j.
func (m *SimilarityMatrix) At(i, j int) float64 {
	return m.values[i*m.n+j]
}

// Row returns row i as a view into the matrix. The slice must not be modified.
func (m *SimilarityMatrix) Row(i int) []float64 {
	return m.values[i*m.n : (i+1)*m.n]
}

// Cosine returns the cosine similarity of two vectors with the given norms.
// It is 0 when either norm is 0 and is clamped to [0, 1], which absorbs the
// rounding that can push identical normalized vectors a hair above 1.
func Cosine(a, b SparseVector, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	c := Dot(a, b) / (normA * normB)
	switch {
	case c > 1:
		return 1
	case c < 0:
		return 0
	default:
		return c
	}
}

// BuildSimilarity computes pairwise cosine similarity for every document in vs.
//
// Only the upper triangle is computed; each value is written to both [i][j]
// and [j][i]. Row i is handled by exactly one goroutine, and that goroutine is
// the only writer of cells (i, j≥i) and (j≥i, i), so rows can be processed in
// parallel without locks. workers bounds the number of goroutines; values
// below 1 mean one.
//
// The diagonal is 1 for documents with a non-zero vector and 0 otherwise.
func BuildSimilarity(vs *VectorSpace, workers int) *SimilarityMatrix {
	n := vs.Len()
	m := &SimilarityMatrix{
		n:      n,
		values: make([]float64, n*n),
	}
	if n == 0 {
		return m
	}
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		g.Go(func() error {
			m.fillRow(vs, i)
			return nil
		})
	}

	// fillRow cannot fail; Wait only joins.
	_ = g.Wait()
	return m
}

// fillRow computes the upper-triangle part of row i and mirrors it.
func (m *SimilarityMatrix) fillRow(vs *VectorSpace, i int) {
	rowI := vs.Row(i)
	normI := vs.Norm(i)

	if normI > 0 {
		m.values[i*m.n+i] = 1
	}

	for j := i + 1; j < m.n; j++ {
		v := Cosine(rowI, vs.Row(j), normI, vs.Norm(j))
		m.values[i*m.n+j] = v
		m.values[j*m.n+i] = v
	}
}
