// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"math"
	"sort"
)

// SparseVector is a row of the document-term matrix. Indices are strictly
// increasing column numbers; Values holds the matching weights.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of non-zero entries.
func (v SparseVector) Len() int {
	return len(v.Indices)
}

// Norm returns the Euclidean norm.
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Dot returns the inner product of two sparse vectors with sorted indices.
func Dot(a, b SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// VectorSpace is a fitted TF-IDF model: a corpus-global vocabulary plus one
// L2-normalized weight row per document, index-aligned with the corpus it was
// fitted on. It is immutable after FitVectorSpace returns.
type VectorSpace struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
	rows       []SparseVector
	norms      []float64
}

// FitVectorSpace fits a TF-IDF model over corpus.
//
// Term frequency is the raw in-document count. Inverse document frequency is
// smoothed: ln((1+n)/(1+df)) + 1. Columns are assigned in lexicographic term
// order, so two fits over the same corpus are identical.
//
// A corpus with no surviving terms yields an empty vocabulary and all-zero
// rows; fitting never fails.
func FitVectorSpace(corpus []string) *VectorSpace {
	tok := NewTokenizer()
	n := len(corpus)

	counts := make([]map[string]int, n)
	df := make(map[string]int)
	for i, doc := range corpus {
		tf := make(map[string]int)
		for _, term := range tok.Tokens(doc) {
			tf[term]++
		}
		for term := range tf {
			df[term]++
		}
		counts[i] = tf
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocabulary := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for col, term := range terms {
		vocabulary[term] = col
		idf[col] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}

	rows := make([]SparseVector, n)
	norms := make([]float64, n)
	for i, tf := range counts {
		rows[i] = weightRow(tf, vocabulary, idf)
		norms[i] = rows[i].Norm()
	}

	return &VectorSpace{
		vocabulary: vocabulary,
		terms:      terms,
		idf:        idf,
		rows:       rows,
		norms:      norms,
	}
}

// weightRow builds one normalized TF-IDF row from term counts.
func weightRow(tf map[string]int, vocabulary map[string]int, idf []float64) SparseVector {
	if len(tf) == 0 {
		return SparseVector{}
	}

	type entry struct {
		col   int
		count int
	}
	entries := make([]entry, 0, len(tf))
	for term, count := range tf {
		entries = append(entries, entry{col: vocabulary[term], count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].col < entries[j].col
	})

	indices := make([]int, len(entries))
	values := make([]float64, len(entries))
	var sumSq float64
	for k, e := range entries {
		w := float64(e.count) * idf[e.col]
		indices[k] = e.col
		values[k] = w
		sumSq += w * w
	}

	if sumSq > 0 {
		norm := math.Sqrt(sumSq)
		for k := range values {
			values[k] /= norm
		}
	}

	return SparseVector{Indices: indices, Values: values}
}

// Len returns the number of documents.
func (vs *VectorSpace) Len() int {
	return len(vs.rows)
}

// VocabularySize returns the number of distinct terms.
func (vs *VectorSpace) VocabularySize() int {
	return len(vs.terms)
}

// Vocabulary returns the terms in column order. The slice must not be modified.
func (vs *VectorSpace) Vocabulary() []string {
	return vs.terms
}

// Column returns the column of term and whether it is in the vocabulary.
func (vs *VectorSpace) Column(term string) (int, bool) {
	col, ok := vs.vocabulary[term]
	return col, ok
}

// IDF returns the inverse document frequency of column col.
func (vs *VectorSpace) IDF(col int) float64 {
	return vs.idf[col]
}

// Row returns document i's weight vector. The vector must not be modified.
func (vs *VectorSpace) Row(i int) SparseVector {
	return vs.rows[i]
}

// Norm returns the norm of row i: 1 for documents with at least one term,
// 0 otherwise.
func (vs *VectorSpace) Norm(i int) float64 {
	return vs.norms[i]
}
