// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"math"
	"slices"
	"testing"
)

const epsilon = 1e-12

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}

func TestFitVectorSpace_Weights(t *testing.T) {
	t.Parallel()

	vs := FitVectorSpace([]string{"Drama Nolan", "Drama Yates"})

	wantTerms := []string{"drama", "nolan", "yates"}
	if got := vs.Vocabulary(); !slices.Equal(got, wantTerms) {
		t.Fatalf("Vocabulary() = %q, want %q", got, wantTerms)
	}

	// drama appears in both documents, nolan and yates in one each.
	idfShared := math.Log(3.0/3.0) + 1
	idfUnique := math.Log(3.0/2.0) + 1

	col, ok := vs.Column("drama")
	if !ok || !approxEqual(vs.IDF(col), idfShared) {
		t.Errorf("idf(drama) = %v, want %v", vs.IDF(col), idfShared)
	}
	col, ok = vs.Column("nolan")
	if !ok || !approxEqual(vs.IDF(col), idfUnique) {
		t.Errorf("idf(nolan) = %v, want %v", vs.IDF(col), idfUnique)
	}

	norm := math.Sqrt(idfShared*idfShared + idfUnique*idfUnique)
	row := vs.Row(0)
	if !slices.Equal(row.Indices, []int{0, 1}) {
		t.Fatalf("row 0 indices = %v, want [0 1]", row.Indices)
	}
	if !approxEqual(row.Values[0], idfShared/norm) || !approxEqual(row.Values[1], idfUnique/norm) {
		t.Errorf("row 0 values = %v, want [%v %v]", row.Values, idfShared/norm, idfUnique/norm)
	}
	if !approxEqual(vs.Norm(0), 1) {
		t.Errorf("Norm(0) = %v, want 1", vs.Norm(0))
	}
}

func TestFitVectorSpace_RawCounts(t *testing.T) {
	t.Parallel()

	// "drama" twice in doc 0 doubles its weight before normalization.
	vs := FitVectorSpace([]string{"drama drama nolan", "comedy"})

	dramaCol, _ := vs.Column("drama")
	nolanCol, _ := vs.Column("nolan")
	row := vs.Row(0)

	var drama, nolan float64
	for k, c := range row.Indices {
		switch c {
		case dramaCol:
			drama = row.Values[k]
		case nolanCol:
			nolan = row.Values[k]
		}
	}
	// Both terms have df=1 so equal idf; the ratio is the count ratio.
	if !approxEqual(drama/nolan, 2) {
		t.Errorf("drama/nolan weight ratio = %v, want 2", drama/nolan)
	}
}

func TestFitVectorSpace_Degenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		corpus    []string
		wantVocab int
	}{
		{"empty corpus", nil, 0},
		{"all empty profiles", []string{"  ", "  "}, 0},
		{"only stop words", []string{"the of and", "de la"}, 1}, // "la" survives
		{"identical profiles", []string{"drama", "drama", "drama"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			vs := FitVectorSpace(tt.corpus)
			if vs.Len() != len(tt.corpus) {
				t.Errorf("Len() = %d, want %d", vs.Len(), len(tt.corpus))
			}
			if vs.VocabularySize() != tt.wantVocab {
				t.Errorf("VocabularySize() = %d, want %d", vs.VocabularySize(), tt.wantVocab)
			}
			for i := 0; i < vs.Len(); i++ {
				n := vs.Norm(i)
				if n != 0 && !approxEqual(n, 1) {
					t.Errorf("Norm(%d) = %v, want 0 or 1", i, n)
				}
			}
		})
	}
}

func TestFitVectorSpace_Deterministic(t *testing.T) {
	t.Parallel()

	corpus := []string{
		"Crime, Drama Michael Mann Al Pacino Robert De Niro",
		"Action, Sci-Fi James Cameron Arnold Schwarzenegger Linda Hamilton",
		"Crime, Drama Martin Scorsese Robert De Niro Ray Liotta",
	}

	a := FitVectorSpace(corpus)
	b := FitVectorSpace(corpus)

	if !slices.Equal(a.Vocabulary(), b.Vocabulary()) {
		t.Fatal("vocabularies differ between fits")
	}
	for i := range corpus {
		ra, rb := a.Row(i), b.Row(i)
		if !slices.Equal(ra.Indices, rb.Indices) || !slices.Equal(ra.Values, rb.Values) {
			t.Errorf("row %d differs between fits", i)
		}
	}
}

func TestDot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b SparseVector
		want float64
	}{
		{
			name: "disjoint",
			a:    SparseVector{Indices: []int{0, 2}, Values: []float64{1, 1}},
			b:    SparseVector{Indices: []int{1, 3}, Values: []float64{1, 1}},
			want: 0,
		},
		{
			name: "partial overlap",
			a:    SparseVector{Indices: []int{0, 2, 5}, Values: []float64{1, 2, 3}},
			b:    SparseVector{Indices: []int{2, 5, 7}, Values: []float64{4, 5, 6}},
			want: 2*4 + 3*5,
		},
		{
			name: "empty",
			a:    SparseVector{},
			b:    SparseVector{Indices: []int{1}, Values: []float64{1}},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Dot(tt.a, tt.b); got != tt.want {
				t.Errorf("Dot() = %v, want %v", got, tt.want)
			}
			if got := Dot(tt.b, tt.a); got != tt.want {
				t.Errorf("Dot() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}
