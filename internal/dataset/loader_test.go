// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

func TestLoad_CleaningRules(t *testing.T) {
	l := setupTestLoader(t)
	path := writeCSV(t, "imdb.csv", sampleCSV)

	ds, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if ds.RowsRead != 8 {
		t.Errorf("RowsRead = %d, want 8", ds.RowsRead)
	}
	if ds.RowsKept != 4 || ds.RowsDropped != 4 {
		t.Errorf("RowsKept/RowsDropped = %d/%d, want 4/4", ds.RowsKept, ds.RowsDropped)
	}
	if ds.Path != path {
		t.Errorf("Path = %q, want %q", ds.Path, path)
	}
	if l.Generation() != 1 {
		t.Errorf("Generation() = %d, want 1", l.Generation())
	}

	var titles []string
	for i := range ds.Movies {
		titles = append(titles, ds.Movies[i].Title)
	}
	want := []string{"The Shawshank Redemption", "The Godfather", "The Dark Knight", "Padded Title"}
	if !slices.Equal(titles, want) {
		t.Errorf("titles = %q, want %q", titles, want)
	}
}

func TestLoad_TypedColumns(t *testing.T) {
	l := setupTestLoader(t)
	path := writeCSV(t, "imdb.csv", sampleCSV)

	ds, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	godfather := ds.Movies[1]
	if godfather.Year != 1972 {
		t.Errorf("Year = %d, want 1972", godfather.Year)
	}
	if godfather.Director != "Francis Ford Coppola" {
		t.Errorf("Director = %q", godfather.Director)
	}
	wantCast := []string{"Marlon Brando", "Al Pacino", "James Caan", "Diane Keaton"}
	if !slices.Equal(godfather.Cast, wantCast) {
		t.Errorf("Cast = %q, want %q", godfather.Cast, wantCast)
	}
	if godfather.Genre != "Crime, Drama" {
		t.Errorf("Genre = %q, want unsplit %q", godfather.Genre, "Crime, Drama")
	}
	if godfather.Gross != 134966411 {
		t.Errorf("Gross = %v, want 134966411", godfather.Gross)
	}
	if godfather.MetaScore != 100 || godfather.Rating != 9.2 {
		t.Errorf("MetaScore/Rating = %v/%v, want 100/9.2", godfather.MetaScore, godfather.Rating)
	}
	if godfather.Votes != 1620367 {
		t.Errorf("Votes = %d, want 1620367", godfather.Votes)
	}
	if godfather.Runtime != "175 min" || godfather.Certificate != "A" {
		t.Errorf("Runtime/Certificate = %q/%q", godfather.Runtime, godfather.Certificate)
	}
	if godfather.PosterURL != "http://p/2.jpg" {
		t.Errorf("PosterURL = %q", godfather.PosterURL)
	}

	padded := ds.Movies[3]
	if padded.Gross != 1000 {
		t.Errorf("dollar-prefixed Gross = %v, want 1000", padded.Gross)
	}
	if padded.Votes != 1234 {
		t.Errorf("comma-grouped Votes = %d, want 1234", padded.Votes)
	}
}

func TestLoad_SchemaError(t *testing.T) {
	l := setupTestLoader(t)
	path := writeCSV(t, "broken.csv",
		"Series_Title,Released_Year,Director,Star1,Star2,Star3\nHeat,1995,Michael Mann,Al Pacino,Robert De Niro,Val Kilmer\n")

	_, err := l.Load(context.Background(), path)
	if err == nil {
		t.Fatal("Load() error = nil, want schema error")
	}

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error %v is not a *SchemaError", err)
	}
	if want := []string{"Star4", "Genre"}; !slices.Equal(schemaErr.Missing, want) {
		t.Errorf("Missing = %q, want %q", schemaErr.Missing, want)
	}
	if !errors.Is(err, ErrSchema) {
		t.Error("errors.Is(err, ErrSchema) = false")
	}
	if !errors.Is(err, recommend.ErrInvalidCatalog) {
		t.Error("errors.Is(err, recommend.ErrInvalidCatalog) = false")
	}
	if l.Generation() != 0 {
		t.Errorf("Generation() = %d after failed load, want 0", l.Generation())
	}
}

func TestLoad_FailureKeepsPreviousTable(t *testing.T) {
	l := setupTestLoader(t)
	ctx := context.Background()

	if _, err := l.Load(ctx, writeCSV(t, "good.csv", sampleCSV)); err != nil {
		t.Fatalf("Load(good) error = %v", err)
	}
	if _, err := l.Load(ctx, writeCSV(t, "bad.csv", "Series_Title\nHeat\n")); !errors.Is(err, ErrSchema) {
		t.Fatalf("Load(bad) error = %v, want ErrSchema", err)
	}

	if l.Generation() != 1 {
		t.Errorf("Generation() = %d, want 1", l.Generation())
	}
	years, err := l.RatingByYear(ctx, MetricIMDBRating)
	if err != nil {
		t.Fatalf("RatingByYear() error = %v", err)
	}
	if len(years) != 4 {
		t.Errorf("RatingByYear() returned %d years, want 4 from the previous load", len(years))
	}
}

func TestLoad_EmptyAfterCleaning(t *testing.T) {
	l := setupTestLoader(t)
	path := writeCSV(t, "empty.csv", fullHeader+
		"http://p/1.jpg,Nothing,2001,U,100 min,Drama,8.0,No score.,,Someone,A,B,C,D,10,\"1,000\"\n")

	_, err := l.Load(context.Background(), path)
	if !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("Load() error = %v, want ErrEmptyDataset", err)
	}
	if errors.Is(err, recommend.ErrInvalidCatalog) {
		t.Error("an empty dataset should not be classified as a schema error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	l := setupTestLoader(t)

	_, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Load() error = %v, want fs.ErrNotExist", err)
	}
}

func TestLoad_RequiredColumnsOnly(t *testing.T) {
	l := setupTestLoader(t)
	path := writeCSV(t, "minimal.csv", `Series_Title,Released_Year,Director,Star1,Star2,Star3,Star4,Genre
Heat,1995,Michael Mann,Al Pacino,Robert De Niro,Val Kilmer,Jon Voight,"Action, Crime, Drama"
Aliens,1986,James Cameron,Sigourney Weaver,Michael Biehn,Carrie Henn,Paul Reiser,"Action, Adventure, Sci-Fi"
`)

	ds, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(ds.Movies) != 2 {
		t.Fatalf("len(Movies) = %d, want 2", len(ds.Movies))
	}
	m := ds.Movies[1]
	if m.Title != "Aliens" || m.LeadActor() != "Sigourney Weaver" {
		t.Errorf("Movies[1] = %q led by %q", m.Title, m.LeadActor())
	}
	if m.Rating != 0 || m.Gross != 0 || m.Overview != "" {
		t.Errorf("absent display columns should be zero, got rating=%v gross=%v overview=%q",
			m.Rating, m.Gross, m.Overview)
	}
}

func TestLoad_ExtraColumnsMustBeComplete(t *testing.T) {
	l := setupTestLoader(t)
	path := writeCSV(t, "extra.csv", `Series_Title,Released_Year,Director,Star1,Star2,Star3,Star4,Genre,Notes
Heat,1995,Michael Mann,Al Pacino,Robert De Niro,Val Kilmer,Jon Voight,Crime,classic
Aliens,1986,James Cameron,Sigourney Weaver,Michael Biehn,Carrie Henn,Paul Reiser,Sci-Fi,
`)

	ds, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ds.RowsKept != 1 || ds.Movies[0].Title != "Heat" {
		t.Errorf("kept %d rows, want only Heat", ds.RowsKept)
	}
}

func TestLoad_QuotedPath(t *testing.T) {
	l := setupTestLoader(t)

	dir := filepath.Join(t.TempDir(), "it's here")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "imdb.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := l.Load(context.Background(), path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestSource(t *testing.T) {
	l := setupTestLoader(t)
	path := writeCSV(t, "imdb.csv", sampleCSV)

	cat, err := l.Source(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Source().Load() error = %v", err)
	}
	if cat.Origin != path {
		t.Errorf("Origin = %q, want %q", cat.Origin, path)
	}
	if len(cat.Movies) != 4 || cat.RowsRead != 8 || cat.RowsDropped != 4 {
		t.Errorf("catalog = %d movies, %d read, %d dropped", len(cat.Movies), cat.RowsRead, cat.RowsDropped)
	}

	// The loaded corpus feeds the recommender end to end.
	snap := recommend.NewSnapshot(cat, 1, 1)
	res := snap.Recommend("The Godfather", 1)
	if !res.Found || len(res.Items) != 1 || res.Items[0].Title != "The Dark Knight" {
		t.Errorf("Recommend(The Godfather) = %+v, want The Dark Knight first", res.Items)
	}
}

func TestMissingColumns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		have []string
		want []string
	}{
		{"all present", RequiredColumns, nil},
		{"none", nil, RequiredColumns},
		{"case sensitive", []string{"series_title", "Released_Year", "Director", "Star1", "Star2", "Star3", "Star4", "Genre"}, []string{"Series_Title"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := missingColumns(tt.have); !slices.Equal(got, tt.want) {
				t.Errorf("missingColumns() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuoting(t *testing.T) {
	t.Parallel()

	if got := quoteLiteral("it's"); got != "'it''s'" {
		t.Errorf("quoteLiteral() = %s", got)
	}
	if got := quoteIdent(`a"b`); got != `"a""b"` {
		t.Errorf("quoteIdent() = %s", got)
	}
}
