// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package dataset loads the movie catalog from an IMDb Top 1000 style CSV file
into an in-memory DuckDB database, cleans it, and serves catalog analytics.

# Loading

Store.Load reads the file with DuckDB's read_csv (every column as VARCHAR),
checks that the recommendation columns are present, and materializes a typed
movies table:

  - Meta_score must be present and numeric
  - Gross has "$" and "," stripped and must be numeric
  - IMDB_Rating, Released_Year and No_of_Votes must be numeric
  - every other column in the file must be non-empty

Rows failing any rule are dropped. Surviving rows keep file order, which
becomes the corpus order of the recommendation snapshot.

A file missing any of Series_Title, Released_Year, Director, Star1..Star4 or
Genre fails with a *SchemaError before any table is replaced.

# Analytics

The loaded table also backs four read-only views of the catalog:

  - GenreStats: five-number summary of a score per genre
  - GrossVsRating: gross/score pairs with an OLS trend line
  - RatingByYear: mean score per release year
  - GrossByGenre: mean gross per genre

Results are cached per load generation.

# Usage

	store, err := dataset.Open(dataset.DefaultConfig(), logger)
	if err != nil {
	    return err
	}
	defer store.Close()

	engine.Rebuild(ctx, store.Source("imdb_top_1000.csv"))
*/
package dataset
