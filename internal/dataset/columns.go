// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"fmt"
	"strings"
)

// CSV column names.
const (
	ColPoster      = "Poster_Link"
	ColTitle       = "Series_Title"
	ColYear        = "Released_Year"
	ColCertificate = "Certificate"
	ColRuntime     = "Runtime"
	ColGenre       = "Genre"
	ColRating      = "IMDB_Rating"
	ColOverview    = "Overview"
	ColMetaScore   = "Meta_score"
	ColDirector    = "Director"
	ColStar1       = "Star1"
	ColStar2       = "Star2"
	ColStar3       = "Star3"
	ColStar4       = "Star4"
	ColVotes       = "No_of_Votes"
	ColGross       = "Gross"
)

// RequiredColumns must all be present for a file to be indexed.
var RequiredColumns = []string{
	ColTitle, ColYear, ColDirector,
	ColStar1, ColStar2, ColStar3, ColStar4,
	ColGenre,
}

// columnKind says how a raw VARCHAR column becomes a typed one.
type columnKind int

const (
	kindText columnKind = iota
	kindInteger
	kindBigInt
	kindDouble
	kindMoney
)

// column maps a CSV column to its cleaned name and type. Optional columns
// fall back to def when absent from the file.
type column struct {
	source string
	target string
	kind   columnKind
	def    string
}

// cleanedColumns lists the typed movies table in the order it is scanned.
var cleanedColumns = []column{
	{ColTitle, "title", kindText, ""},
	{ColYear, "year", kindInteger, ""},
	{ColDirector, "director", kindText, ""},
	{ColStar1, "star1", kindText, ""},
	{ColStar2, "star2", kindText, ""},
	{ColStar3, "star3", kindText, ""},
	{ColStar4, "star4", kindText, ""},
	{ColGenre, "genre", kindText, ""},
	{ColCertificate, "certificate", kindText, "''"},
	{ColRuntime, "runtime", kindText, "''"},
	{ColRating, "rating", kindDouble, "CAST(NULL AS DOUBLE)"},
	{ColMetaScore, "meta_score", kindDouble, "CAST(NULL AS DOUBLE)"},
	{ColVotes, "votes", kindBigInt, "CAST(0 AS BIGINT)"},
	{ColGross, "gross", kindMoney, "CAST(NULL AS DOUBLE)"},
	{ColOverview, "overview", kindText, "''"},
	{ColPoster, "poster_url", kindText, "''"},
}

// missingColumns returns the required columns absent from have, in
// RequiredColumns order.
func missingColumns(have []string) []string {
	present := make(map[string]struct{}, len(have))
	for _, c := range have {
		present[c] = struct{}{}
	}

	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := present[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// buildCleanQuery returns the statement that materializes the typed table
// target from the raw table source, given the columns present in the file.
//
// Every raw column is trimmed and blank values become NULL. A row survives
// only if no present column is NULL and every typed conversion succeeds.
func buildCleanQuery(target, source string, have []string) string {
	present := make(map[string]struct{}, len(have))
	for _, c := range have {
		present[c] = struct{}{}
	}

	selects := []string{"rowid AS row_id"}
	conditions := make([]string, 0, len(have)+len(cleanedColumns))

	for _, c := range cleanedColumns {
		if _, ok := present[c.source]; !ok {
			selects = append(selects, fmt.Sprintf("%s AS %s", c.def, c.target))
			continue
		}
		selects = append(selects, fmt.Sprintf("%s AS %s", castExpr(c), c.target))
		conditions = append(conditions, c.target+" IS NOT NULL")
	}

	// Columns the model does not use still take part in the completeness
	// check.
	known := make(map[string]struct{}, len(cleanedColumns))
	for _, c := range cleanedColumns {
		known[c.source] = struct{}{}
	}
	extra := make([]string, 0)
	for _, c := range have {
		if _, ok := known[c]; !ok {
			extra = append(extra, fmt.Sprintf("%s IS NOT NULL", blankToNull(c)))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE OR REPLACE TABLE %s AS\n", quoteIdent(target))
	fmt.Fprintf(&b, "WITH typed AS (\n\tSELECT\n\t\t%s\n\tFROM %s", strings.Join(selects, ",\n\t\t"), quoteIdent(source))
	if len(extra) > 0 {
		fmt.Fprintf(&b, "\n\tWHERE %s", strings.Join(extra, "\n\t  AND "))
	}
	b.WriteString("\n)\nSELECT * FROM typed")
	if len(conditions) > 0 {
		fmt.Fprintf(&b, "\nWHERE %s", strings.Join(conditions, "\n  AND "))
	}
	b.WriteString("\nORDER BY row_id")
	return b.String()
}

func castExpr(c column) string {
	raw := blankToNull(c.source)
	switch c.kind {
	case kindInteger:
		return fmt.Sprintf("TRY_CAST(%s AS INTEGER)", raw)
	case kindBigInt:
		return fmt.Sprintf("TRY_CAST(replace(%s, ',', '') AS BIGINT)", raw)
	case kindDouble:
		return fmt.Sprintf("TRY_CAST(%s AS DOUBLE)", raw)
	case kindMoney:
		return fmt.Sprintf("TRY_CAST(NULLIF(regexp_replace(%s, '[$,]', '', 'g'), '') AS DOUBLE)", raw)
	default:
		return raw
	}
}

// blankToNull trims a raw column and maps the empty string to NULL.
func blankToNull(name string) string {
	return fmt.Sprintf("NULLIF(trim(%s), '')", quoteIdent(name))
}

// quoteIdent quotes a SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteLiteral quotes a SQL string literal. Table functions such as read_csv
// take their path as a literal, not a bind parameter.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
