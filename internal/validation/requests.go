// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package validation

// RecommendParams are the query parameters of the recommendations endpoint.
// The handler fills K with the configured default when k is absent, so an
// explicit k below 1 is rejected.
type RecommendParams struct {
	Title string `query:"title" validate:"required,max=512,nocontrol"`
	K     int    `query:"k" validate:"min=1,max=1000"`
}

// LookupParams are the query parameters of the exact title lookup.
type LookupParams struct {
	Title string `query:"title" validate:"required,max=512,nocontrol"`
}

// PageParams page through the catalog. Limit of zero means the configured
// default page size.
type PageParams struct {
	Offset int `query:"offset" validate:"min=0,max=1000000"`
	Limit  int `query:"limit" validate:"min=0,max=1000"`
}

// MetricParams select the score an analytics view summarizes. An empty
// metric means the view's default.
type MetricParams struct {
	Metric string `query:"metric" validate:"omitempty,oneof=imdb_rating meta_score"`
}

// GenreParams filter the genre distribution view.
type GenreParams struct {
	Metric string   `query:"metric" validate:"omitempty,oneof=imdb_rating meta_score"`
	Genres []string `query:"genre" validate:"max=50,dive,required,max=64,nocontrol"`
	Limit  int      `query:"limit" validate:"min=0,max=100"`
}
