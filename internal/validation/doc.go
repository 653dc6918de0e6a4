// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide. Errors name the field
// by its query, koanf or json tag, so a bad ?k=5000 is reported as "k" rather
// than the Go field name.
//
// # Request Parameters
//
// requests.go declares the parameter structs for the HTTP API:
//
//	RecommendParams  title (required), k (0..1000)
//	LookupParams     title (required)
//	PageParams       offset, limit
//	MetricParams     metric (imdb_rating | meta_score)
//	GenreParams      metric, genre (repeatable), limit
//
// # Custom Tags
//
//   - nocontrol: the string contains no Unicode control characters
//
// # API Error Integration
//
// ToAPIError produces the VALIDATION_ERROR body used by the HTTP layer:
//
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "k must be at most 1000",
//	    "details": {"field": "k", "tag": "max", "value": 5000}
//	}
package validation
