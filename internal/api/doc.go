// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package api serves the recommendation engine and catalog analytics over
HTTP using the chi router.

# Endpoints

	GET  /api/v1/health                  status summary, always 200
	GET  /api/v1/health/live             liveness
	GET  /api/v1/health/ready            503 until a snapshot is installed
	GET  /api/v1/recommendations?title=&k=
	GET  /api/v1/movies?offset=&limit=
	GET  /api/v1/movies/titles
	GET  /api/v1/movies/lookup?title=
	GET  /api/v1/snapshot
	POST /api/v1/snapshot/reload
	GET  /api/v1/stats
	GET  /api/v1/analytics/genres?metric=&genre=&limit=
	GET  /api/v1/analytics/gross-vs-rating?metric=
	GET  /api/v1/analytics/rating-by-year?metric=
	GET  /api/v1/analytics/gross-by-genre
	GET  /api/v1/ws
	GET  /metrics

# Responses

Every JSON body uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "...", "request_id": "..."}}

Successful GET responses carry a weak ETag computed over data, and a
matching If-None-Match is answered with 304.

An unknown title on /recommendations is not an error: the response is 200
with found=false and no items.
*/
package api
