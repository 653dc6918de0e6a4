// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package cache provides thread-safe in-memory caches with TTL support.

Two caches are provided:

  - LRU is a bounded, generic least-recently-used cache. The recommendation
    engine keeps one keyed by (snapshot version, title, k) so repeated queries
    against the same snapshot skip ranking.
  - Cache is an unbounded TTL cache for computed results. The analytics API
    keeps one keyed by GenerateKey(method, params) and clears it whenever a
    new dataset is installed.

# Usage Example

	results := cache.NewLRU[queryKey, recommend.Result](4096, 10*time.Minute)
	results.Add(key, res)
	if res, ok := results.Get(key); ok {
	    return res
	}

	analytics := cache.New(5*time.Minute, time.Minute)
	defer analytics.Close()
	key := cache.GenerateKey("rating-by-year", params)

# Invalidation

Entries expire lazily on read and are swept in the background (Cache) or on
demand (LRU.CleanupExpired). Callers invalidate explicitly with Clear,
Remove/Delete or LRU.RemoveFunc when the data behind an entry changes.
*/
package cache
