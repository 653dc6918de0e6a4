// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package recommend implements the content-based "more like this" engine.
//
// # Pipeline
//
// A snapshot is built once per dataset version by running three stages in
// order:
//
//   - Profile Builder: genre, director and de-duplicated cast joined into one
//     text profile per movie (BuildProfile, BuildCorpus)
//   - Vector Space Model: TF-IDF over the corpus with English stop words
//     removed, rows L2-normalized (FitVectorSpace)
//   - Similarity Index: dense symmetric cosine matrix, upper triangle computed
//     in parallel and mirrored (BuildSimilarity)
//
// The resulting Snapshot is immutable. Its corpus order, vector rows and matrix
// indices always agree because all three are created together and never
// modified afterwards.
//
// # Serving
//
// Engine holds the current snapshot behind an atomic pointer. Queries load the
// pointer once and read without locks; Install and Reload build a new snapshot
// off to the side and swap it in, so in-flight queries finish on the snapshot
// they started with.
//
// Title lookup is an exact, case-sensitive match against the first movie with
// that title. A miss yields an empty Result with Found=false, never an error.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	if err := engine.Reload(ctx, loader); err != nil {
//	    return err
//	}
//	resp, err := engine.Recommend(ctx, recommend.Request{Title: "Heat", K: 5})
package recommend
