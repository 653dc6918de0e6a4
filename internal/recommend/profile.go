// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import "strings"

// BuildProfile turns a movie's genre, director and cast into one text profile.
//
// Cast names are de-duplicated by value keeping the first occurrence, and
// blank names are dropped before joining. The three parts are always joined
// with single spaces, so a missing part leaves an empty slot rather than
// shifting the others. BuildProfile never fails.
func BuildProfile(m *Movie) string {
	seen := make(map[string]struct{}, len(m.Cast))
	cast := make([]string, 0, len(m.Cast))
	for _, name := range m.Cast {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		cast = append(cast, name)
	}

	return m.Genre + " " + m.Director + " " + strings.Join(cast, " ")
}

// BuildCorpus profiles every movie, preserving order.
func BuildCorpus(movies []Movie) []string {
	corpus := make([]string, len(movies))
	for i := range movies {
		corpus[i] = BuildProfile(&movies[i])
	}
	return corpus
}
