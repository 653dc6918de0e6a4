// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// tokenPattern matches runs of two or more word characters. Word characters
// are Unicode letters, Unicode numbers and underscore, so names like
// "Zoë" or "Iñárritu" stay whole.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenizer lowercases and splits profile text into terms.
// A Tokenizer is not safe for concurrent use; create one per goroutine.
type Tokenizer struct {
	lower     cases.Caser
	stopWords map[string]struct{}
}

// NewTokenizer returns a tokenizer that drops English stop words.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{
		lower:     cases.Lower(language.Und),
		stopWords: englishStopWords,
	}
}

// Tokens returns the surviving terms of text in order of appearance,
// including repeats.
func (t *Tokenizer) Tokens(text string) []string {
	lowered := t.lower.String(text)
	raw := tokenPattern.FindAllString(lowered, -1)

	out := raw[:0]
	for _, tok := range raw {
		if _, stop := t.stopWords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}
