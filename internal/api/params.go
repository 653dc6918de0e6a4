// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/reelmatch/internal/validation"
)

// paramError is a query parameter that is not an integer.
type paramError struct {
	key   string
	value string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("%s must be an integer", e.key)
}

// queryInt parses an optional integer parameter. Absent means 0.
func queryInt(q url.Values, key string) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{key: key, value: raw}
	}
	return n, nil
}

// queryList collects repeated and comma-separated values of key.
func queryList(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// validateParams runs the validator on params and writes a 400 when it
// fails. It reports whether the handler may continue.
func validateParams(w http.ResponseWriter, r *http.Request, params any) bool {
	verr := validation.ValidateStruct(params)
	if verr == nil {
		return true
	}
	apiErr := verr.ToAPIError()
	respondValidation(w, r, apiErr.Code, apiErr.Message, apiErr.Details)
	return false
}

// respondParamError writes the 400 for a malformed integer.
func respondParamError(w http.ResponseWriter, r *http.Request, err error) {
	details := map[string]any{}
	if pe, ok := err.(*paramError); ok {
		details["field"] = pe.key
		details["tag"] = "integer"
		details["value"] = pe.value
	}
	respondValidation(w, r, ErrCodeValidation, err.Error(), details)
}
