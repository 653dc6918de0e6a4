// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondJSON_Envelope(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	w := httptest.NewRecorder()
	respondJSON(w, req, http.StatusOK, map[string]int{"n": 1}, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	env := decodeEnvelope(t, w)
	if !env.Success || env.Error != nil {
		t.Fatalf("envelope = %+v, want success", env)
	}
	var data map[string]int
	decodeData(t, env, &data)
	if data["n"] != 1 {
		t.Errorf("data = %v", data)
	}
	if w.Header().Get("ETag") == "" {
		t.Error("GET 200 should carry an ETag")
	}
}

func TestRespondJSON_ETag(t *testing.T) {
	t.Parallel()

	first := httptest.NewRecorder()
	respondJSON(first, httptest.NewRequest(http.MethodGet, "/x", nil), http.StatusOK, []string{"a", "b"}, nil)
	etag := first.Header().Get("ETag")
	if !strings.HasPrefix(etag, `W/"`) {
		t.Fatalf("ETag = %q, want weak validator", etag)
	}

	tests := []struct {
		name        string
		method      string
		status      int
		ifNoneMatch string
		wantStatus  int
	}{
		{"matching", http.MethodGet, http.StatusOK, etag, http.StatusNotModified},
		{"strong form matches weak", http.MethodGet, http.StatusOK, strings.TrimPrefix(etag, "W/"), http.StatusNotModified},
		{"in list", http.MethodGet, http.StatusOK, `"other", ` + etag, http.StatusNotModified},
		{"wildcard", http.MethodGet, http.StatusOK, "*", http.StatusNotModified},
		{"stale", http.MethodGet, http.StatusOK, `W/"0"`, http.StatusOK},
		{"POST ignores", http.MethodPost, http.StatusOK, etag, http.StatusOK},
		{"202 ignores", http.MethodGet, http.StatusAccepted, etag, http.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tt.method, "/x", nil)
			req.Header.Set("If-None-Match", tt.ifNoneMatch)
			w := httptest.NewRecorder()
			respondJSON(w, req, tt.status, []string{"a", "b"}, nil)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusNotModified && w.Body.Len() != 0 {
				t.Errorf("304 body = %q, want empty", w.Body.String())
			}
		})
	}
}

func TestRespondError_HidesCause(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	w := httptest.NewRecorder()
	respondError(w, req, http.StatusInternalServerError, ErrCodeInternal, "something failed", errors.New("secret dsn"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret") {
		t.Errorf("body leaks the cause: %s", w.Body.String())
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
	env := decodeEnvelope(t, w)
	if env.Success || env.Error == nil || env.Error.Code != ErrCodeInternal {
		t.Errorf("envelope = %+v", env)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"https://movies.example", "https://movies.example"},
		{"evil\nlevel=error", `evil\x0alevel=error`},
		{"tab\there", `tab\x09here`},
		{"Amélie", "Amélie"},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
