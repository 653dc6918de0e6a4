// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestMovie_LeadActor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cast []string
		want string
	}{
		{"first billed", []string{"Al Pacino", "Robert De Niro"}, "Al Pacino"},
		{"no cast", nil, ""},
		{"blank first entry kept as is", []string{"", "Val Kilmer"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := Movie{Cast: tt.cast}
			if got := m.LeadActor(); got != tt.want {
				t.Errorf("LeadActor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSourceFunc(t *testing.T) {
	t.Parallel()

	called := false
	src := SourceFunc(func(ctx context.Context) (*Catalog, error) {
		called = true
		return &Catalog{Origin: "fn"}, nil
	})

	cat, err := src.Load(context.Background())
	if err != nil || !called || cat.Origin != "fn" {
		t.Errorf("SourceFunc.Load() = %+v, %v (called=%v)", cat, err, called)
	}
}

func TestResult_JSONShape(t *testing.T) {
	t.Parallel()

	res := Result{Query: "Nope", Items: []Recommendation{}}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	// A miss serializes as an empty list, never null.
	if !strings.Contains(string(data), `"items":[]`) {
		t.Errorf("miss JSON = %s, want empty items array", data)
	}
	if !strings.Contains(string(data), `"found":false`) {
		t.Errorf("miss JSON = %s, want found:false", data)
	}
}
