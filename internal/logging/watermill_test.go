// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

func TestWatermillAdapter_Levels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	adapter := NewWatermillAdapter(zerolog.New(&buf))

	adapter.Error("handler failed", errors.New("boom"), watermill.LogFields{"topic": "snapshot.failed"})
	adapter.Info("router running", nil)
	adapter.Debug("message acked", watermill.LogFields{"uuid": "m1"})
	adapter.Trace("raw", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4: %s", len(lines), buf.String())
	}

	checks := []struct {
		line int
		want []string
	}{
		{0, []string{`"level":"error"`, `"error":"boom"`, `"topic":"snapshot.failed"`, `"message":"handler failed"`}},
		{1, []string{`"level":"info"`, `"message":"router running"`}},
		{2, []string{`"level":"debug"`, `"uuid":"m1"`}},
		{3, []string{`"level":"trace"`}},
	}
	for _, c := range checks {
		for _, want := range c.want {
			if !strings.Contains(lines[c.line], want) {
				t.Errorf("line %d missing %s: %s", c.line, want, lines[c.line])
			}
		}
	}
}

func TestWatermillAdapter_With(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := NewWatermillAdapter(zerolog.New(&buf))
	child := base.With(watermill.LogFields{"handler": "ws_relay"})

	child.Info("relayed", watermill.LogFields{"clients": 2})
	base.Info("plain", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], `"handler":"ws_relay"`) || !strings.Contains(lines[0], `"clients":2`) {
		t.Errorf("child line missing fields: %s", lines[0])
	}
	if strings.Contains(lines[1], "handler") {
		t.Errorf("base adapter should not carry child fields: %s", lines[1])
	}
}

func TestWatermillAdapter_DisabledLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	adapter := NewWatermillAdapter(zerolog.New(&buf).Level(zerolog.InfoLevel))

	adapter.Debug("dropped", watermill.LogFields{"k": "v"})
	adapter.Trace("dropped", nil)

	if buf.Len() != 0 {
		t.Errorf("disabled levels wrote output: %s", buf.String())
	}
}
