package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestBusinessErrorLogsAtWarn(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug, "json")

	log.BusinessError("movies.create: duplicate", errors.New("duplicate pending"), "title", "Dune")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json line, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "WARN" {
		t.Fatalf("expected WARN, got %v", entry["level"])
	}
	if entry["err"] != "duplicate pending" {
		t.Fatalf("expected err attribute, got %v", entry["err"])
	}
	if entry["title"] != "Dune" {
		t.Fatalf("expected title attribute, got %v", entry["title"])
	}
}

func TestInternalErrorSkipsNil(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug, "json")

	log.InternalError("noop", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output for nil error, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		value, env string
		want       slog.Level
	}{
		{"debug", "prod", slog.LevelDebug},
		{"WARN", "prod", slog.LevelWarn},
		{"", "dev", slog.LevelDebug},
		{"", "prod", slog.LevelInfo},
		{"bogus", "prod", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.value, tc.env); got != tc.want {
			t.Errorf("parseLevel(%q, %q) = %v, want %v", tc.value, tc.env, got, tc.want)
		}
	}
}
