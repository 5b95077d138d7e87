package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "debug", Format: "json", Out: &buf})
	l.Debug("hello", "k", 1)
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Fatalf("expected json output, got %q", buf.String())
	}
}

func TestNewLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "warn", Out: &buf})
	l.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	l.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn should be written, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	l := New(Options{})
	ctx := NewContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatalf("logger not returned from context")
	}
	if FromContext(context.Background()) != slog.Default() {
		t.Fatalf("expected default logger for empty context")
	}
}
