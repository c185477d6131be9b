package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestColorTextHandlerPrefixesLevel(t *testing.T) {
	var buf bytes.Buffer
	h := NewColorTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	log := slog.New(h)
	log.Warn("something happened")
	out := buf.String()
	if !strings.Contains(out, "\033[33mWARN\033[0m") {
		t.Fatalf("missing colored level tag: %q", out)
	}
	if !strings.Contains(out, "something happened") {
		t.Fatalf("missing message: %q", out)
	}
}

func TestFanoutDuplicates(t *testing.T) {
	var a, b bytes.Buffer
	h := fanout{
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	}
	log := slog.New(h)
	log.Info("hello")
	if !strings.Contains(a.String(), "hello") {
		t.Fatalf("first handler missed the record: %q", a.String())
	}
	if b.Len() != 0 {
		t.Fatalf("second handler should have filtered info: %q", b.String())
	}
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("fanout must be enabled when any handler is")
	}
}
