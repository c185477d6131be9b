package osproc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/droverhq/drover/internal/process"
)

func TestTailLastLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.log")
	if err := os.WriteFile(path, []byte("l1\nl2\nl3\nl4\nl5\n"), 0o640); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Tail(path, 3)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if got != "l3\nl4\nl5" {
		t.Fatalf("tail mismatch: %q", got)
	}
}

func TestTailFewerLinesThanRequested(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.log")
	if err := os.WriteFile(path, []byte("only\n"), 0o640); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Tail(path, 10)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if got != "only" {
		t.Fatalf("tail mismatch: %q", got)
	}
}

func TestTailEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.log")
	if err := os.WriteFile(path, nil, 0o640); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Tail(path, 5)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestTailMissingFile(t *testing.T) {
	_, err := Tail(filepath.Join(t.TempDir(), "nope.log"), 5)
	if !errors.Is(err, process.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLastLinesNoTrailingBlank(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"", 3, ""},
		{"a\nb\nc", 2, "b\nc"},
		{"a\nb\nc\n", 2, "b\nc"},
		{"a\nb", 0, ""},
		{"a", 5, "a"},
	}
	for _, tc := range cases {
		if got := LastLines(tc.in, tc.n); got != tc.want {
			t.Fatalf("LastLines(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}
