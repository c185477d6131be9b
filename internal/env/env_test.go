package env

import (
	"reflect"
	"testing"
)

func TestMergeOverlayWins(t *testing.T) {
	e := New([]string{"PATH=/usr/bin", "HOME=/home/u", "broken", "=novalue"})
	got := e.Merge(map[string]string{"HOME": "/tmp/other", "EXTRA": "1"})
	want := []string{"EXTRA=1", "HOME=/tmp/other", "PATH=/usr/bin"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merge mismatch: got %v want %v", got, want)
	}
}

func TestMergeNilOverlay(t *testing.T) {
	e := New([]string{"A=1"})
	got := e.Merge(nil)
	if len(got) != 1 || got[0] != "A=1" {
		t.Fatalf("expected base passthrough, got %v", got)
	}
}

func TestMergeEmptyBase(t *testing.T) {
	e := New(nil)
	got := e.Merge(map[string]string{"K": "v", "": "skipped"})
	if len(got) != 1 || got[0] != "K=v" {
		t.Fatalf("expected overlay only, got %v", got)
	}
}

func TestMergeDoesNotMutateBase(t *testing.T) {
	e := New([]string{"A=1"})
	_ = e.Merge(map[string]string{"A": "2"})
	if got := e.Merge(nil); len(got) != 1 || got[0] != "A=1" {
		t.Fatalf("base snapshot mutated: %v", got)
	}
}
