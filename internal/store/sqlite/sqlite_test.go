package sqlite

import (
	"errors"
	"testing"

	"github.com/droverhq/drover/internal/process"
)

func TestEmptyPathRejected(t *testing.T) {
	if _, err := New("   "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSaveAllLoadRoundTrip(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()

	in := []process.Record{
		{ID: "a", Name: "one", Command: "sleep 1", Status: process.StatusRunning, PID: 42},
		{ID: "b", Name: "two", Command: "sleep 2", Status: process.StatusStopped},
	}
	if err := s.SaveAll(in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "b" || out[0].PID != 42 {
		t.Fatalf("round trip mismatch: %+v", out)
	}

	// SaveAll replaces the whole set
	if err := s.SaveAll(in[1:]); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, _ = s.Load()
	if len(out) != 1 || out[0].ID != "b" {
		t.Fatalf("replace mismatch: %+v", out)
	}
}

func TestMutate(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()

	err = s.Mutate(func(recs []process.Record) ([]process.Record, error) {
		return append(recs, process.Record{ID: "x", Name: "x", Status: process.StatusRunning}), nil
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}

	wantErr := errors.New("boom")
	if err := s.Mutate(func(recs []process.Record) ([]process.Record, error) { return nil, wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("expected fn error, got %v", err)
	}
	out, _ := s.Load()
	if len(out) != 1 || out[0].ID != "x" {
		t.Fatalf("failed mutate changed data: %+v", out)
	}
}
