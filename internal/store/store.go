package store

import (
	"fmt"

	"github.com/droverhq/drover/internal/process"
)

// Store persists the full set of process records as one document. There
// is no partial update at this layer: callers do read-modify-write, and
// Mutate is the unit that holds the writer lock across the whole cycle.
type Store interface {
	// Load returns all records; an absent document yields an empty slice.
	Load() ([]process.Record, error)
	// SaveAll atomically replaces the full document.
	SaveAll(recs []process.Record) error
	// Mutate loads the records, applies fn, and saves the result, all
	// under the store's exclusive lock.
	Mutate(fn func(recs []process.Record) ([]process.Record, error)) error
	Close() error
}

// Config selects and parameterizes a store backend.
type Config struct {
	Type string `mapstructure:"type"` // "json" (default) or "sqlite"
	Path string `mapstructure:"path"`
}

// Find returns the index of the first record matching nameOrID, by id or
// by name. When duplicate names exist the first match wins.
func Find(recs []process.Record, nameOrID string) (int, bool) {
	for i := range recs {
		if recs[i].Matches(nameOrID) {
			return i, true
		}
	}
	return -1, false
}

// Get looks up a single record.
func Get(s Store, nameOrID string) (process.Record, error) {
	recs, err := s.Load()
	if err != nil {
		return process.Record{}, err
	}
	if i, ok := Find(recs, nameOrID); ok {
		return recs[i], nil
	}
	return process.Record{}, fmt.Errorf("process %q: %w", nameOrID, process.ErrNotFound)
}

// Save appends rec, or replaces an existing record with the same id.
func Save(s Store, rec process.Record) error {
	return s.Mutate(func(recs []process.Record) ([]process.Record, error) {
		for i := range recs {
			if recs[i].ID == rec.ID {
				recs[i] = rec
				return recs, nil
			}
		}
		return append(recs, rec), nil
	})
}

// Update applies fn to the record addressed by nameOrID.
func Update(s Store, nameOrID string, fn func(rec *process.Record) error) error {
	return s.Mutate(func(recs []process.Record) ([]process.Record, error) {
		i, ok := Find(recs, nameOrID)
		if !ok {
			return nil, fmt.Errorf("process %q: %w", nameOrID, process.ErrNotFound)
		}
		if err := fn(&recs[i]); err != nil {
			return nil, err
		}
		return recs, nil
	})
}

// Delete removes the record with the given id. Deleting an absent id is
// not an error.
func Delete(s Store, id string) error {
	return s.Mutate(func(recs []process.Record) ([]process.Record, error) {
		out := recs[:0]
		for _, r := range recs {
			if r.ID != id {
				out = append(out, r)
			}
		}
		return out, nil
	})
}
