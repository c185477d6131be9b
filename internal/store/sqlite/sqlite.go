// Package sqlite implements store.Store on a local SQLite database
// (modernc.org/sqlite driver, CGO-free). Each record is stored as its
// JSON document keyed by id; Load and SaveAll keep the same whole-set
// semantics as the flat-file backend.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/droverhq/drover/internal/process"
)

type DB struct {
	db *sql.DB
	mu sync.Mutex
}

// New opens (and if needed initializes) a SQLite database at path.
// Use ":memory:" for tests.
func New(path string) (*DB, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("empty sqlite path")
	}
	d, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	// busy timeout helps with short concurrent locks across invocations
	_, _ = d.Exec("PRAGMA busy_timeout=3000;")
	s := &DB{db: d}
	if err := s.ensureSchema(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return s, nil
}

func (s *DB) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS process_records(
			id TEXT PRIMARY KEY,
			pos INTEGER NOT NULL,
			doc TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_process_records_pos ON process_records(pos);`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *DB) Close() error { return s.db.Close() }

func (s *DB) Load() ([]process.Record, error) {
	rows, err := s.db.Query(`SELECT doc FROM process_records ORDER BY pos;`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	recs := []process.Record{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var rec process.Record
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, fmt.Errorf("decode record: %v: %w", err, process.ErrCorruptData)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *DB) SaveAll(recs []process.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveAll(recs)
}

func (s *DB) Mutate(fn func(recs []process.Record) ([]process.Record, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, err := s.Load()
	if err != nil {
		return err
	}
	out, err := fn(recs)
	if err != nil {
		return err
	}
	return s.saveAll(out)
}

func (s *DB) saveAll(recs []process.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`DELETE FROM process_records;`); err != nil {
		return err
	}
	for i, rec := range recs {
		doc, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record %s: %w", rec.ID, err)
		}
		if _, err := tx.Exec(`INSERT INTO process_records(id, pos, doc) VALUES(?, ?, ?);`, rec.ID, i, string(doc)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
