package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/droverhq/drover/internal/process"
)

// FileStore keeps the records as a single JSON array on disk. Separate
// CLI invocations share no memory, so an advisory file lock guards every
// load->mutate->saveAll cycle against concurrent writers.
type FileStore struct {
	path string
	lock *flock.Flock
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

func (s *FileStore) Load() ([]process.Record, error) {
	if err := s.lock.RLock(); err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()
	return s.load()
}

func (s *FileStore) SaveAll(recs []process.Record) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire store lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()
	return s.save(recs)
}

func (s *FileStore) Mutate(fn func(recs []process.Record) ([]process.Record, error)) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire store lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()
	recs, err := s.load()
	if err != nil {
		return err
	}
	out, err := fn(recs)
	if err != nil {
		return err
	}
	return s.save(out)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) load() ([]process.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []process.Record{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	var recs []process.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		// Not auto-repaired: every operation stays blocked until the
		// document is fixed by hand or restored from a backup.
		return nil, fmt.Errorf("parse %s: %v: %w", s.path, err, process.ErrCorruptData)
	}
	return recs, nil
}

// save writes the document to a temp file and renames it into place so a
// crash mid-write never leaves a half-written document behind.
func (s *FileStore) save(recs []process.Record) error {
	if recs == nil {
		recs = []process.Record{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp document: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
