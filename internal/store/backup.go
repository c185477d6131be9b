package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/droverhq/drover/internal/process"
)

const backupVersion = "1"

// Backup is the on-disk backup document.
type Backup struct {
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Processes []process.Record `json:"processes"`
}

// WriteBackup snapshots the current records into a backup file at path
// and returns the number of records written.
func WriteBackup(s Store, path string) (int, error) {
	recs, err := s.Load()
	if err != nil {
		return 0, err
	}
	doc := Backup{
		Timestamp: time.Now().UTC(),
		Version:   backupVersion,
		Processes: recs,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode backup: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return 0, fmt.Errorf("write backup %s: %w", path, err)
	}
	return len(recs), nil
}

// Restore replaces the store contents with the records from the backup
// at path. The backup must carry a "processes" array; anything else is
// rejected before the store is touched.
func Restore(s Store, path string) (int, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied backup path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("backup %s: %w", path, process.ErrNotFound)
		}
		return 0, fmt.Errorf("read backup %s: %w", path, err)
	}
	var doc struct {
		Processes json.RawMessage `json:"processes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("parse backup %s: %v: %w", path, err, process.ErrInvalidFormat)
	}
	if doc.Processes == nil {
		return 0, fmt.Errorf("backup %s: missing processes array: %w", path, process.ErrInvalidFormat)
	}
	var recs []process.Record
	if err := json.Unmarshal(doc.Processes, &recs); err != nil {
		return 0, fmt.Errorf("backup %s: processes is not an array of records: %w", path, process.ErrInvalidFormat)
	}
	if err := s.SaveAll(recs); err != nil {
		return 0, err
	}
	return len(recs), nil
}
