package osproc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/fsnotify/fsnotify"

	"github.com/droverhq/drover/internal/process"
)

// Follow replays the last n lines of the file at path into w, then
// streams bytes as they are appended until ctx is cancelled. The managed
// log files are append-only and never rotated, so truncation and renames
// are not handled.
func Follow(ctx context.Context, path string, n int, w io.Writer) error {
	f, err := os.Open(path) // #nosec G304 -- path comes from the record's log file
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("log file %s: %w", path, process.ErrNotFound)
		}
		return fmt.Errorf("open log file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	// Replay: read everything written so far, emit only the final n lines.
	// The file offset is left at EOF so the watch loop picks up from here.
	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read log file %s: %w", path, err)
	}
	if replay := LastLines(string(data), n); replay != "" {
		if _, err := io.WriteString(w, replay+"\n"); err != nil {
			return err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create log watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch log file %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Write == 0 {
				continue
			}
			if _, err := io.Copy(w, f); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch log file %s: %w", path, err)
		}
	}
}
