package osproc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/droverhq/drover/internal/process"
)

// Tail returns the last n newline-delimited lines of the file at path,
// joined with "\n" and without a trailing blank line. An empty file
// yields "". A missing file is a NotFound error.
func Tail(path string, n int) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the record's log file
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("log file %s: %w", path, process.ErrNotFound)
		}
		return "", fmt.Errorf("read log file %s: %w", path, err)
	}
	return LastLines(string(data), n), nil
}

// LastLines keeps the final n complete lines of s. A trailing newline
// does not count as an extra empty line; partial lines are kept as-is
// since the split operates on what is present.
func LastLines(s string, n int) string {
	if s == "" || n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
