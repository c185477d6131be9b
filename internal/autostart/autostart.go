// Package autostart registers managed processes with the host's native
// autostart mechanism so they resume after reboot. Backends are one-shot
// template writers behind a narrow interface; they keep no lifecycle
// state of their own and are invoked by the CLI layer, never by the
// manager.
package autostart

import (
	"strings"

	"github.com/droverhq/drover/internal/process"
)

// Handle identifies one autostart registration.
type Handle struct {
	Name string `json:"name"` // process name the registration belongs to
	Path string `json:"path"` // unit/agent/desktop file path, or task name on Windows
}

// Registrar is the platform autostart backend.
type Registrar interface {
	Register(rec process.Record) (Handle, error)
	Unregister(rec process.Record) error
	List() ([]Handle, error)
}

// New returns the registrar for the current platform.
func New() (Registrar, error) { return newRegistrar() }

// entryName builds the registration name for a record, sanitized for use
// in file and task names.
func entryName(rec process.Record) string {
	name := rec.Name
	if name == "" {
		name = rec.ID
	}
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, name)
	return "drover-" + clean
}

// shellQuote wraps s in single quotes for embedding in a sh -c template.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
