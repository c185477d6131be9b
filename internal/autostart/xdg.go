//go:build !windows && !darwin

package autostart

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/droverhq/drover/internal/process"
)

const desktopSuffix = ".desktop"

// xdgRegistrar writes XDG autostart desktop entries under
// ~/.config/autostart. It is the fallback on systems without systemd.
type xdgRegistrar struct {
	dir string
}

func newXDGRegistrar() (*xdgRegistrar, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config directory: %w", err)
	}
	return &xdgRegistrar{dir: filepath.Join(cfg, "autostart")}, nil
}

func (r *xdgRegistrar) Register(rec process.Record) (Handle, error) {
	if err := os.MkdirAll(r.dir, 0o750); err != nil {
		return Handle{}, fmt.Errorf("create autostart directory: %w", err)
	}
	name := entryName(rec)
	path := filepath.Join(r.dir, name+desktopSuffix)
	if err := os.WriteFile(path, []byte(desktopEntry(rec)), 0o644); err != nil { // #nosec G306 -- desktop entries are world-readable by convention
		return Handle{}, fmt.Errorf("write desktop entry: %w", err)
	}
	return Handle{Name: rec.Name, Path: path}, nil
}

func (r *xdgRegistrar) Unregister(rec process.Record) error {
	path := filepath.Join(r.dir, entryName(rec)+desktopSuffix)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove desktop entry: %w", err)
	}
	return nil
}

func (r *xdgRegistrar) List() ([]Handle, error) {
	matches, err := filepath.Glob(filepath.Join(r.dir, "drover-*"+desktopSuffix))
	if err != nil {
		return nil, err
	}
	handles := make([]Handle, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), desktopSuffix)
		handles = append(handles, Handle{
			Name: strings.TrimPrefix(base, "drover-"),
			Path: m,
		})
	}
	return handles, nil
}

// desktopEntry renders the autostart file. The raw command is relaunched
// through the shell with the recorded working directory.
func desktopEntry(rec process.Record) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=drover: %s\n", rec.Name)
	fmt.Fprintf(&b, "Exec=/bin/sh -c %s\n", shellQuote(rec.Command))
	if rec.WorkDir != "" {
		fmt.Fprintf(&b, "Path=%s\n", rec.WorkDir)
	}
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.String()
}
