//go:build linux

package autostart

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/droverhq/drover/internal/process"
)

const unitSuffix = ".service"

// newRegistrar picks the systemd user-unit backend when systemctl is on
// PATH, falling back to XDG desktop entries otherwise. The probe runs
// once at construction, not per call.
func newRegistrar() (Registrar, error) {
	if _, err := exec.LookPath("systemctl"); err == nil {
		cfg, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config directory: %w", err)
		}
		return &systemdRegistrar{dir: filepath.Join(cfg, "systemd", "user")}, nil
	}
	return newXDGRegistrar()
}

// systemdRegistrar writes per-process user units and enables them.
type systemdRegistrar struct {
	dir string
}

func (r *systemdRegistrar) Register(rec process.Record) (Handle, error) {
	if err := os.MkdirAll(r.dir, 0o750); err != nil {
		return Handle{}, fmt.Errorf("create unit directory: %w", err)
	}
	name := entryName(rec)
	path := filepath.Join(r.dir, name+unitSuffix)
	if err := os.WriteFile(path, []byte(unitContent(rec)), 0o644); err != nil { // #nosec G306 -- unit files are world-readable by convention
		return Handle{}, fmt.Errorf("write unit file: %w", err)
	}
	if out, err := exec.Command("systemctl", "--user", "daemon-reload").CombinedOutput(); err != nil {
		return Handle{}, fmt.Errorf("systemctl daemon-reload: %w: %s", err, strings.TrimSpace(string(out)))
	}
	if out, err := exec.Command("systemctl", "--user", "enable", name+unitSuffix).CombinedOutput(); err != nil {
		return Handle{}, fmt.Errorf("systemctl enable: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return Handle{Name: rec.Name, Path: path}, nil
}

func (r *systemdRegistrar) Unregister(rec process.Record) error {
	name := entryName(rec)
	// Disable first so systemd drops its symlinks; tolerate a unit that
	// was already removed by hand.
	if out, err := exec.Command("systemctl", "--user", "disable", name+unitSuffix).CombinedOutput(); err != nil {
		if !strings.Contains(string(out), "does not exist") {
			return fmt.Errorf("systemctl disable: %w: %s", err, strings.TrimSpace(string(out)))
		}
	}
	path := filepath.Join(r.dir, name+unitSuffix)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove unit file: %w", err)
	}
	return nil
}

func (r *systemdRegistrar) List() ([]Handle, error) {
	matches, err := filepath.Glob(filepath.Join(r.dir, "drover-*"+unitSuffix))
	if err != nil {
		return nil, err
	}
	handles := make([]Handle, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), unitSuffix)
		handles = append(handles, Handle{
			Name: strings.TrimPrefix(base, "drover-"),
			Path: m,
		})
	}
	return handles, nil
}

// unitContent renders the user unit. Environment keys are emitted in
// sorted order so regenerating the unit is deterministic.
func unitContent(rec process.Record) string {
	var b strings.Builder
	b.WriteString("[Unit]\n")
	fmt.Fprintf(&b, "Description=drover managed process %s\n\n", rec.Name)
	b.WriteString("[Service]\n")
	b.WriteString("Type=simple\n")
	fmt.Fprintf(&b, "ExecStart=/bin/sh -c %s\n", shellQuote(rec.Command))
	if rec.WorkDir != "" {
		fmt.Fprintf(&b, "WorkingDirectory=%s\n", rec.WorkDir)
	}
	keys := make([]string, 0, len(rec.Env))
	for k := range rec.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "Environment=%q\n", k+"="+rec.Env[k])
	}
	b.WriteString("\n[Install]\n")
	b.WriteString("WantedBy=default.target\n")
	return b.String()
}
