//go:build darwin

package autostart

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/droverhq/drover/internal/process"
)

const (
	labelPrefix = "com.droverhq.drover."
	plistSuffix = ".plist"
)

func newRegistrar() (Registrar, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	return &launchdRegistrar{dir: filepath.Join(home, "Library", "LaunchAgents")}, nil
}

// launchdRegistrar writes per-process launch agent plists.
type launchdRegistrar struct {
	dir string
}

func (r *launchdRegistrar) Register(rec process.Record) (Handle, error) {
	if err := os.MkdirAll(r.dir, 0o750); err != nil {
		return Handle{}, fmt.Errorf("create launch agents directory: %w", err)
	}
	label := labelPrefix + strings.TrimPrefix(entryName(rec), "drover-")
	path := filepath.Join(r.dir, label+plistSuffix)
	if err := os.WriteFile(path, []byte(plistContent(label, rec)), 0o644); err != nil { // #nosec G306 -- launch agents are world-readable by convention
		return Handle{}, fmt.Errorf("write launch agent: %w", err)
	}
	// launchd reads the agent at next login regardless; loading it now is
	// best effort.
	if out, err := exec.Command("launchctl", "load", "-w", path).CombinedOutput(); err != nil {
		slog.Warn("launchctl load failed, agent takes effect at next login", "path", path, "output", strings.TrimSpace(string(out)))
	}
	return Handle{Name: rec.Name, Path: path}, nil
}

func (r *launchdRegistrar) Unregister(rec process.Record) error {
	label := labelPrefix + strings.TrimPrefix(entryName(rec), "drover-")
	path := filepath.Join(r.dir, label+plistSuffix)
	if out, err := exec.Command("launchctl", "unload", path).CombinedOutput(); err != nil {
		slog.Warn("launchctl unload failed", "path", path, "output", strings.TrimSpace(string(out)))
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove launch agent: %w", err)
	}
	return nil
}

func (r *launchdRegistrar) List() ([]Handle, error) {
	matches, err := filepath.Glob(filepath.Join(r.dir, labelPrefix+"*"+plistSuffix))
	if err != nil {
		return nil, err
	}
	handles := make([]Handle, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), plistSuffix)
		handles = append(handles, Handle{
			Name: strings.TrimPrefix(base, labelPrefix),
			Path: m,
		})
	}
	return handles, nil
}

func plistContent(label string, rec process.Record) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	b.WriteString("<plist version=\"1.0\">\n<dict>\n")
	fmt.Fprintf(&b, "\t<key>Label</key>\n\t<string>%s</string>\n", label)
	b.WriteString("\t<key>ProgramArguments</key>\n\t<array>\n")
	b.WriteString("\t\t<string>/bin/sh</string>\n\t\t<string>-c</string>\n")
	fmt.Fprintf(&b, "\t\t<string>%s</string>\n", xmlEscape(rec.Command))
	b.WriteString("\t</array>\n")
	if rec.WorkDir != "" {
		fmt.Fprintf(&b, "\t<key>WorkingDirectory</key>\n\t<string>%s</string>\n", xmlEscape(rec.WorkDir))
	}
	if len(rec.Env) > 0 {
		b.WriteString("\t<key>EnvironmentVariables</key>\n\t<dict>\n")
		keys := make([]string, 0, len(rec.Env))
		for k := range rec.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "\t\t<key>%s</key>\n\t\t<string>%s</string>\n", xmlEscape(k), xmlEscape(rec.Env[k]))
		}
		b.WriteString("\t</dict>\n")
	}
	b.WriteString("\t<key>RunAtLoad</key>\n\t<true/>\n")
	b.WriteString("</dict>\n</plist>\n")
	return b.String()
}

func xmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
