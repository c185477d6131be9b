package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)

	s, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.DataDir != home {
		t.Fatalf("data dir mismatch: %q", s.DataDir)
	}
	if s.LogDir != filepath.Join(home, "logs") {
		t.Fatalf("log dir mismatch: %q", s.LogDir)
	}
	if s.Store.Type != "json" || s.Store.Path != filepath.Join(home, "processes.json") {
		t.Fatalf("store defaults mismatch: %+v", s.Store)
	}
	if s.LogLevel != "info" {
		t.Fatalf("log level mismatch: %q", s.LogLevel)
	}
}

func TestLoadConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)
	cfg := `log_level = "debug"

[store]
type = "sqlite"
`
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	s, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.LogLevel != "debug" {
		t.Fatalf("log level not read: %q", s.LogLevel)
	}
	if s.Store.Type != "sqlite" || s.Store.Path != filepath.Join(home, "processes.db") {
		t.Fatalf("sqlite store default path mismatch: %+v", s.Store)
	}
}

func TestDataDirEnvOverride(t *testing.T) {
	t.Setenv(EnvHome, "/custom/home")
	dir, err := DataDir()
	if err != nil || dir != "/custom/home" {
		t.Fatalf("override mismatch: %q err=%v", dir, err)
	}
}
