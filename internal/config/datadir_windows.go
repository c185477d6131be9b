//go:build windows

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

func defaultDataDir() (string, error) {
	// UserConfigDir resolves to %AppData% on Windows.
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve application data directory: %w", err)
	}
	return filepath.Join(base, "drover"), nil
}
