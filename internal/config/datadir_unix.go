//go:build !windows

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

func defaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".drover"), nil
}
