// Package config resolves drover's settings: the data directory, the
// store backend, and diagnostic logging. Values come from an optional
// TOML file in the data directory with DROVER_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/droverhq/drover/internal/store"
)

// EnvHome relocates the whole data directory, mainly for test isolation.
const EnvHome = "DROVER_HOME"

// Settings is the resolved runtime configuration.
type Settings struct {
	DataDir  string
	LogDir   string // per-process log files live here, one append-only file per id
	Store    store.Config
	LogLevel string
	AppLog   string // drover's own rotating diagnostic log; empty disables it
}

type fileConfig struct {
	Store    store.Config `mapstructure:"store"`
	LogLevel string       `mapstructure:"log_level"`
	AppLog   string       `mapstructure:"app_log"`
}

// Load resolves settings from the data dir config file and environment.
func Load() (*Settings, error) {
	dataDir, err := DataDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dataDir)
	v.SetEnvPrefix("DROVER")
	v.AutomaticEnv()
	v.SetDefault("store.type", "json")
	v.SetDefault("store.path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("app_log", filepath.Join(dataDir, "drover.log"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if fc.Store.Path == "" {
		switch fc.Store.Type {
		case "sqlite":
			fc.Store.Path = filepath.Join(dataDir, "processes.db")
		default:
			fc.Store.Path = filepath.Join(dataDir, "processes.json")
		}
	}
	return &Settings{
		DataDir:  dataDir,
		LogDir:   filepath.Join(dataDir, "logs"),
		Store:    fc.Store,
		LogLevel: fc.LogLevel,
		AppLog:   fc.AppLog,
	}, nil
}

// DataDir returns the platform-conventional data directory, honoring the
// DROVER_HOME override.
func DataDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	return defaultDataDir()
}
