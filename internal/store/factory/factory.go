// Package factory selects a store backend from configuration.
package factory

import (
	"fmt"

	"github.com/droverhq/drover/internal/store"
	"github.com/droverhq/drover/internal/store/sqlite"
)

// New builds the configured store. The flat JSON document is the
// default; sqlite is available for callers that want a structured file.
func New(cfg store.Config) (store.Store, error) {
	switch cfg.Type {
	case "", "json":
		return store.NewFileStore(cfg.Path), nil
	case "sqlite":
		return sqlite.New(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported store type: %q", cfg.Type)
	}
}
