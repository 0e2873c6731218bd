// Package backend selects and constructs a concrete store backend.
package backend

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adfharrison1/go-docstore/pkg/backend/boltdb"
	"github.com/adfharrison1/go-docstore/pkg/backend/memory"
	"github.com/adfharrison1/go-docstore/pkg/backend/sqlite"
	"github.com/adfharrison1/go-docstore/pkg/domain"
)

// Engine is the lifecycle seam shared by every backend: per-collection
// handles plus teardown.
type Engine interface {
	Collection(name string) domain.Backend
	Close() error
}

// IndexCreator is implemented by backends that maintain their own equality
// indexes for filter pushdown.
type IndexCreator interface {
	CreateIndex(collection, field string) error
}

// Config selects and parameterizes the backend.
type Config struct {
	// Kind is one of "memory" (default), "bolt", "sqlite".
	Kind string
	// DataDir holds the backend's files.
	DataDir string
	// KeyField is the document field holding the entity key ("_id" default).
	KeyField string
	// BackgroundSave enables periodic snapshots for the memory backend.
	BackgroundSave time.Duration
}

// New creates an Engine based on cfg.Kind. The memory engine loads its
// snapshot (if one exists) and starts its background workers before it is
// returned.
func New(cfg Config) (Engine, error) {
	switch cfg.Kind {
	case "memory", "":
		dataFile := filepath.Join(cfg.DataDir, "docstore"+memory.FileExtension)
		options := []memory.Option{memory.WithDataFile(dataFile)}
		if cfg.KeyField != "" {
			options = append(options, memory.WithKeyField(cfg.KeyField))
		}
		if cfg.BackgroundSave > 0 {
			options = append(options, memory.WithBackgroundSave(cfg.BackgroundSave))
		}
		engine := memory.NewEngine(options...)
		if err := engine.LoadFromFile(dataFile); err != nil {
			return nil, err
		}
		engine.StartBackgroundWorkers()
		return engine, nil
	case "bolt":
		return boltdb.Open(filepath.Join(cfg.DataDir, "docstore.db"), cfg.KeyField)
	case "sqlite":
		return sqlite.Open(filepath.Join(cfg.DataDir, "docstore.sqlite"), cfg.KeyField)
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: memory, bolt, sqlite)", cfg.Kind)
	}
}
