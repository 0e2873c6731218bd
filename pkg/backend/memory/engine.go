package memory

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/adfharrison1/go-docstore/pkg/domain"
	"github.com/adfharrison1/go-docstore/pkg/indexing"
)

// CollectionInfo tracks collection metadata kept alongside the data.
type CollectionInfo struct {
	Name          string
	DocumentCount int64
	LastModified  time.Time
	Dirty         bool
}

// Engine is the in-memory backend: named collections of documents with
// per-field equality indexes for filter pushdown and optional snapshot
// persistence.
type Engine struct {
	mu      sync.RWMutex
	data    map[string]map[string]domain.Document
	infos   map[string]*CollectionInfo
	indexes *indexing.Engine

	keyField string
	dataFile string

	backgroundSave bool
	saveInterval   time.Duration
	backgroundWg   sync.WaitGroup
	stopChan       chan struct{}
}

// NewEngine creates a new engine with the given options applied.
func NewEngine(options ...Option) *Engine {
	engine := &Engine{
		data:         make(map[string]map[string]domain.Document),
		infos:        make(map[string]*CollectionInfo),
		indexes:      indexing.NewEngine(),
		keyField:     "_id",
		saveInterval: 5 * time.Minute,
		stopChan:     make(chan struct{}),
	}
	for _, option := range options {
		option(engine)
	}
	return engine
}

// Collection returns the backend handle for a named collection. The
// collection is materialized on first write.
func (e *Engine) Collection(name string) domain.Backend {
	return &Collection{engine: e, name: name}
}

// CreateIndex builds an equality index on a field so filters probing that
// field can skip the full scan.
func (e *Engine) CreateIndex(collection, field string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.indexes.Create(collection, field); err != nil {
		return err
	}
	e.indexes.Build(collection, field, e.data[collection])
	return nil
}

// DropIndex removes an index from a collection.
func (e *Engine) DropIndex(collection, field string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.indexes.Drop(collection, field)
}

// Indexes returns the indexed field names for a collection.
func (e *Engine) Indexes(collection string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.indexes.Fields(collection)
}

// Stats returns memory usage and collection statistics.
func (e *Engine) Stats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	e.mu.RLock()
	defer e.mu.RUnlock()
	docCount := int64(0)
	for _, info := range e.infos {
		docCount += info.DocumentCount
	}
	return map[string]interface{}{
		"alloc_mb":       m.Alloc / 1024 / 1024,
		"sys_mb":         m.Sys / 1024 / 1024,
		"num_goroutines": runtime.NumGoroutine(),
		"collections":    len(e.infos),
		"documents":      docCount,
	}
}

// Close stops background workers and, when a data file is configured, saves
// a final snapshot.
func (e *Engine) Close() error {
	e.StopBackgroundWorkers()
	if e.dataFile == "" {
		return nil
	}
	if err := e.SaveToFile(e.dataFile); err != nil {
		return fmt.Errorf("saving snapshot on close: %w", err)
	}
	return nil
}

// ensureCollection returns the document map for a collection, creating the
// collection on first use. Caller must hold the write lock.
func (e *Engine) ensureCollection(name string) map[string]domain.Document {
	docs, exists := e.data[name]
	if !exists {
		docs = make(map[string]domain.Document)
		e.data[name] = docs
		e.infos[name] = &CollectionInfo{Name: name, LastModified: time.Now()}
	}
	return docs
}

// markDirty records a mutation against a collection's metadata. Caller must
// hold the write lock.
func (e *Engine) markDirty(name string, countDelta int64) {
	if info, exists := e.infos[name]; exists {
		info.Dirty = true
		info.DocumentCount += countDelta
		info.LastModified = time.Now()
	}
}

func (e *Engine) anyDirty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, info := range e.infos {
		if info.Dirty {
			return true
		}
	}
	return false
}
