package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

const findChanBuffer = 100

// Collection is a per-collection view over the engine implementing the
// backend contract. Reads return clones so callers can mutate results
// freely; Find takes a snapshot under the read lock and emits it lazily.
type Collection struct {
	engine *Engine
	name   string
}

var _ domain.Backend = (*Collection)(nil)

// FindOne retrieves the document stored under key.
func (c *Collection) FindOne(ctx context.Context, key string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.engine.mu.RLock()
	defer c.engine.mu.RUnlock()

	doc, exists := c.engine.data[c.name][key]
	if !exists {
		return nil, fmt.Errorf("key %q in collection %s: %w", key, c.name, domain.ErrNotFound)
	}
	return doc.Clone(), nil
}

// Find yields matching documents in ascending key order, using index
// optimization when every probed field allows it.
func (c *Collection) Find(ctx context.Context, filter domain.Filter) (<-chan domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snapshot := c.snapshot(filter)

	out := make(chan domain.Document, findChanBuffer)
	go func() {
		defer close(out)
		for _, doc := range snapshot {
			select {
			case out <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// snapshot collects matching document clones under the read lock so the
// emitting goroutine never touches live engine state.
func (c *Collection) snapshot(filter domain.Filter) []domain.Document {
	c.engine.mu.RLock()
	defer c.engine.mu.RUnlock()

	docs := c.engine.data[c.name]

	candidates, useIndex := c.optimizeWithIndexes(filter)
	if !useIndex {
		candidates = make([]string, 0, len(docs))
		for key := range docs {
			candidates = append(candidates, key)
		}
	}
	sort.Strings(candidates)

	var snapshot []domain.Document
	for _, key := range candidates {
		doc, exists := docs[key]
		if !exists {
			continue
		}
		if len(filter) == 0 || filter.Matches(doc) {
			snapshot = append(snapshot, doc.Clone())
		}
	}
	return snapshot
}

// optimizeWithIndexes returns candidate keys when at least one probed field
// is indexed; multiple indexed fields are intersected (AND logic). Caller
// must hold at least the read lock.
func (c *Collection) optimizeWithIndexes(filter domain.Filter) ([]string, bool) {
	var results [][]string
	for field, expected := range filter {
		if idx, exists := c.engine.indexes.Get(c.name, field); exists {
			results = append(results, idx.Query(expected))
		}
	}
	if len(results) == 0 {
		return nil, false
	}
	if len(results) == 1 {
		return results[0], true
	}
	return intersect(results...), true
}

func intersect(slices ...[]string) []string {
	counts := make(map[string]int)
	for _, slice := range slices {
		for _, key := range slice {
			counts[key]++
		}
	}
	var result []string
	for key, count := range counts {
		if count == len(slices) {
			result = append(result, key)
		}
	}
	return result
}

// ReplaceOne stores doc under key, overwriting any previous document. With
// upsert false a missing key matches nothing and the call is a no-op.
func (c *Collection) ReplaceOne(ctx context.Context, key string, doc domain.Document, upsert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()

	docs := c.engine.ensureCollection(c.name)
	oldDoc, exists := docs[key]
	if !exists && !upsert {
		return nil
	}

	record := doc.Clone()
	record[c.engine.keyField] = key
	docs[key] = record
	c.engine.indexes.UpdateDocument(c.name, key, oldDoc, record)

	var delta int64
	if !exists {
		delta = 1
	}
	c.engine.markDirty(c.name, delta)
	return nil
}

// UpdateOne applies a partial-update command to the document under key. With
// upsert false a missing key matches nothing and the call is a no-op; with
// upsert true the command is applied to a fresh document carrying the key.
func (c *Collection) UpdateOne(ctx context.Context, key string, cmd domain.UpdateCommand, upsert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()

	docs := c.engine.ensureCollection(c.name)
	doc, exists := docs[key]
	if !exists {
		if !upsert {
			return nil
		}
		doc = domain.Document{c.engine.keyField: key}
	}

	var oldDoc domain.Document
	if exists {
		oldDoc = doc.Clone()
	}
	cmd.Apply(doc)
	doc[c.engine.keyField] = key
	docs[key] = doc
	c.engine.indexes.UpdateDocument(c.name, key, oldDoc, doc)

	var delta int64
	if !exists {
		delta = 1
	}
	c.engine.markDirty(c.name, delta)
	return nil
}

// DeleteOne removes the document under key, reporting 0 or 1.
func (c *Collection) DeleteOne(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()
	return c.deleteLocked(key), nil
}

// DeleteKeys removes every listed key in one call, reporting how many
// documents actually existed.
func (c *Collection) DeleteKeys(ctx context.Context, keys []string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()

	var deleted int64
	for _, key := range keys {
		deleted += c.deleteLocked(key)
	}
	return deleted, nil
}

// DeleteMany removes every document matching the filter.
func (c *Collection) DeleteMany(ctx context.Context, filter domain.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()

	docs := c.engine.data[c.name]
	var matched []string
	for key, doc := range docs {
		if filter.Matches(doc) {
			matched = append(matched, key)
		}
	}

	var deleted int64
	for _, key := range matched {
		deleted += c.deleteLocked(key)
	}
	return deleted, nil
}

// InsertMany adds new documents in one call. Every document is validated
// before any is stored, so a failed batch inserts nothing.
func (c *Collection) InsertMany(ctx context.Context, docs []domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()

	existing := c.engine.ensureCollection(c.name)
	keys := make([]string, len(docs))
	for i, doc := range docs {
		raw, ok := doc[c.engine.keyField]
		key, isString := raw.(string)
		if !ok || !isString || key == "" {
			return fmt.Errorf("insert into collection %s: %w", c.name, domain.ErrMissingKey)
		}
		if _, exists := existing[key]; exists {
			return fmt.Errorf("key %q in collection %s: %w", key, c.name, domain.ErrDuplicateKey)
		}
		keys[i] = key
	}

	for i, doc := range docs {
		record := doc.Clone()
		existing[keys[i]] = record
		c.engine.indexes.UpdateDocument(c.name, keys[i], nil, record)
	}
	c.engine.markDirty(c.name, int64(len(docs)))
	return nil
}

// deleteLocked removes one key and maintains indexes. Caller must hold the
// write lock.
func (c *Collection) deleteLocked(key string) int64 {
	docs := c.engine.data[c.name]
	doc, exists := docs[key]
	if !exists {
		return 0
	}
	c.engine.indexes.UpdateDocument(c.name, key, doc, nil)
	delete(docs, key)
	c.engine.markDirty(c.name, -1)
	return 1
}
