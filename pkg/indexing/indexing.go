package indexing

import (
	"fmt"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

// Engine maintains per-collection, per-field inverted equality indexes. It
// is not safe for concurrent use on its own; the memory backend serializes
// access under its collection locks.
type Engine struct {
	indexes map[string]map[string]*Index // collection name -> field name -> index
}

// NewEngine creates an empty index engine.
func NewEngine() *Engine {
	return &Engine{
		indexes: make(map[string]map[string]*Index),
	}
}

// Index stores a mapping from a field's value to document keys.
type Index struct {
	Field    string
	Inverted map[interface{}][]string
}

// NewIndex creates an index on a specific field.
func NewIndex(field string) *Index {
	return &Index{
		Field:    field,
		Inverted: make(map[interface{}][]string),
	}
}

// indexable reports whether a field value can serve as an inverted-map key.
// Arrays and objects decoded from JSON or msgpack are not comparable in Go;
// documents holding one in an indexed field stay out of that index and are
// found by the filter scan instead.
func indexable(v interface{}) bool {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

// Build indexes every document in the collection by the index's field.
func (idx *Index) Build(docs map[string]domain.Document) {
	for key, doc := range docs {
		if val, ok := doc[idx.Field]; ok && indexable(val) {
			idx.Inverted[val] = append(idx.Inverted[val], key)
		}
	}
}

// Query returns the document keys whose indexed field holds the given value.
// The result is a copy; later index writes do not mutate it.
func (idx *Index) Query(value interface{}) []string {
	if !indexable(value) {
		return nil
	}
	keys := idx.Inverted[value]
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Update maintains the index across an insert, update or delete; oldDoc is
// nil for inserts, newDoc is nil for deletes.
func (idx *Index) Update(key string, oldDoc, newDoc domain.Document) {
	if oldVal, ok := oldDoc[idx.Field]; ok && indexable(oldVal) {
		keys := idx.Inverted[oldVal]
		for i, k := range keys {
			if k == key {
				idx.Inverted[oldVal] = append(keys[:i], keys[i+1:]...)
				break
			}
		}
	}
	if newVal, ok := newDoc[idx.Field]; ok && indexable(newVal) {
		idx.Inverted[newVal] = append(idx.Inverted[newVal], key)
	}
}

// Create registers an index on a field in a collection.
func (e *Engine) Create(collection, field string) error {
	if e.indexes[collection] == nil {
		e.indexes[collection] = make(map[string]*Index)
	}
	if _, exists := e.indexes[collection][field]; exists {
		return fmt.Errorf("index on field %s already exists in collection %s", field, collection)
	}
	e.indexes[collection][field] = NewIndex(field)
	return nil
}

// Drop removes an index from a collection.
func (e *Engine) Drop(collection, field string) error {
	if _, exists := e.indexes[collection][field]; !exists {
		return fmt.Errorf("index on field %s does not exist in collection %s", field, collection)
	}
	delete(e.indexes[collection], field)
	return nil
}

// Get returns the index on a field in a collection, if any.
func (e *Engine) Get(collection, field string) (*Index, bool) {
	if fields, exists := e.indexes[collection]; exists {
		if idx, exists := fields[field]; exists {
			return idx, true
		}
	}
	return nil, false
}

// Fields returns the indexed field names for a collection.
func (e *Engine) Fields(collection string) []string {
	var fields []string
	for field := range e.indexes[collection] {
		fields = append(fields, field)
	}
	return fields
}

// Build creates the index if needed and rebuilds it from the given documents.
func (e *Engine) Build(collection, field string, docs map[string]domain.Document) {
	if e.indexes[collection] == nil {
		e.indexes[collection] = make(map[string]*Index)
	}
	idx, exists := e.indexes[collection][field]
	if !exists {
		idx = NewIndex(field)
		e.indexes[collection][field] = idx
	} else {
		idx.Inverted = make(map[interface{}][]string)
	}
	idx.Build(docs)
}

// UpdateDocument maintains every index of a collection across one document
// change.
func (e *Engine) UpdateDocument(collection, key string, oldDoc, newDoc domain.Document) {
	for _, idx := range e.indexes[collection] {
		idx.Update(key, oldDoc, newDoc)
	}
}

// Export returns the index definitions (collection -> indexed fields) for
// persistence. Inverted maps are rebuilt from documents on import.
func (e *Engine) Export() map[string][]string {
	defs := make(map[string][]string)
	for collection := range e.indexes {
		if fields := e.Fields(collection); len(fields) > 0 {
			defs[collection] = fields
		}
	}
	return defs
}

// Import rebuilds indexes from exported definitions and current documents.
func (e *Engine) Import(defs map[string][]string, docsByCollection map[string]map[string]domain.Document) {
	for collection, fields := range defs {
		for _, field := range fields {
			e.Build(collection, field, docsByCollection[collection])
		}
	}
}
