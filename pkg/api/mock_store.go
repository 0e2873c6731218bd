package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

// MockStore provides a mock implementation of domain.DocumentStore for
// handler testing
type MockStore struct {
	mu   sync.RWMutex
	docs map[string]domain.Document

	findCalls   int
	allCalls    int
	streamCalls int
	updateCalls int
	removeCalls int
	bulkCalls   int
	queryCalls  int

	// Err, when set, is returned by every operation
	Err error
}

// NewMockStore creates an empty mock store
func NewMockStore() *MockStore {
	return &MockStore{docs: make(map[string]domain.Document)}
}

var _ domain.DocumentStore = (*MockStore)(nil)

// Seed places a document directly into the mock, keyed by "_id"
func (m *MockStore) Seed(doc domain.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[fmt.Sprintf("%v", doc["_id"])] = doc
}

func (m *MockStore) Find(ctx context.Context, key string) (domain.Document, error) {
	m.mu.Lock()
	m.findCalls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[key]
	if !ok {
		return nil, fmt.Errorf("document %q: %w", key, domain.ErrNotFound)
	}
	return doc, nil
}

func (m *MockStore) All(ctx context.Context) ([]domain.Document, error) {
	m.mu.Lock()
	m.allCalls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	results := make([]domain.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		results = append(results, doc)
	}
	return results, nil
}

func (m *MockStore) AllStream(ctx context.Context) (<-chan domain.Document, error) {
	m.mu.Lock()
	m.streamCalls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	docs, _ := m.All(ctx)
	out := make(chan domain.Document, len(docs))
	for _, doc := range docs {
		out <- doc
	}
	close(out)
	return out, nil
}

func (m *MockStore) FindAll(ctx context.Context, pred domain.NamedPredicate, value interface{}) ([]domain.Document, error) {
	m.mu.Lock()
	m.queryCalls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	docs, _ := m.All(ctx)
	var results []domain.Document
	for _, doc := range docs {
		if pred.Match != nil && pred.Match(value, doc) {
			results = append(results, doc)
		}
	}
	return results, nil
}

func (m *MockStore) Scan(ctx context.Context, pred domain.NamedPredicate, value interface{}) ([]domain.Document, error) {
	return m.FindAll(ctx, pred, value)
}

func (m *MockStore) Update(ctx context.Context, entity domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++

	if m.Err != nil {
		return m.Err
	}

	key, ok := entity["_id"].(string)
	if !ok || key == "" {
		return fmt.Errorf("entity: %w", domain.ErrMissingKey)
	}
	m.docs[key] = entity
	return nil
}

func (m *MockStore) Remove(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeCalls++

	if m.Err != nil {
		return 0, m.Err
	}

	if _, ok := m.docs[key]; !ok {
		return 0, nil
	}
	delete(m.docs, key)
	return 1, nil
}

func (m *MockStore) RemoveAll(ctx context.Context, pred domain.NamedPredicate, value interface{}) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryCalls++

	if m.Err != nil {
		return 0, m.Err
	}

	var deleted int64
	for key, doc := range m.docs {
		if pred.Match != nil && pred.Match(value, doc) {
			delete(m.docs, key)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MockStore) Bulk(ctx context.Context, batch domain.BatchPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bulkCalls++

	if m.Err != nil {
		return m.Err
	}
	return nil
}

// MockProvider implements StoreProvider over a fixed set of mock stores
type MockProvider struct {
	mu     sync.Mutex
	stores map[string]*MockStore

	// StoreErr, when set, is returned by Store
	StoreErr error
	// IndexErr, when set, is returned by RegisterIndex
	IndexErr error

	registered []string
}

// NewMockProvider creates a provider with no collections
func NewMockProvider() *MockProvider {
	return &MockProvider{stores: make(map[string]*MockStore)}
}

var _ StoreProvider = (*MockProvider)(nil)

// Mock returns the mock store for a collection, creating it if needed
func (p *MockProvider) Mock(collection string) *MockStore {
	p.mu.Lock()
	defer p.mu.Unlock()
	store, ok := p.stores[collection]
	if !ok {
		store = NewMockStore()
		p.stores[collection] = store
	}
	return store
}

func (p *MockProvider) Store(collection string) (domain.DocumentStore, error) {
	if p.StoreErr != nil {
		return nil, p.StoreErr
	}
	return p.Mock(collection), nil
}

func (p *MockProvider) RegisterIndex(collection, field string) (string, error) {
	if p.IndexErr != nil {
		return "", p.IndexErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, collection+"."+field)
	return "by_" + field, nil
}

func (p *MockProvider) KeyField() string {
	return "_id"
}
