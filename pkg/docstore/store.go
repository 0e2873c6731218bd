package docstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

// Store is the document-store facade: CRUD, predicate-translated queries and
// bulk synchronization over a backend collection handle. The handle is
// acquired lazily through the Opener, exactly once; the store is usable
// immediately after construction and every operation queues behind the first
// resolution. An open failure is sticky and fails all subsequent operations.
type Store struct {
	registry *Registry
	cfg      Config

	openOnce sync.Once
	open     domain.Opener
	handle   domain.Backend
	openErr  error
}

var _ domain.DocumentStore = (*Store)(nil)

// New creates a store over a backend that may still be connecting.
func New(open domain.Opener, registry *Registry, opts ...Option) *Store {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{
		registry: registry,
		cfg:      cfg,
		open:     open,
	}
}

// NewWithBackend creates a store over an already-resolved backend handle.
func NewWithBackend(backend domain.Backend, registry *Registry, opts ...Option) *Store {
	return New(func(context.Context) (domain.Backend, error) {
		return backend, nil
	}, registry, opts...)
}

// Registry returns the predicate registry the store consults.
func (s *Store) Registry() *Registry {
	return s.registry
}

func (s *Store) backend(ctx context.Context) (domain.Backend, error) {
	s.openOnce.Do(func() {
		s.handle, s.openErr = s.open(ctx)
	})
	if s.openErr != nil {
		return nil, fmt.Errorf("resolving backend handle: %w", s.openErr)
	}
	return s.handle, nil
}

// Find returns the entity stored under key, or ErrNotFound.
func (s *Store) Find(ctx context.Context, key string) (domain.Document, error) {
	backend, err := s.backend(ctx)
	if err != nil {
		return nil, err
	}
	record, err := backend.FindOne(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.cfg.FromRecord(record), nil
}

// All materializes every entity in the collection, in key order.
func (s *Store) All(ctx context.Context) ([]domain.Document, error) {
	return s.drain(ctx, nil)
}

// AllStream lazily yields every entity in the collection. The stream is
// consumed once and is not restartable; callers wanting a re-usable result
// use All.
func (s *Store) AllStream(ctx context.Context) (<-chan domain.Document, error) {
	backend, err := s.backend(ctx)
	if err != nil {
		return nil, err
	}
	records, err := backend.Find(ctx, nil)
	if err != nil {
		return nil, err
	}

	out := make(chan domain.Document)
	go func() {
		defer close(out)
		for record := range records {
			select {
			case out <- s.cfg.FromRecord(record):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// FindAll returns the entities matching a registered predicate, pushed down
// to the backend as translated criteria. Fails with ErrUnsupportedIndex when
// the predicate has no registered translation.
func (s *Store) FindAll(ctx context.Context, pred domain.NamedPredicate, value interface{}) ([]domain.Document, error) {
	filter, err := s.registry.Translate(pred, value)
	if err != nil {
		return nil, err
	}
	return s.drain(ctx, filter)
}

// Scan returns the entities for which pred.Match holds, by executing the
// predicate function over the full collection. This is the deliberately
// separate, slower path that works without registration.
func (s *Store) Scan(ctx context.Context, pred domain.NamedPredicate, value interface{}) ([]domain.Document, error) {
	backend, err := s.backend(ctx)
	if err != nil {
		return nil, err
	}
	records, err := backend.Find(ctx, nil)
	if err != nil {
		return nil, err
	}

	var results []domain.Document
	for record := range records {
		entity := s.cfg.FromRecord(record)
		if pred.Match(value, entity) {
			results = append(results, entity)
		}
	}
	return results, ctx.Err()
}

// Update upserts an entity by its key. Applying the same entity twice leaves
// the stored state unchanged.
func (s *Store) Update(ctx context.Context, entity domain.Document) error {
	backend, err := s.backend(ctx)
	if err != nil {
		return err
	}
	record := s.cfg.ToRecord(entity)
	key, err := s.cfg.KeyOf(record)
	if err != nil {
		return err
	}
	return backend.ReplaceOne(ctx, key, record, true)
}

// Remove deletes the entity stored under key and reports how many documents
// were removed, so callers can detect a no-op deletion.
func (s *Store) Remove(ctx context.Context, key string) (int64, error) {
	backend, err := s.backend(ctx)
	if err != nil {
		return 0, err
	}
	return backend.DeleteOne(ctx, key)
}

// RemoveAll deletes the entities matching a registered predicate, using the
// same translation path as FindAll.
func (s *Store) RemoveAll(ctx context.Context, pred domain.NamedPredicate, value interface{}) (int64, error) {
	filter, err := s.registry.Translate(pred, value)
	if err != nil {
		return 0, err
	}
	backend, err := s.backend(ctx)
	if err != nil {
		return 0, err
	}
	return backend.DeleteMany(ctx, filter)
}

// Bulk applies a batch patch: classification is fail-fast and happens before
// any backend call, then updates run sequentially in batch order, then one
// bulk insert, then one bulk delete. See runBulk for the failure contract.
func (s *Store) Bulk(ctx context.Context, batch domain.BatchPatch) error {
	plan, err := classify(batch, s.cfg)
	if err != nil {
		return err
	}
	backend, err := s.backend(ctx)
	if err != nil {
		return err
	}
	return runBulk(ctx, backend, plan)
}

func (s *Store) drain(ctx context.Context, filter domain.Filter) ([]domain.Document, error) {
	backend, err := s.backend(ctx)
	if err != nil {
		return nil, err
	}
	records, err := backend.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	var results []domain.Document
	for record := range records {
		results = append(results, s.cfg.FromRecord(record))
	}
	return results, ctx.Err()
}
