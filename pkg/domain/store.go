package domain

import "context"

// DocumentStore is the facade contract exposed to application code. The API
// layer consumes this interface so handlers can be tested against a mock.
//
// FindAll and RemoveAll require the predicate to be registered and fail with
// ErrUnsupportedIndex otherwise; Scan is the clearly separate, slower path
// that executes the predicate function over every document and is never
// substituted silently.
type DocumentStore interface {
	Find(ctx context.Context, key string) (Document, error)
	All(ctx context.Context) ([]Document, error)
	AllStream(ctx context.Context) (<-chan Document, error)
	FindAll(ctx context.Context, pred NamedPredicate, value interface{}) ([]Document, error)
	Scan(ctx context.Context, pred NamedPredicate, value interface{}) ([]Document, error)
	Update(ctx context.Context, entity Document) error
	Remove(ctx context.Context, key string) (int64, error)
	RemoveAll(ctx context.Context, pred NamedPredicate, value interface{}) (int64, error)
	Bulk(ctx context.Context, batch BatchPatch) error
}
