package domain

import "context"

// Backend is the consumed collection contract: the operations a concrete
// store must provide for the facade to build on. Implementations serialize
// per-key writes; cross-call atomicity is not part of the contract.
//
// FindOne fails with ErrNotFound when no document has the key. Find returns
// a lazily consumed channel over matching documents (nil or empty filter
// means all documents) in ascending key order; the channel is closed when
// exhausted or when ctx is cancelled. UpdateOne and ReplaceOne without
// upsert are no-ops when the key matches nothing.
type Backend interface {
	FindOne(ctx context.Context, key string) (Document, error)
	Find(ctx context.Context, filter Filter) (<-chan Document, error)
	ReplaceOne(ctx context.Context, key string, doc Document, upsert bool) error
	UpdateOne(ctx context.Context, key string, cmd UpdateCommand, upsert bool) error
	DeleteOne(ctx context.Context, key string) (int64, error)
	DeleteKeys(ctx context.Context, keys []string) (int64, error)
	DeleteMany(ctx context.Context, filter Filter) (int64, error)
	InsertMany(ctx context.Context, docs []Document) error
}

// Opener resolves a backend collection handle. The facade invokes it exactly
// once, on first use, so a store can be constructed while the underlying
// connection is still being established.
type Opener func(ctx context.Context) (Backend, error)
