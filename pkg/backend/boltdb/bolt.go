// Package boltdb implements the backend contract on top of a bbolt file
// database, one bucket per collection, documents encoded as msgpack.
package boltdb

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

// Engine wraps an open bbolt database.
type Engine struct {
	db       *bbolt.DB
	keyField string
}

// Open creates or opens the bbolt database at path.
func Open(path, keyField string) (*Engine, error) {
	slog.Debug("boltdb open", "path", path)
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	if keyField == "" {
		keyField = "_id"
	}
	return &Engine{db: db, keyField: keyField}, nil
}

// Collection returns the backend handle for a named collection. Its bucket
// is created on first write.
func (e *Engine) Collection(name string) domain.Backend {
	return &Collection{engine: e, bucket: []byte(name), name: name}
}

// Close closes the underlying database.
func (e *Engine) Close() error {
	slog.Debug("boltdb close")
	return e.db.Close()
}

// Collection implements the backend contract over one bucket.
type Collection struct {
	engine *Engine
	bucket []byte
	name   string
}

var _ domain.Backend = (*Collection)(nil)

func (c *Collection) FindOne(ctx context.Context, key string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var doc domain.Document
	err := c.engine.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(c.bucket)
		if bucket == nil {
			return fmt.Errorf("key %q in collection %s: %w", key, c.name, domain.ErrNotFound)
		}
		raw := bucket.Get([]byte(key))
		if raw == nil {
			return fmt.Errorf("key %q in collection %s: %w", key, c.name, domain.ErrNotFound)
		}
		return msgpack.Unmarshal(raw, &doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Collection) Find(ctx context.Context, filter domain.Filter) (<-chan domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slog.Debug("boltdb find", "collection", c.name, "filter", filter)

	// Documents are materialized inside the read transaction; bbolt values
	// are only valid for the transaction's lifetime.
	var snapshot []domain.Document
	err := c.engine.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(c.bucket)
		if bucket == nil {
			return nil
		}
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var doc domain.Document
			if err := msgpack.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("failed to decode document %q: %w", string(k), err)
			}
			if len(filter) == 0 || filter.Matches(doc) {
				snapshot = append(snapshot, doc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make(chan domain.Document, 100)
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

func (c *Collection) ReplaceOne(ctx context.Context, key string, doc domain.Document, upsert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	record := doc.Clone()
	record[c.engine.keyField] = key
	return c.engine.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(c.bucket)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", c.name, err)
		}
		if !upsert && bucket.Get([]byte(key)) == nil {
			return nil
		}
		raw, err := msgpack.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to encode document %q: %w", key, err)
		}
		return bucket.Put([]byte(key), raw)
	})
}

func (c *Collection) UpdateOne(ctx context.Context, key string, cmd domain.UpdateCommand, upsert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.engine.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(c.bucket)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", c.name, err)
		}
		raw := bucket.Get([]byte(key))
		var doc domain.Document
		if raw == nil {
			if !upsert {
				return nil
			}
			doc = domain.Document{c.engine.keyField: key}
		} else {
			if err := msgpack.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("failed to decode document %q: %w", key, err)
			}
		}
		cmd.Apply(doc)
		doc[c.engine.keyField] = key
		encoded, err := msgpack.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode document %q: %w", key, err)
		}
		return bucket.Put([]byte(key), encoded)
	})
}

func (c *Collection) DeleteOne(ctx context.Context, key string) (int64, error) {
	return c.DeleteKeys(ctx, []string{key})
}

func (c *Collection) DeleteKeys(ctx context.Context, keys []string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var deleted int64
	err := c.engine.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(c.bucket)
		if bucket == nil {
			return nil
		}
		for _, key := range keys {
			if bucket.Get([]byte(key)) == nil {
				continue
			}
			if err := bucket.Delete([]byte(key)); err != nil {
				return fmt.Errorf("failed to delete key %q: %w", key, err)
			}
			deleted++
		}
		return nil
	})
	return deleted, err
}

func (c *Collection) DeleteMany(ctx context.Context, filter domain.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var deleted int64
	err := c.engine.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(c.bucket)
		if bucket == nil {
			return nil
		}
		var matched []string
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var doc domain.Document
			if err := msgpack.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("failed to decode document %q: %w", string(k), err)
			}
			if filter.Matches(doc) {
				matched = append(matched, string(k))
			}
		}
		for _, key := range matched {
			if err := bucket.Delete([]byte(key)); err != nil {
				return fmt.Errorf("failed to delete key %q: %w", key, err)
			}
			deleted++
		}
		return nil
	})
	return deleted, err
}

func (c *Collection) InsertMany(ctx context.Context, docs []domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	return c.engine.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(c.bucket)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", c.name, err)
		}
		keys := make([]string, len(docs))
		for i, doc := range docs {
			raw, ok := doc[c.engine.keyField]
			key, isString := raw.(string)
			if !ok || !isString || key == "" {
				return fmt.Errorf("insert into collection %s: %w", c.name, domain.ErrMissingKey)
			}
			if bucket.Get([]byte(key)) != nil {
				return fmt.Errorf("key %q in collection %s: %w", key, c.name, domain.ErrDuplicateKey)
			}
			keys[i] = key
		}
		for i, doc := range docs {
			encoded, err := msgpack.Marshal(doc)
			if err != nil {
				return fmt.Errorf("failed to encode document %q: %w", keys[i], err)
			}
			if err := bucket.Put([]byte(keys[i]), encoded); err != nil {
				return fmt.Errorf("failed to put document %q: %w", keys[i], err)
			}
		}
		return nil
	})
}

// Keys returns every key in the collection in ascending order; used by
// diagnostics and tests.
func (c *Collection) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var keys []string
	err := c.engine.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(c.bucket)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}
