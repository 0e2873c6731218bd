// Package sqlite implements the backend contract over a single SQLite
// database. Documents are stored as JSON rows:
//
//	documents(collection, key, data)  PRIMARY KEY (collection, key)
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

// Engine wraps the shared database handle.
type Engine struct {
	mu       sync.RWMutex
	db       *sql.DB
	keyField string
}

// Open creates or opens the SQLite database at dbPath.
func Open(dbPath, keyField string) (*Engine, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		key TEXT NOT NULL,
		data TEXT NOT NULL,
		PRIMARY KEY (collection, key)
	)`); err != nil {
		db.Close()
		return nil, err
	}
	if keyField == "" {
		keyField = "_id"
	}
	return &Engine{db: db, keyField: keyField}, nil
}

// Collection returns the backend handle for a named collection.
func (e *Engine) Collection(name string) domain.Backend {
	return &Collection{engine: e, name: name}
}

// Close closes the underlying database.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Collection implements the backend contract over rows sharing one
// collection name.
type Collection struct {
	engine *Engine
	name   string
}

var _ domain.Backend = (*Collection)(nil)

func (c *Collection) FindOne(ctx context.Context, key string) (domain.Document, error) {
	c.engine.mu.RLock()
	defer c.engine.mu.RUnlock()

	var raw string
	err := c.engine.db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE collection = ? AND key = ?",
		c.name, key,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("key %q in collection %s: %w", key, c.name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var doc domain.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %q: %w", key, err)
	}
	return doc, nil
}

func (c *Collection) Find(ctx context.Context, filter domain.Filter) (<-chan domain.Document, error) {
	snapshot, err := c.matching(ctx, filter)
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

// matching reads the collection's rows in key order and keeps the documents
// the filter accepts. Equality filtering happens after decoding; the primary
// key already narrows the read to one collection.
func (c *Collection) matching(ctx context.Context, filter domain.Filter) ([]domain.Document, error) {
	c.engine.mu.RLock()
	defer c.engine.mu.RUnlock()

	rows, err := c.engine.db.QueryContext(ctx,
		"SELECT key, data FROM documents WHERE collection = ? ORDER BY key",
		c.name,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Document
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		var doc domain.Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document %q: %w", key, err)
		}
		if len(filter) == 0 || filter.Matches(doc) {
			results = append(results, doc)
		}
	}
	return results, rows.Err()
}

func (c *Collection) ReplaceOne(ctx context.Context, key string, doc domain.Document, upsert bool) error {
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()

	record := doc.Clone()
	record[c.engine.keyField] = key
	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode document %q: %w", key, err)
	}

	if upsert {
		_, err = c.engine.db.ExecContext(ctx,
			`INSERT INTO documents (collection, key, data) VALUES (?, ?, ?)
			 ON CONFLICT(collection, key) DO UPDATE SET data = excluded.data`,
			c.name, key, string(encoded),
		)
		return err
	}
	_, err = c.engine.db.ExecContext(ctx,
		"UPDATE documents SET data = ? WHERE collection = ? AND key = ?",
		string(encoded), c.name, key,
	)
	return err
}

func (c *Collection) UpdateOne(ctx context.Context, key string, cmd domain.UpdateCommand, upsert bool) error {
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()

	tx, err := c.engine.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE collection = ? AND key = ?",
		c.name, key,
	).Scan(&raw)

	var doc domain.Document
	switch {
	case err == sql.ErrNoRows:
		if !upsert {
			return nil
		}
		doc = domain.Document{c.engine.keyField: key}
	case err != nil:
		return err
	default:
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return fmt.Errorf("failed to decode document %q: %w", key, err)
		}
	}

	cmd.Apply(doc)
	doc[c.engine.keyField] = key
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %q: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (collection, key, data) VALUES (?, ?, ?)
		 ON CONFLICT(collection, key) DO UPDATE SET data = excluded.data`,
		c.name, key, string(encoded),
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (c *Collection) DeleteOne(ctx context.Context, key string) (int64, error) {
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()

	res, err := c.engine.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND key = ?",
		c.name, key,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *Collection) DeleteKeys(ctx context.Context, keys []string) (int64, error) {
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()

	tx, err := c.engine.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var deleted int64
	for _, key := range keys {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM documents WHERE collection = ? AND key = ?",
			c.name, key,
		)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		deleted += n
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return deleted, nil
}

func (c *Collection) DeleteMany(ctx context.Context, filter domain.Filter) (int64, error) {
	matched, err := c.matching(ctx, filter)
	if err != nil {
		return 0, err
	}
	keys := make([]string, 0, len(matched))
	for _, doc := range matched {
		if key, ok := doc[c.engine.keyField].(string); ok {
			keys = append(keys, key)
		}
	}
	return c.DeleteKeys(ctx, keys)
}

func (c *Collection) InsertMany(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	c.engine.mu.Lock()
	defer c.engine.mu.Unlock()

	tx, err := c.engine.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	keys := make([]string, len(docs))
	for i, doc := range docs {
		raw, ok := doc[c.engine.keyField]
		key, isString := raw.(string)
		if !ok || !isString || key == "" {
			return fmt.Errorf("insert into collection %s: %w", c.name, domain.ErrMissingKey)
		}
		var existing int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM documents WHERE collection = ? AND key = ?",
			c.name, key,
		).Scan(&existing); err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("key %q in collection %s: %w", key, c.name, domain.ErrDuplicateKey)
		}
		keys[i] = key
	}

	for i, doc := range docs {
		encoded, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode document %q: %w", keys[i], err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO documents (collection, key, data) VALUES (?, ?, ?)",
			c.name, keys[i], string(encoded),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}
