package docstore

import (
	"fmt"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

// DefaultKeyField is the document field holding the entity key unless
// configured otherwise.
const DefaultKeyField = "_id"

// Config carries the entity construction hooks for a store. FromRecord turns
// a raw backend record into an entity, ToRecord the reverse; both default to
// identity so entities are plain documents out of the box.
type Config struct {
	KeyField   string
	FromRecord func(domain.Document) domain.Document
	ToRecord   func(domain.Document) domain.Document
}

func defaultConfig() Config {
	identity := func(doc domain.Document) domain.Document { return doc }
	return Config{
		KeyField:   DefaultKeyField,
		FromRecord: identity,
		ToRecord:   identity,
	}
}

// KeyOf extracts the entity key from a record. Keys are strings; a missing
// or non-string key field is an error.
func (c Config) KeyOf(doc domain.Document) (string, error) {
	raw, exists := doc[c.KeyField]
	if !exists {
		return "", fmt.Errorf("field %q: %w", c.KeyField, domain.ErrMissingKey)
	}
	key, ok := raw.(string)
	if !ok || key == "" {
		return "", fmt.Errorf("field %q is not a non-empty string: %w", c.KeyField, domain.ErrMissingKey)
	}
	return key, nil
}

type Option func(*Config)

func WithKeyField(field string) Option {
	return func(cfg *Config) {
		cfg.KeyField = field
	}
}

func WithFromRecord(fn func(domain.Document) domain.Document) Option {
	return func(cfg *Config) {
		cfg.FromRecord = fn
	}
}

func WithToRecord(fn func(domain.Document) domain.Document) Option {
	return func(cfg *Config) {
		cfg.ToRecord = fn
	}
}
