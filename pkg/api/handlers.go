package api

import (
	"github.com/adfharrison1/go-docstore/pkg/domain"
)

// StoreProvider yields the document-store facade for a named collection and
// manages predicate registrations. The server implements it; handler tests
// substitute a mock.
type StoreProvider interface {
	// Store returns the facade for a collection, creating it on first use.
	Store(collection string) (domain.DocumentStore, error)
	// RegisterIndex binds the predicate "by_<field>" for a collection and
	// returns the predicate name.
	RegisterIndex(collection, field string) (string, error)
	// KeyField is the document field holding the entity key.
	KeyField() string
}

// StatsProvider is optionally implemented by providers that expose engine
// statistics for the health endpoint.
type StatsProvider interface {
	Stats() map[string]interface{}
}

// Handler provides HTTP handlers for the document-store API
type Handler struct {
	stores StoreProvider
}

// NewHandler creates a new API handler with dependency injection
func NewHandler(stores StoreProvider) *Handler {
	return &Handler{stores: stores}
}
