package docstore

import (
	"fmt"
	"sync"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

// Registry maps predicate names to backend query translations. Application
// code passes predicates around as plain filter functions so an in-memory
// scan can execute them directly, but a real backend needs declarative
// criteria; the registry is the seam that lets the same predicate identity
// serve both purposes.
//
// Only equality on a single field is supported. Entries are meant to be
// added once during store setup and read thereafter.
type Registry struct {
	mu     sync.RWMutex
	fields map[string]string // predicate name -> bound field
}

// NewRegistry creates an empty predicate registry.
func NewRegistry() *Registry {
	return &Registry{
		fields: make(map[string]string),
	}
}

// Register binds pred's name to an equality fragment on the given field and
// returns the registry for chaining.
func (r *Registry) Register(pred domain.NamedPredicate, field string) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fields[pred.Name] = field
	return r
}

// Translate produces the backend criteria "bound field equals value" for a
// registered predicate. It fails with ErrUnsupportedIndex when the predicate
// was never registered; there is no fallback to a scan here.
func (r *Registry) Translate(pred domain.NamedPredicate, value interface{}) (domain.Filter, error) {
	r.mu.RLock()
	field, exists := r.fields[pred.Name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("predicate %q: %w", pred.Name, domain.ErrUnsupportedIndex)
	}
	return domain.Filter{field: value}, nil
}

// Registered reports whether a translation exists for the predicate name.
func (r *Registry) Registered(pred domain.NamedPredicate) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.fields[pred.Name]
	return exists
}
