package server

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/adfharrison1/go-docstore/pkg/api"
	"github.com/adfharrison1/go-docstore/pkg/backend"
	"github.com/adfharrison1/go-docstore/pkg/docstore"
	"github.com/adfharrison1/go-docstore/pkg/domain"
)

// collectionHandle pairs a lazily opened store facade with its predicate
// registry so index registrations survive across requests.
type collectionHandle struct {
	store    *docstore.Store
	registry *docstore.Registry
}

// Server wires the storage engine, per-collection store facades and the HTTP
// router together.
type Server struct {
	router     *mux.Router
	engine     backend.Engine
	keyField   string
	authSecret string

	mu     sync.Mutex
	stores map[string]*collectionHandle
}

// Option configures a Server
type Option func(*Server)

// WithKeyField overrides the document field used as the entity key
func WithKeyField(field string) Option {
	return func(s *Server) { s.keyField = field }
}

// WithAuthSecret enables bearer-token authentication on all routes except
// /health
func WithAuthSecret(secret string) Option {
	return func(s *Server) { s.authSecret = secret }
}

// NewServer creates a new instance of Server on top of a storage engine.
func NewServer(engine backend.Engine, opts ...Option) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		engine:   engine,
		keyField: docstore.DefaultKeyField,
		stores:   make(map[string]*collectionHandle),
	}
	for _, opt := range opts {
		opt(s)
	}

	handler := api.NewHandler(s)
	handler.RegisterRoutes(s.router)

	s.router.Use(api.RequestID)
	s.router.Use(api.RequestLogger)
	if s.authSecret != "" {
		s.router.Use(api.JWTAuth(s.authSecret))
	}

	// Customize NotFoundHandler to log 404s
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("WARN: No route found for %s %s", r.Method, r.URL.Path)
		http.NotFound(w, r)
	})

	return s
}

var _ api.StoreProvider = (*Server)(nil)

// Store returns the document-store facade for a collection, creating it on
// first use. The backend handle itself resolves lazily on first operation.
func (s *Server) Store(collection string) (domain.DocumentStore, error) {
	return s.handle(collection).store, nil
}

func (s *Server) handle(collection string) *collectionHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.stores[collection]
	if !ok {
		registry := docstore.NewRegistry()
		open := func(ctx context.Context) (domain.Backend, error) {
			return s.engine.Collection(collection), nil
		}
		h = &collectionHandle{
			store:    docstore.New(open, registry, docstore.WithKeyField(s.keyField)),
			registry: registry,
		}
		s.stores[collection] = h
	}
	return h
}

// RegisterIndex binds the equality predicate "by_<field>" for a collection
// and, when the engine maintains real indexes, creates one for the field.
func (s *Server) RegisterIndex(collection, field string) (string, error) {
	pred := domain.FieldEquals(field)
	s.handle(collection).registry.Register(pred, field)

	if creator, ok := s.engine.(backend.IndexCreator); ok {
		if err := creator.CreateIndex(collection, field); err != nil {
			return "", err
		}
	}

	return pred.Name, nil
}

// KeyField is the document field holding the entity key
func (s *Server) KeyField() string {
	return s.keyField
}

// Stats exposes engine statistics for the health endpoint when the engine
// provides them.
func (s *Server) Stats() map[string]interface{} {
	if sp, ok := s.engine.(interface{ Stats() map[string]interface{} }); ok {
		return sp.Stats()
	}
	return map[string]interface{}{}
}

// Router exposes the internal mux.Router.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close shuts down the underlying storage engine
func (s *Server) Close() error {
	return s.engine.Close()
}
