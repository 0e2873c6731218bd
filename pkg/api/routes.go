package api

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API routes with the given router
func (h *Handler) RegisterRoutes(router *mux.Router) {
	// Document operations (by key)
	router.HandleFunc("/collections/{coll}/documents/{key}", h.HandleGetByKey).Methods("GET")
	router.HandleFunc("/collections/{coll}/documents/{key}", h.HandleUpdate).Methods("PUT")
	router.HandleFunc("/collections/{coll}/documents/{key}", h.HandleRemove).Methods("DELETE")

	// Collection reads
	router.HandleFunc("/collections/{coll}/documents", h.HandleInsert).Methods("POST")
	router.HandleFunc("/collections/{coll}/documents", h.HandleFindAll).Methods("GET")
	router.HandleFunc("/collections/{coll}/stream", h.HandleStream).Methods("GET")

	// Predicate-translated queries
	router.HandleFunc("/collections/{coll}/query", h.HandleQuery).Methods("GET")
	router.HandleFunc("/collections/{coll}/query", h.HandleRemoveByQuery).Methods("DELETE")

	// Bulk synchronization
	router.HandleFunc("/collections/{coll}/bulk", h.HandleBulk).Methods("POST")

	// Index operations
	router.HandleFunc("/collections/{coll}/indexes/{field}", h.HandleCreateIndex).Methods("POST")

	// Health
	router.HandleFunc("/health", h.HandleHealth).Methods("GET")
}
