package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// HandleCreateIndex handles POST requests to register an equality predicate
// for a field, backed by an index where the engine supports one
func (h *Handler) HandleCreateIndex(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	field := vars["field"]

	log.Printf("INFO: handleCreateIndex called for collection '%s', field '%s'", collName, field)

	predicate, err := h.stores.RegisterIndex(collName, field)
	if err != nil {
		log.Printf("ERROR: Registering index on '%s.%s' failed: %v", collName, field, err)
		WriteStoreError(w, err)
		return
	}

	log.Printf("INFO: Registered predicate '%s' for collection '%s'", predicate, collName)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"collection": collName,
		"field":      field,
		"predicate":  predicate,
	})
}
