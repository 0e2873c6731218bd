package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// HandleGetByKey handles GET requests to retrieve a single document by key
func (h *Handler) HandleGetByKey(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	key := vars["key"]

	log.Printf("INFO: handleGetByKey called for collection '%s', key '%s'", collName, key)

	store, err := h.stores.Store(collName)
	if err != nil {
		log.Printf("ERROR: Resolving store for collection '%s' failed: %v", collName, err)
		WriteStoreError(w, err)
		return
	}

	doc, err := store.Find(r.Context(), key)
	if err != nil {
		log.Printf("ERROR: Find failed for collection '%s', key '%s': %v", collName, key, err)
		WriteStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}
