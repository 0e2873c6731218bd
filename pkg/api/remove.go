package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// HandleRemove handles DELETE requests to remove a single document by key
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	key := vars["key"]

	log.Printf("INFO: handleRemove called for collection '%s', key '%s'", collName, key)

	store, err := h.stores.Store(collName)
	if err != nil {
		log.Printf("ERROR: Resolving store for collection '%s' failed: %v", collName, err)
		WriteStoreError(w, err)
		return
	}

	deleted, err := store.Remove(r.Context(), key)
	if err != nil {
		log.Printf("ERROR: Remove failed for collection '%s', key '%s': %v", collName, key, err)
		WriteStoreError(w, err)
		return
	}

	log.Printf("INFO: Removed %d document(s) from collection '%s'", deleted, collName)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"deleted": deleted})
}
