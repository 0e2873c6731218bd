package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

// HandleUpdate handles PUT requests to write a document under a key. The key
// in the URL wins over any key present in the body.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	key := vars["key"]

	log.Printf("INFO: handleUpdate called for collection '%s', key '%s'", collName, key)

	var doc domain.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		log.Printf("ERROR: Decoding body failed: %v", err)
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if doc == nil {
		WriteJSONError(w, http.StatusBadRequest, "Request body must be a JSON object")
		return
	}
	doc[h.stores.KeyField()] = key

	store, err := h.stores.Store(collName)
	if err != nil {
		log.Printf("ERROR: Resolving store for collection '%s' failed: %v", collName, err)
		WriteStoreError(w, err)
		return
	}

	if err := store.Update(r.Context(), doc); err != nil {
		log.Printf("ERROR: Update failed for collection '%s', key '%s': %v", collName, key, err)
		WriteStoreError(w, err)
		return
	}

	log.Printf("INFO: Update successful for collection '%s', key '%s'", collName, key)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}
