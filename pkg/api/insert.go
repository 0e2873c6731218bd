package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/oklog/ulid/v2"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

// HandleInsert handles POST requests to add a document to a collection. A
// document without a key field is assigned a fresh ULID key.
func (h *Handler) HandleInsert(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	log.Printf("INFO: handleInsert called for collection '%s'", collName)

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

	keyField := h.stores.KeyField()
	if _, exists := doc[keyField]; !exists {
		doc[keyField] = ulid.Make().String()
	}

	store, err := h.stores.Store(collName)
	if err != nil {
		log.Printf("ERROR: Resolving store for collection '%s' failed: %v", collName, err)
		WriteStoreError(w, err)
		return
	}

	if err := store.Update(r.Context(), doc); err != nil {
		log.Printf("ERROR: Insert failed for collection '%s': %v", collName, err)
		WriteStoreError(w, err)
		return
	}

	log.Printf("INFO: Insert successful for collection '%s', key '%v'", collName, doc[keyField])
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(doc)
}
