package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

// MaxBulkOperations caps the number of entries accepted in one bulk request
const MaxBulkOperations = 1000

// BulkRequest is the payload for bulk synchronization
type BulkRequest struct {
	Operations domain.BatchPatch `json:"operations"`
}

// BulkResponse reports how many operations were applied
type BulkResponse struct {
	Applied int `json:"applied"`
}

// HandleBulk handles POST requests that apply a batch of keyed patches in
// one pass: merges first, then inserts, then deletes.
func (h *Handler) HandleBulk(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	log.Printf("INFO: handleBulk called for collection '%s'", collName)

	var req BulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("ERROR: Decoding bulk body failed: %v", err)
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Operations) == 0 {
		WriteJSONError(w, http.StatusBadRequest, "No operations provided")
		return
	}
	if len(req.Operations) > MaxBulkOperations {
		WriteJSONError(w, http.StatusBadRequest,
			fmt.Sprintf("Too many operations: %d (max %d)", len(req.Operations), MaxBulkOperations))
		return
	}

	store, err := h.stores.Store(collName)
	if err != nil {
		log.Printf("ERROR: Resolving store for collection '%s' failed: %v", collName, err)
		WriteStoreError(w, err)
		return
	}

	if err := store.Bulk(r.Context(), req.Operations); err != nil {
		log.Printf("ERROR: Bulk failed for collection '%s': %v", collName, err)
		WriteStoreError(w, err)
		return
	}

	log.Printf("INFO: Bulk applied %d operations to collection '%s'", len(req.Operations), collName)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(BulkResponse{Applied: len(req.Operations)})
}
