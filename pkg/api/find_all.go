package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

// FindAllResponse wraps a page of documents with pagination metadata
type FindAllResponse struct {
	Documents []domain.Document `json:"documents"`
	Total     int               `json:"total"`
	Offset    int               `json:"offset"`
	Limit     int               `json:"limit"`
	HasNext   bool              `json:"has_next"`
	HasPrev   bool              `json:"has_prev"`
}

// HandleFindAll handles GET requests to list documents in a collection with
// offset/limit pagination
func (h *Handler) HandleFindAll(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	log.Printf("INFO: handleFindAll called for collection '%s'", collName)

	queryParams := r.URL.Query()
	offset := 0
	limit := 0
	if v := queryParams.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteJSONError(w, http.StatusBadRequest, "Invalid offset parameter")
			return
		}
		offset = n
	}
	if v := queryParams.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteJSONError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = n
	}

	store, err := h.stores.Store(collName)
	if err != nil {
		log.Printf("ERROR: Resolving store for collection '%s' failed: %v", collName, err)
		WriteStoreError(w, err)
		return
	}

	docs, err := store.All(r.Context())
	if err != nil {
		log.Printf("ERROR: Listing collection '%s' failed: %v", collName, err)
		WriteStoreError(w, err)
		return
	}

	total := len(docs)
	page := docs
	if offset >= total {
		page = []domain.Document{}
	} else {
		page = page[offset:]
	}
	if limit > 0 && limit < len(page) {
		page = page[:limit]
	}

	log.Printf("INFO: Found %d documents in collection '%s' (returning %d)", total, collName, len(page))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(FindAllResponse{
		Documents: page,
		Total:     total,
		Offset:    offset,
		Limit:     limit,
		HasNext:   offset+len(page) < total,
		HasPrev:   offset > 0,
	})
}
