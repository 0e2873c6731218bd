package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

// queryPredicate extracts the predicate name and value from request query
// parameters, coercing numeric-looking values the same way filters do.
func queryPredicate(r *http.Request) (domain.NamedPredicate, interface{}, bool) {
	params := r.URL.Query()
	name := params.Get("predicate")
	if name == "" {
		return domain.NamedPredicate{}, nil, false
	}

	raw := params.Get("value")
	var value interface{} = raw

	// Try to convert to number if possible; integer strings parse as floats
	// and match stored integers through the filter's numeric coercion
	if num, err := strconv.ParseFloat(raw, 64); err == nil {
		value = num
	}

	return domain.NamedPredicate{Name: name}, value, true
}

// HandleQuery handles GET requests that look up documents through a
// registered named predicate
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	pred, value, ok := queryPredicate(r)
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Missing predicate parameter")
		return
	}

	log.Printf("INFO: handleQuery called for collection '%s', predicate '%s'", collName, pred.Name)

	store, err := h.stores.Store(collName)
	if err != nil {
		log.Printf("ERROR: Resolving store for collection '%s' failed: %v", collName, err)
		WriteStoreError(w, err)
		return
	}

	docs, err := store.FindAll(r.Context(), pred, value)
	if err != nil {
		log.Printf("ERROR: Query failed for collection '%s', predicate '%s': %v", collName, pred.Name, err)
		WriteStoreError(w, err)
		return
	}

	log.Printf("INFO: Query matched %d documents in collection '%s'", len(docs), collName)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(docs)
}

// HandleRemoveByQuery handles DELETE requests that remove every document
// matching a registered named predicate
func (h *Handler) HandleRemoveByQuery(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	pred, value, ok := queryPredicate(r)
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Missing predicate parameter")
		return
	}

	log.Printf("INFO: handleRemoveByQuery called for collection '%s', predicate '%s'", collName, pred.Name)

	store, err := h.stores.Store(collName)
	if err != nil {
		log.Printf("ERROR: Resolving store for collection '%s' failed: %v", collName, err)
		WriteStoreError(w, err)
		return
	}

	deleted, err := store.RemoveAll(r.Context(), pred, value)
	if err != nil {
		log.Printf("ERROR: RemoveAll failed for collection '%s', predicate '%s': %v", collName, pred.Name, err)
		WriteStoreError(w, err)
		return
	}

	log.Printf("INFO: Removed %d document(s) from collection '%s'", deleted, collName)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"deleted": deleted})
}
