package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// HandleStream handles GET requests to stream every document in a collection
// as a chunked JSON array. No pagination is applied - clients that need pages
// should use /collections/{coll}/documents instead.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	log.Printf("INFO: handleStream called for collection '%s'", collName)

	store, err := h.stores.Store(collName)
	if err != nil {
		log.Printf("ERROR: Resolving store for collection '%s' failed: %v", collName, err)
		WriteStoreError(w, err)
		return
	}

	docChan, err := store.AllStream(r.Context())
	if err != nil {
		log.Printf("ERROR: Streaming collection '%s' failed: %v", collName, err)
		WriteStoreError(w, err)
		return
	}

	// Set headers for streaming
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Transfer-Encoding", "chunked")
	w.Header().Set("Cache-Control", "no-cache")

	w.Write([]byte("[\n"))

	first := true
	docCount := 0

	for doc := range docChan {
		if !first {
			w.Write([]byte(",\n"))
		}
		first = false

		docJSON, err := json.Marshal(doc)
		if err != nil {
			log.Printf("ERROR: Failed to marshal document: %v", err)
			continue // Skip this document and continue streaming
		}

		if _, err := w.Write(docJSON); err != nil {
			log.Printf("ERROR: Failed to write to response: %v", err)
			return
		}

		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		docCount++
	}

	w.Write([]byte("\n]"))

	log.Printf("INFO: Streamed %d documents from collection '%s'", docCount, collName)
}
