package api

import (
	"encoding/json"
	"net/http"
)

// HandleHealth handles GET requests for service health, including engine
// statistics when the provider exposes them
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status": "ok",
	}

	if sp, ok := h.stores.(StatsProvider); ok {
		response["stats"] = sp.Stats()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
