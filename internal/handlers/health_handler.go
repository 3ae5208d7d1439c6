package handlers

import (
	"net/http"
	"time"
)

// Health handles GET /api/health. Devices probe it before deciding
// whether to sync or stay offline.
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
