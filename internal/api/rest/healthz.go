package rest

import (
	"encoding/json"
	"net/http"
)

// Healthz handles GET /health - liveness probe. Lives outside /api/v1 so the
// gate classifies it not-in-scope and it never touches the identity store.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "flowgrid-backend",
	})
}

// GetVersion handles GET /api/v1/version (whitelisted).
func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"version": Version,
	})
}

// Version is stamped at build time via -ldflags.
var Version = "dev"
