// Package rest holds the HTTP handlers behind the gate. Handlers assume the
// gate has already run: a protected route reached with no identity in context
// is a programming error, not a user error.
package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/flowgrid/flowgrid-backend/internal/repository"
)

// Handler manages HTTP request handlers.
type Handler struct {
	store repository.Store
}

// NewHandler creates a new HTTP handler over the given store.
func NewHandler(store repository.Store) *Handler {
	return &Handler{store: store}
}

// SetupRoutes configures the /api/v1 routes. Which of these require a
// credential is decided by the gate and its whitelist, not here.
func SetupRoutes(router *mux.Router, h *Handler) {
	// Whitelisted surface
	router.HandleFunc("/version", h.GetVersion).Methods("GET")
	router.HandleFunc("/marketplaces/templates", h.ListTemplates).Methods("GET")

	// Protected surface
	router.HandleFunc("/whoami", h.WhoAmI).Methods("GET")
	router.HandleFunc("/flows", h.ListFlows).Methods("GET")
	router.HandleFunc("/flows", h.CreateFlow).Methods("POST")
	router.HandleFunc("/flows/{id}", h.GetFlow).Methods("GET")
	router.HandleFunc("/flows/{id}", h.UpdateFlow).Methods("PUT")
	router.HandleFunc("/flows/{id}", h.DeleteFlow).Methods("DELETE")
	router.HandleFunc("/auth/events", h.ListAuthEvents).Methods("GET")
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
