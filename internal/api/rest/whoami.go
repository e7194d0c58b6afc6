package rest

import (
	"net/http"

	"github.com/flowgrid/flowgrid-backend/internal/auth"
)

// WhoAmI handles GET /api/v1/whoami - echoes the identity the gate attached.
func (h *Handler) WhoAmI(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		// Protected route without identity means the gate was bypassed.
		respondError(w, http.StatusInternalServerError, "no identity in request context")
		return
	}
	respondJSON(w, http.StatusOK, id)
}
