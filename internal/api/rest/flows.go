package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/flowgrid/flowgrid-backend/internal/auth"
	"github.com/flowgrid/flowgrid-backend/internal/models"
	"github.com/flowgrid/flowgrid-backend/internal/pkg/validate"
	"github.com/flowgrid/flowgrid-backend/internal/repository"
)

// userID extracts the acting user from the gate-attached identity. API-key
// identities carry no user record and cannot own flows.
func userID(r *http.Request) (string, bool) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil || id.UserID == "" {
		return "", false
	}
	return id.UserID, true
}

// ListFlows handles GET /api/v1/flows
func (h *Handler) ListFlows(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		respondError(w, http.StatusForbidden, "a user identity is required")
		return
	}
	flows, err := h.store.ListFlowsByUser(r.Context(), uid)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list flows")
		return
	}
	if flows == nil {
		flows = []*models.Flow{}
	}
	respondJSON(w, http.StatusOK, flows)
}

// CreateFlow handles POST /api/v1/flows
func (h *Handler) CreateFlow(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		respondError(w, http.StatusForbidden, "a user identity is required")
		return
	}

	var req struct {
		Name       string `json:"name"`
		Definition string `json:"definition"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validate.FlowName(req.Name) {
		respondError(w, http.StatusBadRequest, "invalid flow name")
		return
	}
	if req.Definition == "" {
		req.Definition = "{}"
	}
	if !validate.Definition(req.Definition) {
		respondError(w, http.StatusBadRequest, "invalid flow definition")
		return
	}

	flow := &models.Flow{
		UserID:     uid,
		Name:       req.Name,
		Definition: req.Definition,
	}
	if err := h.store.CreateFlow(r.Context(), flow); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create flow")
		return
	}
	respondJSON(w, http.StatusCreated, flow)
}

// GetFlow handles GET /api/v1/flows/{id}
func (h *Handler) GetFlow(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		respondError(w, http.StatusForbidden, "a user identity is required")
		return
	}

	flow, err := h.store.GetFlow(r.Context(), mux.Vars(r)["id"])
	if err == repository.ErrNotFound {
		respondError(w, http.StatusNotFound, "flow not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get flow")
		return
	}
	if flow.UserID != uid {
		// Ownership is the only authorization the backend does itself.
		respondError(w, http.StatusNotFound, "flow not found")
		return
	}
	respondJSON(w, http.StatusOK, flow)
}

// UpdateFlow handles PUT /api/v1/flows/{id}
func (h *Handler) UpdateFlow(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		respondError(w, http.StatusForbidden, "a user identity is required")
		return
	}

	flow, err := h.store.GetFlow(r.Context(), mux.Vars(r)["id"])
	if err == repository.ErrNotFound || (err == nil && flow.UserID != uid) {
		respondError(w, http.StatusNotFound, "flow not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get flow")
		return
	}

	var req struct {
		Name       *string `json:"name"`
		Definition *string `json:"definition"`
		Deployed   *bool   `json:"deployed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name != nil {
		if !validate.FlowName(*req.Name) {
			respondError(w, http.StatusBadRequest, "invalid flow name")
			return
		}
		flow.Name = *req.Name
	}
	if req.Definition != nil {
		if !validate.Definition(*req.Definition) {
			respondError(w, http.StatusBadRequest, "invalid flow definition")
			return
		}
		flow.Definition = *req.Definition
	}
	if req.Deployed != nil {
		flow.Deployed = *req.Deployed
	}

	if err := h.store.UpdateFlow(r.Context(), flow); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update flow")
		return
	}
	respondJSON(w, http.StatusOK, flow)
}

// DeleteFlow handles DELETE /api/v1/flows/{id}
func (h *Handler) DeleteFlow(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		respondError(w, http.StatusForbidden, "a user identity is required")
		return
	}

	flow, err := h.store.GetFlow(r.Context(), mux.Vars(r)["id"])
	if err == repository.ErrNotFound || (err == nil && flow.UserID != uid) {
		respondError(w, http.StatusNotFound, "flow not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get flow")
		return
	}

	if err := h.store.DeleteFlow(r.Context(), flow.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete flow")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
