package rest

import (
	"net/http"
	"strconv"

	"github.com/flowgrid/flowgrid-backend/internal/models"
)

// Built-in marketplace catalog. Served from a whitelisted route: browsing
// templates requires no credential.
var templates = []models.FlowTemplate{
	{ID: "tmpl-webhook-fanout", Name: "Webhook Fanout", Description: "Receive a webhook and fan out to multiple targets", Category: "integration"},
	{ID: "tmpl-etl-basic", Name: "Basic ETL", Description: "Extract, transform and load on a schedule", Category: "data"},
	{ID: "tmpl-approval-chain", Name: "Approval Chain", Description: "Multi-step human approval with escalation", Category: "workflow"},
}

// ListTemplates handles GET /api/v1/marketplaces/templates (whitelisted).
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, templates)
}

// ListAuthEvents handles GET /api/v1/auth/events (protected) - the audit
// trail of gate decisions, filterable by email.
func (h *Handler) ListAuthEvents(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	events, err := h.store.ListAuthEvents(r.Context(), r.URL.Query().Get("email"), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list auth events")
		return
	}
	respondJSON(w, http.StatusOK, events)
}
