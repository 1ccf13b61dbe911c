package api

import (
	"net/http"

	"shopify-quantity-rules/internal/application"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// RuleHandler serves the rule CRUD endpoints
type RuleHandler struct {
	rules  *application.RuleService
	logger zerolog.Logger
}

// NewRuleHandler creates a new rule handler
func NewRuleHandler(rules *application.RuleService, logger zerolog.Logger) *RuleHandler {
	return &RuleHandler{
		rules:  rules,
		logger: logger,
	}
}

// List handles GET /api/rules?shop=
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.List(r.Context(), r.URL.Query().Get("shop"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to fetch rules")
		return
	}
	respondWithJSON(w, http.StatusOK, rules)
}

// Create handles POST /api/rules
func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to create rule")
		return
	}

	rule, err := h.rules.Create(r.Context(), req.toInput())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to create rule")
		return
	}
	respondWithJSON(w, http.StatusCreated, rule)
}

// Update handles PUT /api/rules/{id}
func (h *RuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to update rule")
		return
	}

	rule, err := h.rules.Update(r.Context(), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to update rule")
		return
	}
	respondWithJSON(w, http.StatusOK, rule)
}

// Delete handles DELETE /api/rules/{id}?shop=
func (h *RuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.rules.Delete(r.Context(), r.URL.Query().Get("shop"), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to delete rule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
