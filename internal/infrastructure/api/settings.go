package api

import (
	"net/http"

	"shopify-quantity-rules/internal/application"

	"github.com/rs/zerolog"
)

// SettingsHandler serves the per-shop settings
type SettingsHandler struct {
	settings *application.SettingsService
	logger   zerolog.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings *application.SettingsService, logger zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logger,
	}
}

// Get handles GET /api/settings?shop=
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context(), r.URL.Query().Get("shop"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to fetch settings")
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}

// Update handles PUT /api/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to update settings")
		return
	}

	settings, err := h.settings.Update(r.Context(), req.toInput())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to update settings")
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}
