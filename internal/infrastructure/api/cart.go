package api

import (
	"net/http"

	"shopify-quantity-rules/internal/application"
	"shopify-quantity-rules/internal/infrastructure/metrics"

	"github.com/rs/zerolog"
)

// CartHandler validates storefront carts
type CartHandler struct {
	carts  *application.CartValidationService
	logger zerolog.Logger
}

// NewCartHandler creates a new cart validation handler
func NewCartHandler(carts *application.CartValidationService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		carts:  carts,
		logger: logger,
	}
}

// Validate handles POST /api/validate-cart
func (h *CartHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := decodeJSON(r, &req); err != nil {
		metrics.CartValidationsTotal.WithLabelValues(metrics.StatusRejected).Inc()
		respondWithServiceError(w, h.logger, err, "Failed to validate cart")
		return
	}

	result, err := h.carts.Validate(r.Context(), req.Shop, req.toItems())
	if err != nil {
		metrics.CartValidationsTotal.WithLabelValues(metrics.StatusError).Inc()
		respondWithServiceError(w, h.logger, err, "Failed to validate cart")
		return
	}

	outcome := "valid"
	if !result.Valid {
		outcome = "invalid"
	}
	metrics.CartValidationsTotal.WithLabelValues(outcome).Inc()
	for _, v := range result.Violations {
		metrics.CartViolationsTotal.WithLabelValues(string(v.Type)).Inc()
	}

	respondWithJSON(w, http.StatusOK, result)
}
