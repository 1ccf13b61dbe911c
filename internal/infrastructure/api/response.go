package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopify-quantity-rules/internal/application"
	"shopify-quantity-rules/internal/domain"
	shopifyinfra "shopify-quantity-rules/internal/infrastructure/shopify"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string             `json:"error"`
	Details []ValidationDetail `json:"details,omitempty"`
}

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// respondWithError sends an error JSON response
func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, ErrorResponse{Error: message})
}

// respondWithServiceError maps service errors to status codes.
// Unknown errors are logged and collapse to the route's generic message.
func respondWithServiceError(w http.ResponseWriter, logger zerolog.Logger, err error, message string) {
	var validationErrs validator.ValidationErrors
	var userErrs *shopifyinfra.UserErrorsError

	switch {
	case errors.As(err, &validationErrs):
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Request validation failed",
			Details: validationDetails(validationErrs),
		})
	case errors.Is(err, domain.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrShopNotConnected):
		respondWithError(w, http.StatusConflict, "Shop is not connected; reinstall the app")
	case errors.Is(err, application.ErrInvalidHMAC):
		respondWithError(w, http.StatusUnauthorized, "Invalid signature")
	case errors.Is(err, application.ErrInvalidState):
		respondWithError(w, http.StatusUnauthorized, "Invalid session")
	case errors.As(err, &userErrs):
		logger.Warn().Err(err).Msg("Shopify rejected billing request")
		respondWithError(w, http.StatusBadGateway, userErrs.Error())
	default:
		logger.Error().Err(err).Msg(message)
		respondWithError(w, http.StatusInternalServerError, message)
	}
}
