package api

import (
	"net/http"

	"shopify-quantity-rules/internal/application"

	"github.com/rs/zerolog"
)

// AuthHandler runs the OAuth install redirects
type AuthHandler struct {
	oauth  *application.OAuthService
	logger zerolog.Logger
}

// NewAuthHandler creates a new OAuth handler
func NewAuthHandler(oauth *application.OAuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		oauth:  oauth,
		logger: logger,
	}
}

// Begin handles GET /auth?shop= and redirects to Shopify's consent screen
func (h *AuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	authURL, err := h.oauth.BeginInstall(r.Context(), q.Get("shop"), q.Get("return_url"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to start installation")
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback handles GET /auth/callback
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	redirectURL, err := h.oauth.CompleteInstall(r.Context(), r.URL)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to complete installation")
		return
	}

	h.logger.Info().
		Str("shop", r.URL.Query().Get("shop")).
		Str("returnURL", redirectURL).
		Msg("Redirecting to frontend after successful OAuth")

	http.Redirect(w, r, redirectURL, http.StatusFound)
}
