package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/infrastructure/metrics"

	"github.com/rs/zerolog"
)

// AccessChecker decides whether a shop may use the gated API
type AccessChecker interface {
	Enabled() bool
	CheckAccess(ctx context.Context, shopDomain string) (*domain.BillingStatus, error)
	SubscribeURL(shopDomain string) string
}

// BillingGate answers 402 Payment Required once a shop's trial has lapsed without an active subscription
func BillingGate(checker AccessChecker, logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !checker.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			shop, ok := shopFromRequest(r)
			if !ok {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("query", r.URL.Query().Get("shop")).
					Str("header", r.Header.Get("X-Shopify-Shop-Domain")).
					Msg("Conflicting shop in request")
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Conflicting shop in request"})
				return
			}
			if shop == "" {
				// The handler reports the missing shop
				next.ServeHTTP(w, r)
				return
			}

			status, err := checker.CheckAccess(r.Context(), shop)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidInput) {
					writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
					return
				}
				logger.Error().Err(err).Str("shop", shop).Msg("Failed to check subscription")
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to check subscription"})
				return
			}

			if !status.HasAccess() {
				metrics.BillingOperationsTotal.WithLabelValues("gate", metrics.StatusBlocked).Inc()
				logger.Info().
					Str("shop", status.Shop).
					Str("status", string(status.Status)).
					Time("trialEndsAt", status.TrialEndsAt).
					Msg("Subscription required")
				writeJSON(w, http.StatusPaymentRequired, map[string]string{
					"error":        "Subscription required",
					"subscribeUrl": checker.SubscribeURL(status.Shop),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// shopFromRequest resolves the shop named by the query, the Shopify header and a JSON body.
// Handlers read the body on writes and the query on reads, so every source must agree.
func shopFromRequest(r *http.Request) (string, bool) {
	shop := ""
	for _, candidate := range []string{
		r.URL.Query().Get("shop"),
		r.Header.Get("X-Shopify-Shop-Domain"),
		bodyShop(r),
	} {
		candidate = domain.NormalizeShopDomain(candidate)
		if candidate == "" {
			continue
		}
		if shop != "" && candidate != shop {
			return "", false
		}
		shop = candidate
	}
	return shop, true
}

// bodyShop peeks at the shop field of a JSON body and restores the body for the handler
func bodyShop(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var payload struct {
		Shop string `json:"shop"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return payload.Shop
}
