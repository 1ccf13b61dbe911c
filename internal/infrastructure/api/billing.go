package api

import (
	"net/http"
	"net/url"
	"strings"

	"shopify-quantity-rules/internal/application"
	"shopify-quantity-rules/internal/infrastructure/metrics"

	"github.com/rs/zerolog"
)

// BillingHandler serves the subscription endpoints
type BillingHandler struct {
	billing     *application.BillingService
	frontendURL string
	logger      zerolog.Logger
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billing *application.BillingService, frontendURL string, logger zerolog.Logger) *BillingHandler {
	return &BillingHandler{
		billing:     billing,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Subscribe handles GET /api/billing/subscribe?shop=
func (h *BillingHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	confirmationURL, err := h.billing.Subscribe(r.Context(), r.URL.Query().Get("shop"))
	if err != nil {
		record("subscribe", err)
		respondWithServiceError(w, h.logger, err, "Failed to create subscription")
		return
	}
	record("subscribe", nil)
	respondWithJSON(w, http.StatusOK, map[string]string{"confirmationUrl": confirmationURL})
}

// Status handles GET /api/billing/status?shop=
func (h *BillingHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.billing.Status(r.Context(), r.URL.Query().Get("shop"))
	if err != nil {
		record("status", err)
		respondWithServiceError(w, h.logger, err, "Failed to fetch billing status")
		return
	}
	record("status", nil)
	respondWithJSON(w, http.StatusOK, status)
}

// Cancel handles POST /api/billing/cancel?shop=
func (h *BillingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sub, err := h.billing.Cancel(r.Context(), r.URL.Query().Get("shop"))
	if err != nil {
		record("cancel", err)
		respondWithServiceError(w, h.logger, err, "Failed to cancel subscription")
		return
	}
	record("cancel", nil)
	respondWithJSON(w, http.StatusOK, sub)
}

// Callback handles GET /api/billing/callback?shop=&charge_id= and returns the merchant to the app
func (h *BillingHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, err := h.billing.Callback(r.Context(), q.Get("shop"), q.Get("charge_id"))
	if err != nil {
		record("callback", err)
		respondWithServiceError(w, h.logger, err, "Failed to confirm subscription")
		return
	}
	record("callback", nil)

	target, err := url.Parse(h.frontendURL)
	if err != nil || h.frontendURL == "" {
		target = &url.URL{Path: "/"}
	}
	tq := target.Query()
	tq.Set("shop", status.Shop)
	tq.Set("billing", strings.ToLower(string(status.Status)))
	if host := q.Get("host"); host != "" {
		tq.Set("host", host)
	}
	target.RawQuery = tq.Encode()

	http.Redirect(w, r, target.String(), http.StatusFound)
}

func record(operation string, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	metrics.BillingOperationsTotal.WithLabelValues(operation, status).Inc()
}
