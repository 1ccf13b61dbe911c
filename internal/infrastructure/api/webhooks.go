package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"shopify-quantity-rules/internal/application"
	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/infrastructure/metrics"
	shopifyinfra "shopify-quantity-rules/internal/infrastructure/shopify"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WebhookTopics are served under /webhooks/{topic}
var WebhookTopics = []string{
	domain.TopicCustomersDataRequest,
	domain.TopicCustomersRedact,
	domain.TopicShopRedact,
	domain.TopicAppUninstalled,
	domain.TopicAppSubscriptionsUpdate,
	domain.TopicProductsUpdate,
	domain.TopicProductsDelete,
}

// WebhookHandler verifies Shopify webhook deliveries and hands them to the webhook service
type WebhookHandler struct {
	verifier *shopifyinfra.WebhookVerifier
	webhooks *application.WebhookService
	logger   zerolog.Logger
	now      func() time.Time
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(verifier *shopifyinfra.WebhookVerifier, webhooks *application.WebhookService, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		webhooks: webhooks,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle returns the handler for one topic
func (h *WebhookHandler) Handle(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			h.logger.Error().Err(err).Str("topic", topic).Msg("Failed to read webhook payload")
			respondWithError(w, http.StatusBadRequest, "Failed to read request body")
			return
		}
		defer r.Body.Close()

		if err := h.verifier.Verify(payload, r.Header.Get("X-Shopify-Hmac-Sha256")); err != nil {
			h.logger.Warn().Err(err).Str("topic", topic).Msg("Webhook signature verification failed")
			metrics.WebhooksReceivedTotal.WithLabelValues(topic, metrics.StatusRejected).Inc()
			respondWithError(w, http.StatusUnauthorized, "Invalid signature")
			return
		}

		if header := r.Header.Get("X-Shopify-Topic"); header != "" && header != topic {
			h.logger.Warn().Str("topic", topic).Str("headerTopic", header).Msg("Webhook topic header does not match route")
		}

		id := r.Header.Get("X-Shopify-Webhook-Id")
		if id == "" {
			id = uuid.NewString()
		}

		event := &domain.WebhookEvent{
			ID:         id,
			Topic:      topic,
			Shop:       webhookShop(r, payload),
			Payload:    payload,
			Verified:   true,
			ReceivedAt: h.now(),
		}

		duplicate, err := h.webhooks.Process(r.Context(), event)
		if err != nil {
			h.logger.Error().
				Err(err).
				Str("topic", topic).
				Str("shop", event.Shop).
				Str("webhookId", id).
				Msg("Failed to dispatch webhook event")
			metrics.WebhooksReceivedTotal.WithLabelValues(topic, metrics.StatusError).Inc()
			// A 5xx makes Shopify retry the delivery
			respondWithError(w, http.StatusInternalServerError, "Failed to process webhook event")
			return
		}

		status := metrics.StatusSuccess
		if duplicate {
			status = metrics.StatusDuplicate
		}
		metrics.WebhooksReceivedTotal.WithLabelValues(topic, status).Inc()

		respondWithJSON(w, http.StatusOK, map[string]bool{
			"received":  true,
			"duplicate": duplicate,
		})
	}
}

// webhookShop prefers the Shopify header and falls back to the payload
func webhookShop(r *http.Request, payload []byte) string {
	if shop := r.Header.Get("X-Shopify-Shop-Domain"); shop != "" {
		return domain.NormalizeShopDomain(shop)
	}

	var body struct {
		ShopDomain      string `json:"shop_domain"`
		MyshopifyDomain string `json:"myshopify_domain"`
		Domain          string `json:"domain"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	for _, shop := range []string{body.ShopDomain, body.MyshopifyDomain, body.Domain} {
		if shop != "" {
			return domain.NormalizeShopDomain(shop)
		}
	}
	return ""
}
