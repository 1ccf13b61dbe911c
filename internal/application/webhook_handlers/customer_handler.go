package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"shopify-quantity-rules/internal/domain"

	"github.com/rs/zerolog"
)

// customerPrivacyPayload is the body of customers/data_request and customers/redact
type customerPrivacyPayload struct {
	ShopDomain string `json:"shop_domain"`
	Customer   struct {
		ID    json.Number `json:"id"`
		Email string      `json:"email"`
	} `json:"customer"`
	OrdersRequested []json.Number `json:"orders_requested"`
	OrdersToRedact  []json.Number `json:"orders_to_redact"`
	DataRequest     *struct {
		ID json.Number `json:"id"`
	} `json:"data_request"`
}

// CustomerHandler acknowledges the mandatory customer privacy webhooks.
// The app stores no customer data, so there is nothing to export or erase.
type CustomerHandler struct {
	logger zerolog.Logger
}

// NewCustomerHandler creates a new customer webhook handler
func NewCustomerHandler(logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{
		logger: logger,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *CustomerHandler) CanHandle(topic string) bool {
	return topic == domain.TopicCustomersDataRequest ||
		topic == domain.TopicCustomersRedact
}

// Handle processes a customer privacy webhook event
func (h *CustomerHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var payload customerPrivacyPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse customer webhook payload: %w", err)
	}

	switch event.Topic {
	case domain.TopicCustomersDataRequest:
		h.logger.Info().
			Str("shop", event.Shop).
			Str("customerId", payload.Customer.ID.String()).
			Int("ordersRequested", len(payload.OrdersRequested)).
			Msg("Customer data request acknowledged; no customer data stored")
	case domain.TopicCustomersRedact:
		h.logger.Info().
			Str("shop", event.Shop).
			Str("customerId", payload.Customer.ID.String()).
			Int("ordersToRedact", len(payload.OrdersToRedact)).
			Msg("Customer redact acknowledged; no customer data stored")
	}

	return nil
}
