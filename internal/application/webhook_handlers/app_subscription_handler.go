package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shopify-quantity-rules/internal/application"
	"shopify-quantity-rules/internal/domain"

	"github.com/rs/zerolog"
)

// AppSubscriptionHandler mirrors subscription state changes onto the shop
type AppSubscriptionHandler struct {
	logger zerolog.Logger
	shops  *application.ShopService
}

// NewAppSubscriptionHandler creates a new app_subscriptions/update handler
func NewAppSubscriptionHandler(logger zerolog.Logger, shops *application.ShopService) *AppSubscriptionHandler {
	return &AppSubscriptionHandler{
		logger: logger,
		shops:  shops,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *AppSubscriptionHandler) CanHandle(topic string) bool {
	return topic == domain.TopicAppSubscriptionsUpdate
}

// Handle persists the subscription id and status
func (h *AppSubscriptionHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var payload struct {
		AppSubscription struct {
			AdminGraphqlAPIID string `json:"admin_graphql_api_id"`
			Name              string `json:"name"`
			Status            string `json:"status"`
		} `json:"app_subscription"`
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse app subscription webhook payload: %w", err)
	}

	sub := payload.AppSubscription
	if sub.AdminGraphqlAPIID == "" {
		return fmt.Errorf("app subscription webhook payload has no id")
	}
	status := domain.SubscriptionStatus(strings.ToUpper(sub.Status))

	if _, err := h.shops.UpdateSubscription(ctx, event.Shop, sub.AdminGraphqlAPIID, status); err != nil {
		return err
	}

	h.logger.Info().
		Str("shop", event.Shop).
		Str("subscriptionId", sub.AdminGraphqlAPIID).
		Str("status", string(status)).
		Msg("App subscription updated")
	return nil
}
