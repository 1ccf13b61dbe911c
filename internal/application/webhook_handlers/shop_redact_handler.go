package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"shopify-quantity-rules/internal/application"
	"shopify-quantity-rules/internal/domain"

	"github.com/rs/zerolog"
)

// ShopRedactHandler erases everything stored for a shop
type ShopRedactHandler struct {
	logger zerolog.Logger
	shops  *application.ShopService
}

// NewShopRedactHandler creates a new shop/redact handler
func NewShopRedactHandler(logger zerolog.Logger, shops *application.ShopService) *ShopRedactHandler {
	return &ShopRedactHandler{
		logger: logger,
		shops:  shops,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *ShopRedactHandler) CanHandle(topic string) bool {
	return topic == domain.TopicShopRedact
}

// Handle cascades the deletion to rules, settings and prep shipments
func (h *ShopRedactHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var payload struct {
		ShopID     json.Number `json:"shop_id"`
		ShopDomain string      `json:"shop_domain"`
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse shop redact webhook payload: %w", err)
	}

	shopDomain := payload.ShopDomain
	if shopDomain == "" {
		shopDomain = event.Shop
	}

	result, err := h.shops.Redact(ctx, shopDomain)
	if err != nil {
		return err
	}

	h.logger.Info().
		Str("shop", shopDomain).
		Str("shopId", payload.ShopID.String()).
		Int64("rules", result.Rules).
		Int64("prepShipments", result.PrepShipments).
		Msg("Shop redacted")
	return nil
}
