package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"shopify-quantity-rules/internal/application"
	"shopify-quantity-rules/internal/domain"

	"github.com/rs/zerolog"
)

// productPayload is the subset of the products/* webhook body the app reads
type productPayload struct {
	ID       json.Number `json:"id"`
	Title    string      `json:"title"`
	Handle   string      `json:"handle"`
	Variants []struct {
		ID    json.Number `json:"id"`
		Title string      `json:"title"`
		SKU   string      `json:"sku"`
	} `json:"variants"`
}

// ProductHandler keeps rule targets in sync with the catalogue
type ProductHandler struct {
	logger zerolog.Logger
	rules  *application.RuleService
}

// NewProductHandler creates a new product webhook handler
func NewProductHandler(logger zerolog.Logger, rules *application.RuleService) *ProductHandler {
	return &ProductHandler{
		logger: logger,
		rules:  rules,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *ProductHandler) CanHandle(topic string) bool {
	return topic == domain.TopicProductsUpdate ||
		topic == domain.TopicProductsDelete
}

// Handle processes a product webhook event
func (h *ProductHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var payload productPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse product webhook payload: %w", err)
	}
	if payload.ID == "" {
		return fmt.Errorf("product webhook payload has no id")
	}

	switch event.Topic {
	case domain.TopicProductsUpdate:
		product := domain.ProductSummary{
			ID:     payload.ID.String(),
			Title:  payload.Title,
			Handle: payload.Handle,
		}
		for _, v := range payload.Variants {
			product.Variants = append(product.Variants, domain.VariantSummary{
				ID:    v.ID.String(),
				Title: v.Title,
				SKU:   v.SKU,
			})
		}

		updated, err := h.rules.SyncProduct(ctx, event.Shop, product)
		if err != nil {
			return err
		}
		h.logger.Info().Str("shop", event.Shop).Str("productId", product.ID).Int("rulesUpdated", updated).Msg("Product updated")

	case domain.TopicProductsDelete:
		disabled, err := h.rules.DisableProductRules(ctx, event.Shop, payload.ID.String())
		if err != nil {
			return err
		}
		h.logger.Info().Str("shop", event.Shop).Str("productId", payload.ID.String()).Int("rulesDisabled", disabled).Msg("Product deleted")
	}

	return nil
}
