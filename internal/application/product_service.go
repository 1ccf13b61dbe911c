package application

import (
	"context"
	"fmt"

	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/ports"

	"github.com/rs/zerolog"
)

// ProductService searches the shop's catalogue for rule targets
type ProductService struct {
	shops  *ShopService
	client ports.ShopifyClient
	logger zerolog.Logger
}

// NewProductService creates a new product service
func NewProductService(shops *ShopService, client ports.ShopifyClient, logger zerolog.Logger) *ProductService {
	return &ProductService{
		shops:  shops,
		client: client,
		logger: logger,
	}
}

// Search lists products whose title matches the query
func (s *ProductService) Search(ctx context.Context, shopDomain string, query string, limit int) ([]domain.ProductSummary, error) {
	shopDomain, err := normalizeShop(shopDomain)
	if err != nil {
		return nil, err
	}

	token, err := s.shops.AccessToken(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	products, err := s.client.SearchProducts(ctx, shopDomain, token, query, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Str("query", query).Msg("Failed to search products")
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	return products, nil
}
