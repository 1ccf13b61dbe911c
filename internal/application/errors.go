package application

import (
	"errors"
	"fmt"

	"shopify-quantity-rules/internal/domain"
)

var (
	// ErrInvalidHMAC is returned when an OAuth callback fails signature verification
	ErrInvalidHMAC = errors.New("invalid oauth hmac")

	// ErrInvalidState is returned when the OAuth state is unknown, expired or for another shop
	ErrInvalidState = errors.New("invalid or expired oauth state")
)

// normalizeShop cleans a shop domain and rejects anything not on myshopify.com
func normalizeShop(shop string) (string, error) {
	shop = domain.NormalizeShopDomain(shop)
	if shop == "" {
		return "", fmt.Errorf("%w: shop is required", domain.ErrInvalidInput)
	}
	if !domain.IsValidShopDomain(shop) {
		return "", fmt.Errorf("%w: invalid shop domain %q", domain.ErrInvalidInput, shop)
	}
	return shop, nil
}
