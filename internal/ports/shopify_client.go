package ports

import (
	"context"
	"net/url"

	"shopify-quantity-rules/internal/domain"
)

// ShopifyClient defines the Shopify operations the app relies on
type ShopifyClient interface {
	// Authentication
	GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error)
	VerifyAuthorizationURL(u *url.URL) (bool, error)
	ExchangeToken(ctx context.Context, shop string, code string) (string, error)

	// Webhook API
	CreateWebhook(ctx context.Context, shop string, accessToken string, topic string, address string) error

	// Product API
	SearchProducts(ctx context.Context, shop string, accessToken string, query string, limit int) ([]domain.ProductSummary, error)

	// Billing API (GraphQL)
	CreateAppSubscription(ctx context.Context, shop string, accessToken string, plan domain.SubscriptionPlan, returnURL string) (*domain.AppSubscription, string, error)
	ActiveSubscriptions(ctx context.Context, shop string, accessToken string) ([]domain.AppSubscription, error)
	CancelAppSubscription(ctx context.Context, shop string, accessToken string, subscriptionID string) (*domain.AppSubscription, error)
}
