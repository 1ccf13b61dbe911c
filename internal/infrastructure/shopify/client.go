package shopify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

const (
	defaultRetries     = 3
	defaultSearchLimit = 25
	maxSearchLimit     = 250
)

// ClientConfig holds the app credentials used for every shop
type ClientConfig struct {
	APIKey     string
	APISecret  string
	APIVersion string
	Retries    int
}

type client struct {
	apiKey     string
	apiVersion string
	retries    int
	app        goshopify.App
	logger     zerolog.Logger
}

// NewClient creates a new Shopify client adapter
func NewClient(cfg ClientConfig, logger zerolog.Logger) ports.ShopifyClient {
	if cfg.Retries <= 0 {
		cfg.Retries = defaultRetries
	}
	app := goshopify.App{
		ApiKey:    cfg.APIKey,
		ApiSecret: cfg.APISecret,
	}
	return &client{
		apiKey:     cfg.APIKey,
		apiVersion: cfg.APIVersion,
		retries:    cfg.Retries,
		app:        app,
		logger:     logger,
	}
}

// createClient is a helper to create a goshopify client for one shop
func (c *client) createClient(shopDomain string, accessToken string) (*goshopify.Client, error) {
	opts := []goshopify.Option{goshopify.WithRetry(c.retries)}
	if c.apiVersion != "" {
		opts = append(opts, goshopify.WithVersion(c.apiVersion))
	}
	client, err := goshopify.NewClient(c.app, shopDomain, accessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// Authentication methods

func (c *client) GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error) {
	if !domain.IsValidShopDomain(shop) {
		return "", fmt.Errorf("%w: invalid shop domain %q", domain.ErrInvalidInput, shop)
	}

	// Shopify expects scopes comma-separated without spaces
	scopesStr := strings.Join(scopes, ",")

	authURL := fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		shop,
		url.QueryEscape(c.apiKey),
		url.QueryEscape(scopesStr),
		url.QueryEscape(redirectURI),
		url.QueryEscape(state),
	)

	c.logger.Debug().
		Str("shop", shop).
		Strs("scopes", scopes).
		Msg("Generated OAuth authorization URL")

	return authURL, nil
}

func (c *client) VerifyAuthorizationURL(u *url.URL) (bool, error) {
	// An empty secret would accept HMACs anyone can compute
	if c.app.ApiSecret == "" {
		return false, nil
	}
	ok, err := c.app.VerifyAuthorizationURL(u)
	if err != nil {
		return false, fmt.Errorf("failed to verify authorization url: %w", err)
	}
	return ok, nil
}

func (c *client) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	token, err := c.app.GetAccessToken(ctx, shop, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}
	return token, nil
}

// Webhook API

func (c *client) CreateWebhook(ctx context.Context, shopDomain string, accessToken string, topic string, address string) error {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return err
	}
	webhook := goshopify.Webhook{
		Topic:   topic,
		Address: address,
		Format:  "json",
	}
	if _, err := client.Webhook.Create(ctx, webhook); err != nil {
		return fmt.Errorf("failed to create webhook %s: %w", topic, err)
	}
	return nil
}

// Product API

// productSearchOptions is encoded into the products.json query string
type productSearchOptions struct {
	Title  string `url:"title,omitempty"`
	Limit  int    `url:"limit,omitempty"`
	Fields string `url:"fields,omitempty"`
}

func (c *client) SearchProducts(ctx context.Context, shopDomain string, accessToken string, query string, limit int) ([]domain.ProductSummary, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}

	opts := productSearchOptions{
		Title:  strings.TrimSpace(query),
		Limit:  clampLimit(limit),
		Fields: "id,title,handle,variants",
	}
	products, err := client.Product.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return toProductSummaries(products), nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultSearchLimit
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}

func toProductSummaries(products []goshopify.Product) []domain.ProductSummary {
	out := make([]domain.ProductSummary, 0, len(products))
	for _, p := range products {
		summary := domain.ProductSummary{
			ID:       strconv.FormatUint(p.Id, 10),
			Title:    p.Title,
			Handle:   p.Handle,
			Variants: make([]domain.VariantSummary, 0, len(p.Variants)),
		}
		for _, v := range p.Variants {
			summary.Variants = append(summary.Variants, domain.VariantSummary{
				ID:    strconv.FormatUint(v.Id, 10),
				Title: v.Title,
				SKU:   v.Sku,
			})
		}
		out = append(out, summary)
	}
	return out
}
