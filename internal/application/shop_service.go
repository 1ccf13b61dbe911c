package application

import (
	"context"
	"fmt"
	"time"

	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/ports"

	"github.com/rs/zerolog"
)

// ShopService owns the shop record lifecycle: install, tokens, subscription state and redaction
type ShopService struct {
	repos         ports.Repositories
	cache         ports.RulesetCache
	encryptionSvc ports.EncryptionService
	logger        zerolog.Logger
	now           func() time.Time
}

// NewShopService creates a new shop service
func NewShopService(
	repos ports.Repositories,
	cache ports.RulesetCache,
	encryptionSvc ports.EncryptionService,
	logger zerolog.Logger,
) *ShopService {
	return &ShopService{
		repos:         repos,
		cache:         cache,
		encryptionSvc: encryptionSvc,
		logger:        logger,
		now:           time.Now,
	}
}

// EnsureShop returns the shop record, creating it on first touch
func (s *ShopService) EnsureShop(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	shopDomain, err := normalizeShop(shopDomain)
	if err != nil {
		return nil, err
	}

	shop, err := s.repos.Shops.UpsertShop(ctx, shopDomain)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to upsert shop")
		return nil, fmt.Errorf("failed to upsert shop: %w", err)
	}

	return shop, nil
}

// GetShop retrieves shop information; nil when unknown
func (s *ShopService) GetShop(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	shop, err := s.repos.Shops.GetShop(ctx, domain.NormalizeShopDomain(shopDomain))
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to get shop")
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return shop, nil
}

// AccessToken retrieves and decrypts the access token for a shop
func (s *ShopService) AccessToken(ctx context.Context, shopDomain string) (string, error) {
	shop, err := s.GetShop(ctx, shopDomain)
	if err != nil {
		return "", err
	}
	if shop == nil || shop.AccessToken == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrShopNotConnected, shopDomain)
	}

	token, err := s.encryptionSvc.Decrypt(shop.AccessToken)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to decrypt access token")
		return "", fmt.Errorf("failed to decrypt access token: %w", err)
	}

	return token, nil
}

// SaveInstallation stores the encrypted token and granted scopes after OAuth
func (s *ShopService) SaveInstallation(ctx context.Context, shopDomain string, accessToken string, scopes []string) (*domain.Shop, error) {
	shop, err := s.EnsureShop(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	encrypted, err := s.encryptionSvc.Encrypt(accessToken)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop.Domain).Msg("Failed to encrypt access token")
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	now := s.now()
	shop.AccessToken = encrypted
	shop.Scopes = scopes
	shop.InstalledAt = &now
	shop.UninstalledAt = nil

	if err := s.repos.Shops.SaveShop(ctx, shop); err != nil {
		s.logger.Error().Err(err).Str("shop", shop.Domain).Msg("Failed to save shop")
		return nil, fmt.Errorf("failed to save shop: %w", err)
	}

	s.logger.Info().Str("shop", shop.Domain).Strs("scopes", scopes).Msg("Shop installed")
	return shop, nil
}

// MarkUninstalled clears credentials and cancels the stored subscription state
func (s *ShopService) MarkUninstalled(ctx context.Context, shopDomain string) error {
	shop, err := s.GetShop(ctx, shopDomain)
	if err != nil {
		return err
	}
	if shop == nil {
		s.logger.Warn().Str("shop", shopDomain).Msg("Uninstall for unknown shop")
		return nil
	}

	now := s.now()
	shop.AccessToken = ""
	shop.UninstalledAt = &now
	if shop.SubscriptionStatus != domain.SubscriptionNone {
		shop.SubscriptionStatus = domain.SubscriptionCancelled
	}

	if err := s.repos.Shops.SaveShop(ctx, shop); err != nil {
		s.logger.Error().Err(err).Str("shop", shop.Domain).Msg("Failed to mark shop uninstalled")
		return fmt.Errorf("failed to save shop: %w", err)
	}

	s.invalidate(ctx, shop.Domain)
	s.logger.Info().Str("shop", shop.Domain).Msg("Shop uninstalled")
	return nil
}

// UpdateSubscription persists the subscription id and status reported by Shopify
func (s *ShopService) UpdateSubscription(ctx context.Context, shopDomain string, subscriptionID string, status domain.SubscriptionStatus) (*domain.Shop, error) {
	shop, err := s.EnsureShop(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	if shop.SubscriptionID == subscriptionID && shop.SubscriptionStatus == status {
		return shop, nil
	}

	shop.SubscriptionID = subscriptionID
	shop.SubscriptionStatus = status
	if err := s.repos.Shops.SaveShop(ctx, shop); err != nil {
		s.logger.Error().Err(err).Str("shop", shop.Domain).Msg("Failed to save subscription")
		return nil, fmt.Errorf("failed to save shop: %w", err)
	}

	s.logger.Info().
		Str("shop", shop.Domain).
		Str("subscriptionId", subscriptionID).
		Str("status", string(status)).
		Msg("Subscription updated")
	return shop, nil
}

// RedactResult counts what a shop redaction removed
type RedactResult struct {
	Rules         int64 `json:"rules"`
	PrepShipments int64 `json:"prepShipments"`
	WebhookEvents int64 `json:"webhookEvents"`
}

// Redact deletes every record owned by the shop, then the shop itself
func (s *ShopService) Redact(ctx context.Context, shopDomain string) (*RedactResult, error) {
	shopDomain = domain.NormalizeShopDomain(shopDomain)
	if shopDomain == "" {
		return nil, fmt.Errorf("%w: shop is required", domain.ErrInvalidInput)
	}

	rules, err := s.repos.Rules.DeleteByShop(ctx, shopDomain)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to delete rules")
		return nil, fmt.Errorf("failed to redact rules: %w", err)
	}

	if err := s.repos.Settings.DeleteByShop(ctx, shopDomain); err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to delete settings")
		return nil, fmt.Errorf("failed to redact settings: %w", err)
	}

	shipments, err := s.repos.PrepShipments.DeleteByShop(ctx, shopDomain)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to delete prep shipments")
		return nil, fmt.Errorf("failed to redact prep shipments: %w", err)
	}

	events, err := s.repos.Webhooks.DeleteByShop(ctx, shopDomain)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to delete webhook events")
		return nil, fmt.Errorf("failed to redact webhook events: %w", err)
	}

	if err := s.repos.Shops.DeleteShop(ctx, shopDomain); err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to delete shop")
		return nil, fmt.Errorf("failed to redact shop: %w", err)
	}

	s.invalidate(ctx, shopDomain)

	s.logger.Info().
		Str("shop", shopDomain).
		Int64("rules", rules).
		Int64("prepShipments", shipments).
		Int64("webhookEvents", events).
		Msg("Shop data redacted")

	return &RedactResult{Rules: rules, PrepShipments: shipments, WebhookEvents: events}, nil
}

// LogWebhook records a verified webhook delivery; customer payloads are never stored
func (s *ShopService) LogWebhook(ctx context.Context, event *domain.WebhookEvent) error {
	logged := *event
	if domain.CarriesCustomerData(event.Topic) {
		logged.Payload = nil
	}
	if err := s.repos.Webhooks.LogWebhook(ctx, &logged); err != nil {
		s.logger.Error().Err(err).Str("topic", event.Topic).Str("shop", event.Shop).Msg("Failed to log webhook")
		return fmt.Errorf("failed to log webhook: %w", err)
	}
	return nil
}

func (s *ShopService) invalidate(ctx context.Context, shopDomain string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, shopDomain); err != nil {
		s.logger.Warn().Err(err).Str("shop", shopDomain).Msg("Failed to invalidate ruleset cache")
	}
}
