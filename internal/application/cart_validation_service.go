package application

import (
	"context"
	"fmt"

	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/ports"

	"github.com/rs/zerolog"
)

// CartValidationService loads a shop's ruleset and runs the cart validator
type CartValidationService struct {
	rules    ports.RuleRepository
	settings ports.SettingsRepository
	cache    ports.RulesetCache
	logger   zerolog.Logger
}

// NewCartValidationService creates a new cart validation service
func NewCartValidationService(
	rules ports.RuleRepository,
	settings ports.SettingsRepository,
	cache ports.RulesetCache,
	logger zerolog.Logger,
) *CartValidationService {
	return &CartValidationService{
		rules:    rules,
		settings: settings,
		cache:    cache,
		logger:   logger,
	}
}

// Validate checks the cart items against the shop's enabled rules and settings
func (s *CartValidationService) Validate(ctx context.Context, shopDomain string, items []domain.CartItem) (*domain.ValidationResult, error) {
	shopDomain = domain.NormalizeShopDomain(shopDomain)
	if shopDomain == "" {
		return nil, fmt.Errorf("%w: shop is required", domain.ErrInvalidInput)
	}
	for i, item := range items {
		if item.Quantity < 0 {
			return nil, fmt.Errorf("%w: items[%d].quantity must not be negative", domain.ErrInvalidInput, i)
		}
	}

	ruleset, err := s.loadRuleset(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	result := domain.ValidateCart(items, ruleset.Rules, ruleset.Settings)

	s.logger.Debug().
		Str("shop", shopDomain).
		Int("items", len(items)).
		Int("cartTotal", result.CartTotal).
		Int("violations", len(result.Violations)).
		Msg("Cart validated")

	return result, nil
}

func (s *CartValidationService) loadRuleset(ctx context.Context, shopDomain string) (*domain.Ruleset, error) {
	// Version is read before the database so a concurrent invalidation skips the write-back
	version, cacheable := int64(0), false
	if s.cache != nil {
		ruleset, ok, err := s.cache.GetRuleset(ctx, shopDomain)
		if err != nil {
			s.logger.Warn().Err(err).Str("shop", shopDomain).Msg("Failed to read ruleset cache")
		} else if ok {
			return ruleset, nil
		}
		if version, err = s.cache.RulesetVersion(ctx, shopDomain); err != nil {
			s.logger.Warn().Err(err).Str("shop", shopDomain).Msg("Failed to read ruleset version")
		} else {
			cacheable = true
		}
	}

	rules, err := s.rules.ListByShop(ctx, shopDomain, true)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to load rules")
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	settings, err := s.settings.GetByShop(ctx, shopDomain)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to load settings")
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	ruleset := &domain.Ruleset{Rules: rules, Settings: settings}

	if cacheable {
		stored, err := s.cache.SetRuleset(ctx, shopDomain, version, ruleset)
		if err != nil {
			s.logger.Warn().Err(err).Str("shop", shopDomain).Msg("Failed to write ruleset cache")
		} else if !stored {
			s.logger.Debug().Str("shop", shopDomain).Msg("Skipped caching ruleset invalidated during load")
		}
	}

	return ruleset, nil
}
