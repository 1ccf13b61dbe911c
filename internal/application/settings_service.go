package application

import (
	"context"
	"fmt"

	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/ports"

	"github.com/rs/zerolog"
)

// SettingsInput carries an update to a shop's settings.
// Cart bounds are replaced as given; nil flags keep their current value.
type SettingsInput struct {
	Shop                 string
	GlobalMinCart        *int
	GlobalMaxCart        *int
	ShowWarning          *bool
	BlockCheckout        *bool
	CustomMessageEnabled *bool
	CustomMessage        *string
}

// SettingsService manages the per-shop settings singleton
type SettingsService struct {
	settings ports.SettingsRepository
	shops    *ShopService
	cache    ports.RulesetCache
	logger   zerolog.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(settings ports.SettingsRepository, shops *ShopService, cache ports.RulesetCache, logger zerolog.Logger) *SettingsService {
	return &SettingsService{
		settings: settings,
		shops:    shops,
		cache:    cache,
		logger:   logger,
	}
}

// Get returns the shop's settings, creating the default record on first read
func (s *SettingsService) Get(ctx context.Context, shopDomain string) (*domain.Settings, error) {
	shop, err := s.shops.EnsureShop(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.GetByShop(ctx, shop.Domain)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop.Domain).Msg("Failed to get settings")
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if settings != nil {
		return settings, nil
	}

	settings = domain.DefaultSettings(shop.Domain)
	if err := s.settings.Save(ctx, settings); err != nil {
		s.logger.Error().Err(err).Str("shop", shop.Domain).Msg("Failed to create default settings")
		return nil, fmt.Errorf("failed to create settings: %w", err)
	}

	s.logger.Info().Str("shop", shop.Domain).Msg("Default settings created")
	return settings, nil
}

// Update applies the input to the stored settings
func (s *SettingsService) Update(ctx context.Context, input SettingsInput) (*domain.Settings, error) {
	settings, err := s.Get(ctx, input.Shop)
	if err != nil {
		return nil, err
	}

	settings.GlobalMinCart = input.GlobalMinCart
	settings.GlobalMaxCart = input.GlobalMaxCart
	if input.ShowWarning != nil {
		settings.ShowWarning = *input.ShowWarning
	}
	if input.BlockCheckout != nil {
		block := *input.BlockCheckout
		settings.BlockCheckout = &block
	}
	if input.CustomMessageEnabled != nil {
		settings.CustomMessageEnabled = *input.CustomMessageEnabled
	}
	if input.CustomMessage != nil {
		settings.CustomMessage = *input.CustomMessage
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if err := s.settings.Save(ctx, settings); err != nil {
		s.logger.Error().Err(err).Str("shop", settings.ShopDomain).Msg("Failed to save settings")
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, settings.ShopDomain); err != nil {
			s.logger.Warn().Err(err).Str("shop", settings.ShopDomain).Msg("Failed to invalidate ruleset cache")
		}
	}

	return settings, nil
}
