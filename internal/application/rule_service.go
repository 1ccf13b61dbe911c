package application

import (
	"context"
	"fmt"

	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/ports"

	"github.com/rs/zerolog"
)

// RuleInput carries the writable fields of a rule
type RuleInput struct {
	Shop        string
	Type        domain.RuleType
	TargetID    string
	TargetTitle string
	MinQuantity *int
	MaxQuantity *int
	Enabled     *bool
	Message     string
}

// RuleService manages quantity rules
type RuleService struct {
	rules  ports.RuleRepository
	shops  *ShopService
	cache  ports.RulesetCache
	logger zerolog.Logger
}

// NewRuleService creates a new rule service
func NewRuleService(rules ports.RuleRepository, shops *ShopService, cache ports.RulesetCache, logger zerolog.Logger) *RuleService {
	return &RuleService{
		rules:  rules,
		shops:  shops,
		cache:  cache,
		logger: logger,
	}
}

// List returns every rule of a shop
func (s *RuleService) List(ctx context.Context, shopDomain string) ([]*domain.Rule, error) {
	shop, err := s.shops.EnsureShop(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	rules, err := s.rules.ListByShop(ctx, shop.Domain, false)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop.Domain).Msg("Failed to list rules")
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	return rules, nil
}

// Create validates and stores a new rule; rules are enabled unless stated otherwise
func (s *RuleService) Create(ctx context.Context, input RuleInput) (*domain.Rule, error) {
	shop, err := s.shops.EnsureShop(ctx, input.Shop)
	if err != nil {
		return nil, err
	}

	rule := &domain.Rule{
		ShopDomain: shop.Domain,
		Enabled:    true,
	}
	input.apply(rule)

	if err := rule.Validate(); err != nil {
		return nil, err
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		s.logger.Error().Err(err).Str("shop", shop.Domain).Msg("Failed to create rule")
		return nil, fmt.Errorf("failed to create rule: %w", err)
	}

	s.invalidate(ctx, shop.Domain)
	s.logger.Info().Str("shop", shop.Domain).Str("ruleId", rule.ID).Str("type", string(rule.Type)).Msg("Rule created")
	return rule, nil
}

// Update replaces a rule's fields; a nil Enabled keeps the current flag
func (s *RuleService) Update(ctx context.Context, id string, input RuleInput) (*domain.Rule, error) {
	shop, err := s.shops.EnsureShop(ctx, input.Shop)
	if err != nil {
		return nil, err
	}

	rule, err := s.rules.GetByID(ctx, shop.Domain, id)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop.Domain).Str("ruleId", id).Msg("Failed to get rule")
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	if rule == nil {
		return nil, fmt.Errorf("rule %s: %w", id, domain.ErrNotFound)
	}

	input.apply(rule)
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	if err := s.rules.Update(ctx, rule); err != nil {
		s.logger.Error().Err(err).Str("shop", shop.Domain).Str("ruleId", id).Msg("Failed to update rule")
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}

	s.invalidate(ctx, shop.Domain)
	return rule, nil
}

// Delete removes a rule
func (s *RuleService) Delete(ctx context.Context, shopDomain string, id string) error {
	shop, err := s.shops.EnsureShop(ctx, shopDomain)
	if err != nil {
		return err
	}

	if err := s.rules.Delete(ctx, shop.Domain, id); err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", id, err)
	}

	s.invalidate(ctx, shop.Domain)
	s.logger.Info().Str("shop", shop.Domain).Str("ruleId", id).Msg("Rule deleted")
	return nil
}

// SyncProduct refreshes the target titles of rules pointing at an updated product
func (s *RuleService) SyncProduct(ctx context.Context, shopDomain string, product domain.ProductSummary) (int, error) {
	rules, err := s.rules.ListByShop(ctx, shopDomain, false)
	if err != nil {
		return 0, fmt.Errorf("failed to list rules: %w", err)
	}

	variantTitles := make(map[string]string, len(product.Variants))
	for _, v := range product.Variants {
		variantTitles[domain.NormalizeID(v.ID)] = variantLabel(product.Title, v.Title)
	}

	productID := domain.NormalizeID(product.ID)
	updated := 0
	for _, rule := range rules {
		title := ""
		switch rule.Type {
		case domain.RuleTypeProduct:
			if domain.NormalizeID(rule.TargetID) == productID {
				title = product.Title
			}
		case domain.RuleTypeVariant:
			title = variantTitles[domain.NormalizeID(rule.TargetID)]
		}
		if title == "" || title == rule.TargetTitle {
			continue
		}

		rule.TargetTitle = title
		if err := s.rules.Update(ctx, rule); err != nil {
			return updated, fmt.Errorf("failed to update rule %s: %w", rule.ID, err)
		}
		updated++
	}

	if updated > 0 {
		s.invalidate(ctx, shopDomain)
	}
	return updated, nil
}

// DisableProductRules turns off product rules whose target product was deleted
func (s *RuleService) DisableProductRules(ctx context.Context, shopDomain string, productID string) (int, error) {
	rules, err := s.rules.ListByShop(ctx, shopDomain, true)
	if err != nil {
		return 0, fmt.Errorf("failed to list rules: %w", err)
	}

	productID = domain.NormalizeID(productID)
	disabled := 0
	for _, rule := range rules {
		if rule.Type != domain.RuleTypeProduct || domain.NormalizeID(rule.TargetID) != productID {
			continue
		}
		rule.Enabled = false
		if err := s.rules.Update(ctx, rule); err != nil {
			return disabled, fmt.Errorf("failed to disable rule %s: %w", rule.ID, err)
		}
		disabled++
	}

	if disabled > 0 {
		s.invalidate(ctx, shopDomain)
	}
	return disabled, nil
}

func (in RuleInput) apply(rule *domain.Rule) {
	rule.Type = in.Type
	rule.TargetID = in.TargetID
	rule.TargetTitle = in.TargetTitle
	rule.MinQuantity = in.MinQuantity
	rule.MaxQuantity = in.MaxQuantity
	rule.Message = in.Message
	if in.Enabled != nil {
		rule.Enabled = *in.Enabled
	}
	if rule.Type == domain.RuleTypeCart {
		rule.TargetID = ""
		rule.TargetTitle = ""
	}
}

func variantLabel(productTitle, variantTitle string) string {
	if variantTitle == "" || variantTitle == "Default Title" {
		return productTitle
	}
	return productTitle + " - " + variantTitle
}

func (s *RuleService) invalidate(ctx context.Context, shopDomain string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, shopDomain); err != nil {
		s.logger.Warn().Err(err).Str("shop", shopDomain).Msg("Failed to invalidate ruleset cache")
	}
}
