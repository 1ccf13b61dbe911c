package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"time"

	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/ports"

	"github.com/rs/zerolog"
)

// BillingOptions configures the recurring plan and the app's public URL
type BillingOptions struct {
	Enabled bool
	Plan    domain.SubscriptionPlan
	AppURL  string
}

// BillingService creates, inspects and cancels app subscriptions, and gates access
type BillingService struct {
	shops  *ShopService
	client ports.ShopifyClient
	opts   BillingOptions
	logger zerolog.Logger
	now    func() time.Time
}

// NewBillingService creates a new billing service
func NewBillingService(shops *ShopService, client ports.ShopifyClient, opts BillingOptions, logger zerolog.Logger) *BillingService {
	return &BillingService{
		shops:  shops,
		client: client,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Enabled reports whether the subscription gate is active
func (s *BillingService) Enabled() bool {
	return s.opts.Enabled
}

// SubscribeURL is where a merchant without access is sent
func (s *BillingService) SubscribeURL(shopDomain string) string {
	return s.opts.AppURL + "/api/billing/subscribe?shop=" + url.QueryEscape(shopDomain)
}

// Subscribe creates a recurring charge and returns the merchant confirmation URL
func (s *BillingService) Subscribe(ctx context.Context, shopDomain string) (string, error) {
	shop, err := s.shops.EnsureShop(ctx, shopDomain)
	if err != nil {
		return "", err
	}

	token, err := s.shops.AccessToken(ctx, shop.Domain)
	if err != nil {
		return "", err
	}

	returnURL := s.opts.AppURL + "/api/billing/callback?shop=" + url.QueryEscape(shop.Domain)
	sub, confirmationURL, err := s.client.CreateAppSubscription(ctx, shop.Domain, token, s.opts.Plan, returnURL)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop.Domain).Msg("Failed to create subscription")
		return "", fmt.Errorf("failed to create subscription: %w", err)
	}

	status := sub.Status
	if status == domain.SubscriptionNone {
		status = domain.SubscriptionPending
	}
	if _, err := s.shops.UpdateSubscription(ctx, shop.Domain, sub.ID, status); err != nil {
		return "", err
	}

	return confirmationURL, nil
}

// Status refreshes the subscription from Shopify when possible and reports access
func (s *BillingService) Status(ctx context.Context, shopDomain string) (*domain.BillingStatus, error) {
	shop, err := s.shops.EnsureShop(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	refreshed, err := s.refresh(ctx, shop, "")
	if err != nil {
		return nil, err
	}

	return s.statusFor(refreshed), nil
}

// Callback handles the merchant's return from the approval page
func (s *BillingService) Callback(ctx context.Context, shopDomain string, chargeID string) (*domain.BillingStatus, error) {
	shop, err := s.shops.EnsureShop(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	refreshed, err := s.refresh(ctx, shop, chargeID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("shop", shop.Domain).
		Str("chargeId", chargeID).
		Str("status", string(refreshed.SubscriptionStatus)).
		Msg("Billing callback processed")

	return s.statusFor(refreshed), nil
}

// Cancel cancels the shop's stored subscription
func (s *BillingService) Cancel(ctx context.Context, shopDomain string) (*domain.AppSubscription, error) {
	shop, err := s.shops.EnsureShop(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	if shop.SubscriptionID == "" {
		return nil, fmt.Errorf("subscription for %s: %w", shop.Domain, domain.ErrNotFound)
	}

	token, err := s.shops.AccessToken(ctx, shop.Domain)
	if err != nil {
		return nil, err
	}

	sub, err := s.client.CancelAppSubscription(ctx, shop.Domain, token, shop.SubscriptionID)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop.Domain).Msg("Failed to cancel subscription")
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	if _, err := s.shops.UpdateSubscription(ctx, shop.Domain, shop.SubscriptionID, domain.SubscriptionCancelled); err != nil {
		return nil, err
	}

	return sub, nil
}

// CheckAccess reports access from stored state only; it never calls Shopify
func (s *BillingService) CheckAccess(ctx context.Context, shopDomain string) (*domain.BillingStatus, error) {
	if !s.opts.Enabled {
		return &domain.BillingStatus{Shop: shopDomain, Active: true, Status: domain.SubscriptionActive}, nil
	}

	shop, err := s.shops.EnsureShop(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	return s.statusFor(shop), nil
}

// refresh pulls active subscriptions from Shopify; unconnected shops keep their stored state
func (s *BillingService) refresh(ctx context.Context, shop *domain.Shop, chargeID string) (*domain.Shop, error) {
	token, err := s.shops.AccessToken(ctx, shop.Domain)
	if errors.Is(err, domain.ErrShopNotConnected) {
		return shop, nil
	}
	if err != nil {
		return nil, err
	}

	subs, err := s.client.ActiveSubscriptions(ctx, shop.Domain, token)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop.Domain).Msg("Failed to query subscriptions")
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}

	chosen := pickSubscription(subs, chargeID)
	if chosen == nil {
		// Shopify lists only active subscriptions; a stored active one has lapsed
		if shop.SubscriptionStatus == domain.SubscriptionActive {
			return s.shops.UpdateSubscription(ctx, shop.Domain, shop.SubscriptionID, domain.SubscriptionExpired)
		}
		return shop, nil
	}

	return s.shops.UpdateSubscription(ctx, shop.Domain, chosen.ID, chosen.Status)
}

func pickSubscription(subs []domain.AppSubscription, chargeID string) *domain.AppSubscription {
	if chargeID != "" {
		for i := range subs {
			if domain.NormalizeID(subs[i].ID) == domain.NormalizeID(chargeID) {
				return &subs[i]
			}
		}
	}
	for i := range subs {
		if subs[i].Status == domain.SubscriptionActive {
			return &subs[i]
		}
	}
	if len(subs) > 0 {
		return &subs[0]
	}
	return nil
}

func (s *BillingService) statusFor(shop *domain.Shop) *domain.BillingStatus {
	now := s.now()
	trialDays := s.opts.Plan.TrialDays
	endsAt := shop.TrialEndsAt(trialDays)

	status := &domain.BillingStatus{
		Shop:           shop.Domain,
		Active:         shop.HasActiveSubscription(),
		Status:         shop.SubscriptionStatus,
		SubscriptionID: shop.SubscriptionID,
		TrialActive:    shop.InTrial(trialDays, now),
		TrialEndsAt:    endsAt,
	}
	if status.TrialActive {
		status.TrialDaysRemaining = int(math.Ceil(endsAt.Sub(now).Hours() / 24))
	}
	return status
}
