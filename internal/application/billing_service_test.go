package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopify-quantity-rules/internal/domain"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBillingService(env *testEnv, trialDays int) *BillingService {
	return NewBillingService(env.shops, env.client, BillingOptions{
		Enabled: true,
		AppURL:  "https://app.example.com",
		Plan: domain.SubscriptionPlan{
			Name:      "Pro",
			Price:     decimal.RequireFromString("9.99"),
			Currency:  "USD",
			Interval:  domain.IntervalEvery30Days,
			TrialDays: trialDays,
			Test:      true,
		},
	}, zerolog.Nop())
}

func TestBillingService_CheckAccessTrial(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	billing := newBillingService(env, 7)

	status, err := billing.CheckAccess(ctx, testShop)
	require.NoError(t, err)
	assert.True(t, status.TrialActive)
	assert.False(t, status.Active)
	assert.True(t, status.HasAccess())
	assert.Equal(t, 7, status.TrialDaysRemaining)

	billing.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	status, err = billing.CheckAccess(ctx, testShop)
	require.NoError(t, err)
	assert.False(t, status.TrialActive)
	assert.False(t, status.HasAccess())
	assert.Zero(t, status.TrialDaysRemaining)
}

func TestBillingService_CheckAccessDisabled(t *testing.T) {
	env := newTestEnv()
	billing := NewBillingService(env.shops, env.client, BillingOptions{}, zerolog.Nop())

	status, err := billing.CheckAccess(context.Background(), testShop)
	require.NoError(t, err)
	assert.True(t, status.HasAccess())
	assert.False(t, billing.Enabled())
}

func TestBillingService_CheckAccessActiveSubscription(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	billing := newBillingService(env, 0)

	status, err := billing.CheckAccess(ctx, testShop)
	require.NoError(t, err)
	assert.False(t, status.HasAccess())

	_, err = env.shops.UpdateSubscription(ctx, testShop, "gid://shopify/AppSubscription/1", domain.SubscriptionActive)
	require.NoError(t, err)

	status, err = billing.CheckAccess(ctx, testShop)
	require.NoError(t, err)
	assert.True(t, status.Active)
}

func TestBillingService_Subscribe(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	billing := newBillingService(env, 7)

	_, err := billing.Subscribe(ctx, testShop)
	assert.ErrorIs(t, err, domain.ErrShopNotConnected)

	_, err = env.shops.SaveInstallation(ctx, testShop, "shpat_123", nil)
	require.NoError(t, err)

	env.client.created = &domain.AppSubscription{ID: "gid://shopify/AppSubscription/42"}
	env.client.confirmation = "https://test-shop.myshopify.com/admin/charges/42/confirm"

	confirmationURL, err := billing.Subscribe(ctx, testShop)
	require.NoError(t, err)
	assert.Equal(t, env.client.confirmation, confirmationURL)
	assert.Equal(t, "https://app.example.com/api/billing/callback?shop=test-shop.myshopify.com", env.client.lastReturnURL)
	assert.Equal(t, "Pro", env.client.lastPlan.Name)

	shop, err := env.shops.GetShop(ctx, testShop)
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/AppSubscription/42", shop.SubscriptionID)
	assert.Equal(t, domain.SubscriptionPending, shop.SubscriptionStatus)
}

func TestBillingService_SubscribeUserErrors(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	billing := newBillingService(env, 7)

	_, err := env.shops.SaveInstallation(ctx, testShop, "shpat_123", nil)
	require.NoError(t, err)

	upstream := errors.New("shopify appSubscriptionCreate failed: price: must be positive")
	env.client.createErr = upstream

	_, err = billing.Subscribe(ctx, testShop)
	assert.ErrorIs(t, err, upstream)
}

func TestBillingService_CallbackActivates(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	billing := newBillingService(env, 7)

	_, err := env.shops.SaveInstallation(ctx, testShop, "shpat_123", nil)
	require.NoError(t, err)
	env.client.active = []domain.AppSubscription{
		{ID: "gid://shopify/AppSubscription/1", Status: domain.SubscriptionPending},
		{ID: "gid://shopify/AppSubscription/42", Status: domain.SubscriptionActive},
	}

	status, err := billing.Callback(ctx, testShop, "42")
	require.NoError(t, err)
	assert.True(t, status.Active)
	assert.Equal(t, "gid://shopify/AppSubscription/42", status.SubscriptionID)
}

func TestBillingService_StatusExpiresLapsedSubscription(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	billing := newBillingService(env, 0)

	_, err := env.shops.SaveInstallation(ctx, testShop, "shpat_123", nil)
	require.NoError(t, err)
	_, err = env.shops.UpdateSubscription(ctx, testShop, "gid://shopify/AppSubscription/1", domain.SubscriptionActive)
	require.NoError(t, err)

	status, err := billing.Status(ctx, testShop)
	require.NoError(t, err)
	assert.False(t, status.Active)
	assert.Equal(t, domain.SubscriptionExpired, status.Status)
}

func TestBillingService_StatusKeepsStoredStateWhenNotConnected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	billing := newBillingService(env, 0)

	_, err := env.shops.UpdateSubscription(ctx, testShop, "gid://shopify/AppSubscription/1", domain.SubscriptionActive)
	require.NoError(t, err)

	status, err := billing.Status(ctx, testShop)
	require.NoError(t, err)
	assert.True(t, status.Active)
}

func TestBillingService_Cancel(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	billing := newBillingService(env, 0)

	_, err := env.shops.SaveInstallation(ctx, testShop, "shpat_123", nil)
	require.NoError(t, err)

	_, err = billing.Cancel(ctx, testShop)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.shops.UpdateSubscription(ctx, testShop, "gid://shopify/AppSubscription/1", domain.SubscriptionActive)
	require.NoError(t, err)

	sub, err := billing.Cancel(ctx, testShop)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionCancelled, sub.Status)
	assert.Equal(t, []string{"gid://shopify/AppSubscription/1"}, env.client.cancelled)

	shop, err := env.shops.GetShop(ctx, testShop)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionCancelled, shop.SubscriptionStatus)
}
