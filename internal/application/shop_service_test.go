package application

import (
	"context"
	"testing"

	"shopify-quantity-rules/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testShop = "test-shop.myshopify.com"

func TestShopService_EnsureShopValidatesDomain(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tests := []struct {
		name    string
		shop    string
		wantErr bool
	}{
		{name: "valid", shop: testShop},
		{name: "normalised", shop: "  HTTPS://Test-Shop.myshopify.com/ "},
		{name: "empty", shop: "", wantErr: true},
		{name: "foreign host", shop: "shop.example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shop, err := env.shops.EnsureShop(ctx, tt.shop)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testShop, shop.Domain)
		})
	}
}

func TestShopService_AccessToken(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.shops.AccessToken(ctx, testShop)
	assert.ErrorIs(t, err, domain.ErrShopNotConnected)

	_, err = env.shops.SaveInstallation(ctx, testShop, "shpat_abc", []string{"read_products"})
	require.NoError(t, err)

	stored, err := env.repos.Shops.GetShop(ctx, testShop)
	require.NoError(t, err)
	assert.Equal(t, "enc:shpat_abc", stored.AccessToken)
	assert.NotNil(t, stored.InstalledAt)

	token, err := env.shops.AccessToken(ctx, testShop)
	require.NoError(t, err)
	assert.Equal(t, "shpat_abc", token)
}

func TestShopService_MarkUninstalled(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.shops.SaveInstallation(ctx, testShop, "shpat_abc", nil)
	require.NoError(t, err)
	_, err = env.shops.UpdateSubscription(ctx, testShop, "gid://shopify/AppSubscription/1", domain.SubscriptionActive)
	require.NoError(t, err)

	require.NoError(t, env.shops.MarkUninstalled(ctx, testShop))

	shop, err := env.shops.GetShop(ctx, testShop)
	require.NoError(t, err)
	assert.Empty(t, shop.AccessToken)
	assert.Equal(t, domain.SubscriptionCancelled, shop.SubscriptionStatus)
	assert.NotNil(t, shop.UninstalledAt)

	assert.NoError(t, env.shops.MarkUninstalled(ctx, "unknown.myshopify.com"))
}

func TestShopService_RedactCascades(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.rules.Create(ctx, RuleInput{Shop: testShop, Type: domain.RuleTypeCart, MinQuantity: domain.IntPtr(2)})
	require.NoError(t, err)
	_, err = env.rules.Create(ctx, RuleInput{Shop: testShop, Type: domain.RuleTypeProduct, TargetID: "1", MaxQuantity: domain.IntPtr(5)})
	require.NoError(t, err)
	_, err = env.settings.Get(ctx, testShop)
	require.NoError(t, err)
	require.NoError(t, env.repos.PrepShipments.Create(ctx, &domain.PrepShipment{ShopDomain: testShop, Status: domain.PrepShipmentPending}))

	other := "other.myshopify.com"
	_, err = env.rules.Create(ctx, RuleInput{Shop: other, Type: domain.RuleTypeCart, MinQuantity: domain.IntPtr(1)})
	require.NoError(t, err)

	result, err := env.shops.Redact(ctx, testShop)
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Rules)
	assert.EqualValues(t, 1, result.PrepShipments)

	rules, err := env.repos.Rules.ListByShop(ctx, testShop, false)
	require.NoError(t, err)
	assert.Empty(t, rules)

	settings, err := env.repos.Settings.GetByShop(ctx, testShop)
	require.NoError(t, err)
	assert.Nil(t, settings)

	shop, err := env.repos.Shops.GetShop(ctx, testShop)
	require.NoError(t, err)
	assert.Nil(t, shop)

	otherRules, err := env.repos.Rules.ListByShop(ctx, other, false)
	require.NoError(t, err)
	assert.Len(t, otherRules, 1)
}

func TestShopService_LogWebhookDropsCustomerPayloads(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	customer := &domain.WebhookEvent{
		ID:      "w-customer",
		Topic:   domain.TopicCustomersDataRequest,
		Shop:    testShop,
		Payload: []byte(`{"customer":{"email":"jane@example.com"}}`),
	}
	product := &domain.WebhookEvent{
		ID:      "w-product",
		Topic:   domain.TopicProductsUpdate,
		Shop:    testShop,
		Payload: []byte(`{"id":1,"title":"Shirt"}`),
	}
	require.NoError(t, env.shops.LogWebhook(ctx, customer))
	require.NoError(t, env.shops.LogWebhook(ctx, product))

	// the dispatched event keeps its payload
	assert.NotEmpty(t, customer.Payload)

	logged := map[string][]byte{}
	for _, e := range env.store.WebhookEvents() {
		logged[e.ID] = e.Payload
	}
	assert.Empty(t, logged["w-customer"])
	assert.JSONEq(t, `{"id":1,"title":"Shirt"}`, string(logged["w-product"]))

	result, err := env.shops.Redact(ctx, testShop)
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.WebhookEvents)
	assert.Empty(t, env.store.WebhookEvents())
}
