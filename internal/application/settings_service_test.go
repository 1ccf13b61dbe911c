package application

import (
	"context"
	"testing"

	"shopify-quantity-rules/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsService_LazyCreate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	stored, err := env.repos.Settings.GetByShop(ctx, testShop)
	require.NoError(t, err)
	assert.Nil(t, stored)

	settings, err := env.settings.Get(ctx, testShop)
	require.NoError(t, err)
	assert.True(t, settings.ShowWarning)
	assert.True(t, settings.ShouldBlockCheckout())
	assert.NotEmpty(t, settings.ID)

	again, err := env.settings.Get(ctx, testShop)
	require.NoError(t, err)
	assert.Equal(t, settings.ID, again.ID)
}

func TestSettingsService_Update(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	msg := "Buy between {{limit}} items"
	settings, err := env.settings.Update(ctx, SettingsInput{
		Shop:                 testShop,
		GlobalMinCart:        domain.IntPtr(2),
		GlobalMaxCart:        domain.IntPtr(10),
		BlockCheckout:        boolPtr(false),
		CustomMessageEnabled: boolPtr(true),
		CustomMessage:        &msg,
	})
	require.NoError(t, err)
	assert.False(t, settings.ShouldBlockCheckout())
	assert.True(t, settings.ShowWarning)
	assert.Equal(t, msg, settings.CustomMessage)

	_, err = env.settings.Update(ctx, SettingsInput{
		Shop:          testShop,
		GlobalMinCart: domain.IntPtr(10),
		GlobalMaxCart: domain.IntPtr(2),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	cleared, err := env.settings.Update(ctx, SettingsInput{Shop: testShop})
	require.NoError(t, err)
	assert.Nil(t, cleared.GlobalMinCart)
	assert.False(t, cleared.ShouldBlockCheckout())
}
