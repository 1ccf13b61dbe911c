package application

import (
	"context"
	"net/url"
	"testing"

	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/infrastructure/cache"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOAuthService(env *testEnv) *OAuthService {
	return NewOAuthService(env.client, cache.NewMemorySessionStore(), env.shops, OAuthOptions{
		Scopes:      []string{"read_products"},
		AppURL:      "https://app.example.com",
		FrontendURL: "https://admin.example.com/",
	}, zerolog.Nop())
}

func beginState(t *testing.T, svc *OAuthService, shop string, returnURL string) string {
	t.Helper()
	authURL, err := svc.BeginInstall(context.Background(), shop, returnURL)
	require.NoError(t, err)
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.Len(t, state, 32)
	return state
}

func callbackURL(shop, code, state string) *url.URL {
	q := url.Values{}
	q.Set("shop", shop)
	q.Set("code", code)
	q.Set("state", state)
	q.Set("host", "YWRtaW4uc2hvcGlmeS5jb20")
	q.Set("hmac", "ignored")
	return &url.URL{Scheme: "https", Host: "app.example.com", Path: "/auth/callback", RawQuery: q.Encode()}
}

func TestOAuthService_BeginInstallRejectsBadShop(t *testing.T) {
	env := newTestEnv()
	svc := newOAuthService(env)

	_, err := svc.BeginInstall(context.Background(), "evil.example.com", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOAuthService_CompleteInstall(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	svc := newOAuthService(env)

	state := beginState(t, svc, testShop, "")

	redirect, err := svc.CompleteInstall(ctx, callbackURL(testShop, "code-1", state))
	require.NoError(t, err)

	u, err := url.Parse(redirect)
	require.NoError(t, err)
	assert.Equal(t, "admin.example.com", u.Host)
	assert.Equal(t, testShop, u.Query().Get("shop"))
	assert.Equal(t, "YWRtaW4uc2hvcGlmeS5jb20", u.Query().Get("host"))

	token, err := env.shops.AccessToken(ctx, testShop)
	require.NoError(t, err)
	assert.Equal(t, "shpat_123", token)

	shop, err := env.shops.GetShop(ctx, testShop)
	require.NoError(t, err)
	assert.Equal(t, []string{"read_products"}, shop.Scopes)

	require.Len(t, env.client.webhooks, len(AppWebhookTopics))
	assert.Contains(t, env.client.webhooks, "app/uninstalled@https://app.example.com/webhooks/app/uninstalled")

	// The state is single use
	_, err = svc.CompleteInstall(ctx, callbackURL(testShop, "code-1", state))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestOAuthService_CompleteInstallUsesReturnURL(t *testing.T) {
	env := newTestEnv()
	svc := newOAuthService(env)

	state := beginState(t, svc, testShop, "https://admin.example.com/rules?tab=cart")

	redirect, err := svc.CompleteInstall(context.Background(), callbackURL(testShop, "code-1", state))
	require.NoError(t, err)

	u, err := url.Parse(redirect)
	require.NoError(t, err)
	assert.Equal(t, "/rules", u.Path)
	assert.Equal(t, "cart", u.Query().Get("tab"))
	assert.Equal(t, testShop, u.Query().Get("shop"))
}

func TestOAuthService_ReturnURLRestrictedToFrontend(t *testing.T) {
	tests := []struct {
		name      string
		returnURL string
		wantHost  string
		wantPath  string
	}{
		{name: "same origin", returnURL: "https://admin.example.com/settings", wantHost: "admin.example.com", wantPath: "/settings"},
		{name: "relative path", returnURL: "/rules", wantHost: "admin.example.com", wantPath: "/rules"},
		{name: "foreign host", returnURL: "https://evil.example.net/phish", wantHost: "admin.example.com", wantPath: "/"},
		{name: "scheme relative", returnURL: "//evil.example.net/phish", wantHost: "admin.example.com", wantPath: "/"},
		{name: "downgraded scheme", returnURL: "http://admin.example.com/rules", wantHost: "admin.example.com", wantPath: "/"},
		{name: "lookalike host", returnURL: "https://admin.example.com.evil.net/", wantHost: "admin.example.com", wantPath: "/"},
		{name: "javascript", returnURL: "javascript:alert(1)", wantHost: "admin.example.com", wantPath: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			svc := newOAuthService(env)

			state := beginState(t, svc, testShop, tt.returnURL)
			redirect, err := svc.CompleteInstall(context.Background(), callbackURL(testShop, "code-1", state))
			require.NoError(t, err)

			u, err := url.Parse(redirect)
			require.NoError(t, err)
			assert.Equal(t, "https", u.Scheme)
			assert.Equal(t, tt.wantHost, u.Host)
			assert.Equal(t, tt.wantPath, u.Path)
			assert.Equal(t, testShop, u.Query().Get("shop"))
		})
	}
}

func TestOAuthService_CompleteInstallFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(env *testEnv, svc *OAuthService) *url.URL
		wantErr error
	}{
		{
			name: "missing code",
			setup: func(env *testEnv, svc *OAuthService) *url.URL {
				return callbackURL(testShop, "", "state")
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "bad hmac",
			setup: func(env *testEnv, svc *OAuthService) *url.URL {
				env.client.validHMAC = false
				state := beginState(t, svc, testShop, "")
				return callbackURL(testShop, "code", state)
			},
			wantErr: ErrInvalidHMAC,
		},
		{
			name: "unknown state",
			setup: func(env *testEnv, svc *OAuthService) *url.URL {
				return callbackURL(testShop, "code", "deadbeef")
			},
			wantErr: ErrInvalidState,
		},
		{
			name: "state for another shop",
			setup: func(env *testEnv, svc *OAuthService) *url.URL {
				state := beginState(t, svc, "other.myshopify.com", "")
				return callbackURL(testShop, "code", state)
			},
			wantErr: ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			svc := newOAuthService(env)

			_, err := svc.CompleteInstall(context.Background(), tt.setup(env, svc))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, env.client.webhooks)
		})
	}
}
