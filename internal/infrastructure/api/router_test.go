package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"shopify-quantity-rules/internal/application"
	"shopify-quantity-rules/internal/application/webhook_handlers"
	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/infrastructure/cache"
	"shopify-quantity-rules/internal/infrastructure/encryption"
	"shopify-quantity-rules/internal/infrastructure/repository/memory"
	shopifyinfra "shopify-quantity-rules/internal/infrastructure/shopify"
	"shopify-quantity-rules/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testShop      = "test-shop.myshopify.com"
	webhookSecret = "hush"
)

type stubShopify struct {
	products  []domain.ProductSummary
	createErr error
}

func (s *stubShopify) GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error) {
	return "https://" + shop + "/admin/oauth/authorize?state=" + state, nil
}

func (s *stubShopify) VerifyAuthorizationURL(u *url.URL) (bool, error) {
	return u.Query().Get("hmac") == "valid", nil
}

func (s *stubShopify) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	return "shpat_" + code, nil
}

func (s *stubShopify) CreateWebhook(ctx context.Context, shop string, accessToken string, topic string, address string) error {
	return nil
}

func (s *stubShopify) SearchProducts(ctx context.Context, shop string, accessToken string, query string, limit int) ([]domain.ProductSummary, error) {
	return s.products, nil
}

func (s *stubShopify) CreateAppSubscription(ctx context.Context, shop string, accessToken string, plan domain.SubscriptionPlan, returnURL string) (*domain.AppSubscription, string, error) {
	if s.createErr != nil {
		return nil, "", s.createErr
	}
	return &domain.AppSubscription{ID: "gid://shopify/AppSubscription/7", Status: domain.SubscriptionPending}, "https://" + shop + "/admin/charges/7/confirm", nil
}

func (s *stubShopify) ActiveSubscriptions(ctx context.Context, shop string, accessToken string) ([]domain.AppSubscription, error) {
	return nil, nil
}

func (s *stubShopify) CancelAppSubscription(ctx context.Context, shop string, accessToken string, subscriptionID string) (*domain.AppSubscription, error) {
	return &domain.AppSubscription{ID: subscriptionID, Status: domain.SubscriptionCancelled}, nil
}

type testServer struct {
	router   chi.Router
	store    *memory.Store
	repos    ports.Repositories
	shops    *application.ShopService
	rules    *application.RuleService
	client   *stubShopify
	verifier *shopifyinfra.WebhookVerifier
}

func newTestServer(t *testing.T, billingEnabled bool, trialDays int) *testServer {
	t.Helper()
	logger := zerolog.Nop()

	enc, err := encryption.NewService("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	store := memory.NewStore()
	repos := store.Repositories()
	rulesetCache := cache.NewMemoryRulesetCache(time.Minute)
	client := &stubShopify{}

	shops := application.NewShopService(repos, rulesetCache, enc, logger)
	rules := application.NewRuleService(repos.Rules, shops, rulesetCache, logger)
	billing := application.NewBillingService(shops, client, application.BillingOptions{
		Enabled: billingEnabled,
		AppURL:  "https://app.example.com",
		Plan: domain.SubscriptionPlan{
			Name:      "Pro",
			Price:     decimal.NewFromFloat(4.99),
			Currency:  "USD",
			Interval:  domain.IntervalEvery30Days,
			TrialDays: trialDays,
		},
	}, logger)

	dispatcher := application.NewWebhookDispatcher(logger)
	dispatcher.RegisterHandler(webhook_handlers.NewCustomerHandler(logger))
	dispatcher.RegisterHandler(webhook_handlers.NewShopRedactHandler(logger, shops))
	dispatcher.RegisterHandler(webhook_handlers.NewAppUninstalledHandler(logger, shops))

	verifier := shopifyinfra.NewWebhookVerifier(webhookSecret)

	svc := Services{
		Rules:         rules,
		Settings:      application.NewSettingsService(repos.Settings, shops, rulesetCache, logger),
		Carts:         application.NewCartValidationService(repos.Rules, repos.Settings, rulesetCache, logger),
		Products:      application.NewProductService(shops, client, logger),
		PrepShipments: application.NewPrepShipmentService(repos.PrepShipments, shops, logger),
		Billing:       billing,
		OAuth: application.NewOAuthService(client, cache.NewMemorySessionStore(), shops, application.OAuthOptions{
			Scopes:      []string{"read_products"},
			AppURL:      "https://app.example.com",
			FrontendURL: "https://admin.example.com",
		}, logger),
		Webhooks: application.NewWebhookService(cache.NewMemoryWebhookDeduper(), shops, dispatcher, logger),
	}

	router := NewRouter(svc, RouterOptions{
		WebhookVerifier: verifier,
		FrontendURL:     "https://admin.example.com",
		ReadinessChecks: map[string]Pinger{
			"store": PingFunc(func(ctx context.Context) error { return nil }),
		},
	}, logger)

	return &testServer{
		router:   router,
		store:    store,
		repos:    repos,
		shops:    shops,
		rules:    rules,
		client:   client,
		verifier: verifier,
	}
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) webhook(topic, body, signature, id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/"+topic, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Hmac-Sha256", signature)
	req.Header.Set("X-Shopify-Topic", topic)
	req.Header.Set("X-Shopify-Shop-Domain", testShop)
	if id != "" {
		req.Header.Set("X-Shopify-Webhook-Id", id)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, false, 0)

	rec := s.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReady_DependencyDown(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{
		"redis": PingFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
	}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.HandleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRulesCRUD(t *testing.T) {
	s := newTestServer(t, false, 0)

	rec := s.do(http.MethodPost, "/api/rules", `{"shop":"`+testShop+`","type":"product","targetId":"gid://shopify/Product/1","targetTitle":"Shirt","minQuantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.Rule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Enabled)
	assert.Equal(t, testShop, created.ShopDomain)

	rec = s.do(http.MethodGet, "/api/rules?shop="+testShop, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []domain.Rule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)

	rec = s.do(http.MethodPut, "/api/rules/"+created.ID, `{"shop":"`+testShop+`","type":"product","targetId":"1","maxQuantity":5,"enabled":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated domain.Rule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.False(t, updated.Enabled)
	assert.Nil(t, updated.MinQuantity)

	rec = s.do(http.MethodPut, "/api/rules/missing", `{"shop":"`+testShop+`","type":"cart"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, "/api/rules/"+created.ID+"?shop="+testShop, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodDelete, "/api/rules/"+created.ID+"?shop="+testShop, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRules_ValidationErrors(t *testing.T) {
	s := newTestServer(t, false, 0)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
	}{
		{name: "malformed json", body: `{"shop":`, wantStatus: http.StatusBadRequest},
		{name: "missing shop", body: `{"type":"cart"}`, wantStatus: http.StatusBadRequest, wantField: "shop"},
		{name: "unknown type", body: `{"shop":"` + testShop + `","type":"collection"}`, wantStatus: http.StatusBadRequest, wantField: "type"},
		{name: "product without target", body: `{"shop":"` + testShop + `","type":"product"}`, wantStatus: http.StatusBadRequest, wantField: "targetId"},
		{name: "negative bound", body: `{"shop":"` + testShop + `","type":"cart","minQuantity":-1}`, wantStatus: http.StatusBadRequest, wantField: "minQuantity"},
		{name: "min above max", body: `{"shop":"` + testShop + `","type":"cart","minQuantity":5,"maxQuantity":1}`, wantStatus: http.StatusBadRequest},
		{name: "foreign shop", body: `{"shop":"shop.example.com","type":"cart"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/api/rules", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			if tt.wantField != "" {
				require.NotEmpty(t, resp.Details)
				assert.Equal(t, tt.wantField, resp.Details[0].Field)
			}
		})
	}
}

func TestSettings_LazyCreateAndUpdate(t *testing.T) {
	s := newTestServer(t, false, 0)

	rec := s.do(http.MethodGet, "/api/settings?shop="+testShop, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var settings domain.Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.True(t, settings.ShowWarning)
	assert.True(t, settings.ShouldBlockCheckout())

	rec = s.do(http.MethodPut, "/api/settings", `{"shop":"`+testShop+`","globalMinCart":2,"globalMaxCart":10,"blockCheckout":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, 2, *settings.GlobalMinCart)
	assert.False(t, settings.ShouldBlockCheckout())

	rec = s.do(http.MethodGet, "/api/settings", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateCart(t *testing.T) {
	s := newTestServer(t, true, 0)

	_, err := s.rules.Create(context.Background(), application.RuleInput{
		Shop:        testShop,
		Type:        domain.RuleTypeVariant,
		TargetID:    "gid://shopify/ProductVariant/11",
		MaxQuantity: domain.IntPtr(2),
	})
	require.NoError(t, err)

	t.Run("no rules", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/validate-cart", `{"shop":"other.myshopify.com","items":[{"productId":"1","variantId":"11","quantity":3}]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"valid":true,"violations":[],"blockCheckout":true,"showWarning":true,"cartTotal":3}`, rec.Body.String())
	})

	t.Run("numeric ids from the storefront", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/validate-cart", `{"shop":"`+testShop+`","items":[{"productId":1,"variantId":11,"quantity":3,"title":"Shirt"}]}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var result domain.ValidationResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.False(t, result.Valid)
		require.Len(t, result.Violations, 1)
		assert.Equal(t, domain.ViolationMax, result.Violations[0].Type)
		assert.Equal(t, 2, result.Violations[0].Limit)
		assert.Equal(t, 3, result.Violations[0].Current)
	})

	t.Run("admin routes stay gated", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/rules?shop="+testShop, "")
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		for _, body := range []string{`{"items":[]}`, `{"shop":"` + testShop + `"}`, `{"shop":"` + testShop + `","items":[{"quantity":-1}]}`} {
			rec := s.do(http.MethodPost, "/api/validate-cart", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		}
	})
}

func TestBillingGate(t *testing.T) {
	t.Run("trial grants access", func(t *testing.T) {
		s := newTestServer(t, true, 7)
		rec := s.do(http.MethodGet, "/api/rules?shop="+testShop, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("lapsed trial requires a subscription", func(t *testing.T) {
		s := newTestServer(t, true, 0)
		rec := s.do(http.MethodGet, "/api/settings?shop="+testShop, "")
		require.Equal(t, http.StatusPaymentRequired, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Subscription required", body["error"])
		assert.Equal(t, "https://app.example.com/api/billing/subscribe?shop=test-shop.myshopify.com", body["subscribeUrl"])
	})

	t.Run("another shop's subscription in the query is rejected", func(t *testing.T) {
		s := newTestServer(t, true, 0)
		ctx := context.Background()
		_, err := s.shops.UpdateSubscription(ctx, "paid-shop.myshopify.com", "gid://shopify/AppSubscription/2", domain.SubscriptionActive)
		require.NoError(t, err)

		body := `{"shop":"` + testShop + `","type":"cart","maxQuantity":10}`
		rec := s.do(http.MethodPost, "/api/rules", body)
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)

		rec = s.do(http.MethodPost, "/api/rules?shop=paid-shop.myshopify.com", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rules, err := s.repos.Rules.ListByShop(ctx, testShop, false)
		require.NoError(t, err)
		assert.Empty(t, rules)
	})

	t.Run("active subscription grants access", func(t *testing.T) {
		s := newTestServer(t, true, 0)
		_, err := s.shops.UpdateSubscription(context.Background(), testShop, "gid://shopify/AppSubscription/1", domain.SubscriptionActive)
		require.NoError(t, err)

		rec := s.do(http.MethodPost, "/api/rules", `{"shop":"`+testShop+`","type":"cart","maxQuantity":10}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestBillingEndpoints(t *testing.T) {
	s := newTestServer(t, true, 0)
	ctx := context.Background()

	rec := s.do(http.MethodGet, "/api/billing/subscribe?shop="+testShop, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	_, err := s.shops.SaveInstallation(ctx, testShop, "shpat_1", nil)
	require.NoError(t, err)

	rec = s.do(http.MethodGet, "/api/billing/subscribe?shop="+testShop, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"confirmationUrl":"https://test-shop.myshopify.com/admin/charges/7/confirm"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/billing/status?shop="+testShop, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status domain.BillingStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, domain.SubscriptionPending, status.Status)
	assert.False(t, status.Active)

	rec = s.do(http.MethodGet, "/api/billing/callback?shop="+testShop+"&charge_id=7", "")
	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "admin.example.com", loc.Host)
	assert.Equal(t, testShop, loc.Query().Get("shop"))

	rec = s.do(http.MethodPost, "/api/billing/cancel?shop="+testShop, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	shop, err := s.shops.GetShop(ctx, testShop)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionCancelled, shop.SubscriptionStatus)
}

func TestBillingSubscribe_UserErrors(t *testing.T) {
	s := newTestServer(t, true, 0)
	_, err := s.shops.SaveInstallation(context.Background(), testShop, "shpat_1", nil)
	require.NoError(t, err)

	s.client.createErr = &shopifyinfra.UserErrorsError{
		Action: "appSubscriptionCreate",
		Errors: []shopifyinfra.UserError{{Field: []string{"price"}, Message: "must be positive"}},
	}

	rec := s.do(http.MethodGet, "/api/billing/subscribe?shop="+testShop, "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be positive")
}

func TestProductsSearch(t *testing.T) {
	s := newTestServer(t, false, 0)
	s.client.products = []domain.ProductSummary{{ID: "1", Title: "Shirt", Handle: "shirt"}}

	rec := s.do(http.MethodGet, "/api/products/search?shop="+testShop+"&q=shi", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	_, err := s.shops.SaveInstallation(context.Background(), testShop, "shpat_1", nil)
	require.NoError(t, err)

	rec = s.do(http.MethodGet, "/api/products/search?shop="+testShop+"&q=shi", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"handle":"shirt"`)

	rec = s.do(http.MethodGet, "/api/products/search?shop="+testShop+"&limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPrepShipments(t *testing.T) {
	s := newTestServer(t, false, 0)

	rec := s.do(http.MethodPost, "/api/prep-shipments", `{"shop":"`+testShop+`","name":"Batch","units":4}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var shipment domain.PrepShipment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &shipment))
	assert.Equal(t, domain.PrepShipmentPending, shipment.Status)

	rec = s.do(http.MethodPut, "/api/prep-shipments/"+shipment.ID, `{"shop":"`+testShop+`","name":"Batch","units":4,"status":"Lost"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/api/prep-shipments/"+shipment.ID, `{"shop":"`+testShop+`","name":"Batch","units":4,"status":"Prepped"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/prep-shipments?shop="+testShop, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"Prepped"`)

	rec = s.do(http.MethodDelete, "/api/prep-shipments/"+shipment.ID+"?shop="+testShop, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, false, 0)

	rec := s.do(http.MethodGet, "/auth?shop=evil.example.com", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/auth/shopify?shop="+testShop, "")
	require.Equal(t, http.StatusFound, rec.Code)
	authURL, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := authURL.Query().Get("state")
	require.NotEmpty(t, state)

	rec = s.do(http.MethodGet, "/auth/callback?shop="+testShop+"&code=abc&state="+state+"&hmac=forged", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/auth/callback?shop="+testShop+"&code=abc&state="+state+"&hmac=valid", "")
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "https://admin.example.com"))

	token, err := s.shops.AccessToken(context.Background(), testShop)
	require.NoError(t, err)
	assert.Equal(t, "shpat_abc", token)

	rec = s.do(http.MethodGet, "/auth/callback?shop="+testShop+"&code=abc&state="+state+"&hmac=valid", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhooks_SignatureAndDedupe(t *testing.T) {
	s := newTestServer(t, false, 0)
	body := `{"shop_id":1,"shop_domain":"` + testShop + `"}`

	rec := s.webhook(domain.TopicCustomersRedact, body, "bad-signature", "wh-1")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.webhook(domain.TopicCustomersRedact, body, "", "wh-1")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	sig := s.verifier.Sign([]byte(body))
	rec = s.webhook(domain.TopicCustomersRedact, body, sig, "wh-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true,"duplicate":false}`, rec.Body.String())

	rec = s.webhook(domain.TopicCustomersRedact, body, sig, "wh-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true,"duplicate":true}`, rec.Body.String())
}

func TestWebhooks_ShopRedactCascades(t *testing.T) {
	s := newTestServer(t, false, 0)
	ctx := context.Background()

	rec := s.do(http.MethodPost, "/api/rules", `{"shop":"`+testShop+`","type":"cart","maxQuantity":10}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(http.MethodGet, "/api/settings?shop="+testShop, "")
	require.Equal(t, http.StatusOK, rec.Code)

	customer := `{"shop_id":954889,"shop_domain":"` + testShop + `","customer":{"id":191167,"email":"jane@example.com"},"orders_to_redact":[299938]}`
	rec = s.webhook(domain.TopicCustomersRedact, customer, s.verifier.Sign([]byte(customer)), "wh-customer")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	events := s.store.WebhookEvents()
	require.Len(t, events, 1)
	assert.Equal(t, domain.TopicCustomersRedact, events[0].Topic)
	assert.NotContains(t, string(events[0].Payload), "jane@example.com")

	body := `{"shop_id":954889,"shop_domain":"` + testShop + `"}`
	rec = s.webhook(domain.TopicShopRedact, body, s.verifier.Sign([]byte(body)), "wh-shop")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Empty(t, s.store.WebhookEvents())

	rules, err := s.repos.Rules.ListByShop(ctx, testShop, false)
	require.NoError(t, err)
	assert.Empty(t, rules)

	settings, err := s.repos.Settings.GetByShop(ctx, testShop)
	require.NoError(t, err)
	assert.Nil(t, settings)

	shop, err := s.repos.Shops.GetShop(ctx, testShop)
	require.NoError(t, err)
	assert.Nil(t, shop)
}

func TestWebhookShop(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/app/uninstalled", nil)
	assert.Equal(t, testShop, webhookShop(req, []byte(`{"myshopify_domain":"Test-Shop.myshopify.com"}`)))
	assert.Empty(t, webhookShop(req, []byte(`not json`)))

	req.Header.Set("X-Shopify-Shop-Domain", testShop)
	assert.Equal(t, testShop, webhookShop(req, []byte(`{"domain":"custom.example.com"}`)))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, false, 0)
	rec := s.do(http.MethodPost, "/webhooks/orders/create", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
