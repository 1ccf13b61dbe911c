package application

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/infrastructure/cache"
	"shopify-quantity-rules/internal/infrastructure/repository/memory"
	"shopify-quantity-rules/internal/ports"

	"github.com/rs/zerolog"
)

type fakeEncryption struct{}

func (fakeEncryption) Encrypt(plaintext string) (string, error) { return "enc:" + plaintext, nil }

func (fakeEncryption) Decrypt(ciphertext string) (string, error) {
	if !strings.HasPrefix(ciphertext, "enc:") {
		return "", fmt.Errorf("not encrypted")
	}
	return strings.TrimPrefix(ciphertext, "enc:"), nil
}

type fakeShopifyClient struct {
	mu sync.Mutex

	validHMAC     bool
	token         string
	webhooks      []string
	products      []domain.ProductSummary
	created       *domain.AppSubscription
	confirmation  string
	createErr     error
	active        []domain.AppSubscription
	cancelled     []string
	lastPlan      domain.SubscriptionPlan
	lastReturnURL string
}

func (f *fakeShopifyClient) GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error) {
	return fmt.Sprintf("https://%s/admin/oauth/authorize?state=%s&redirect_uri=%s", shop, state, url.QueryEscape(redirectURI)), nil
}

func (f *fakeShopifyClient) VerifyAuthorizationURL(u *url.URL) (bool, error) {
	return f.validHMAC, nil
}

func (f *fakeShopifyClient) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	return f.token, nil
}

func (f *fakeShopifyClient) CreateWebhook(ctx context.Context, shop string, accessToken string, topic string, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.webhooks = append(f.webhooks, topic+"@"+address)
	return nil
}

func (f *fakeShopifyClient) SearchProducts(ctx context.Context, shop string, accessToken string, query string, limit int) ([]domain.ProductSummary, error) {
	return f.products, nil
}

func (f *fakeShopifyClient) CreateAppSubscription(ctx context.Context, shop string, accessToken string, plan domain.SubscriptionPlan, returnURL string) (*domain.AppSubscription, string, error) {
	f.lastPlan = plan
	f.lastReturnURL = returnURL
	if f.createErr != nil {
		return nil, "", f.createErr
	}
	return f.created, f.confirmation, nil
}

func (f *fakeShopifyClient) ActiveSubscriptions(ctx context.Context, shop string, accessToken string) ([]domain.AppSubscription, error) {
	return f.active, nil
}

func (f *fakeShopifyClient) CancelAppSubscription(ctx context.Context, shop string, accessToken string, subscriptionID string) (*domain.AppSubscription, error) {
	f.cancelled = append(f.cancelled, subscriptionID)
	return &domain.AppSubscription{ID: subscriptionID, Status: domain.SubscriptionCancelled}, nil
}

type testEnv struct {
	store    *memory.Store
	repos    ports.Repositories
	cache    ports.RulesetCache
	client   *fakeShopifyClient
	shops    *ShopService
	rules    *RuleService
	settings *SettingsService
	carts    *CartValidationService
}

func newTestEnv() *testEnv {
	logger := zerolog.Nop()
	store := memory.NewStore()
	repos := store.Repositories()
	rulesetCache := cache.NewMemoryRulesetCache(time.Minute)
	shops := NewShopService(repos, rulesetCache, fakeEncryption{}, logger)

	return &testEnv{
		store:    store,
		repos:    repos,
		cache:    rulesetCache,
		client:   &fakeShopifyClient{validHMAC: true, token: "shpat_123"},
		shops:    shops,
		rules:    NewRuleService(repos.Rules, shops, rulesetCache, logger),
		settings: NewSettingsService(repos.Settings, shops, rulesetCache, logger),
		carts:    NewCartValidationService(repos.Rules, repos.Settings, rulesetCache, logger),
	}
}

func boolPtr(b bool) *bool { return &b }
