package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/ports"

	"github.com/rs/zerolog"
)

const oauthSessionTTL = 10 * time.Minute

// AppWebhookTopics are registered on every install; GDPR topics are configured in the partner dashboard
var AppWebhookTopics = []string{
	domain.TopicAppUninstalled,
	domain.TopicAppSubscriptionsUpdate,
	domain.TopicProductsUpdate,
	domain.TopicProductsDelete,
}

// OAuthOptions configures the install flow
type OAuthOptions struct {
	Scopes      []string
	AppURL      string
	FrontendURL string
}

// OAuthService runs the Shopify authorization code grant
type OAuthService struct {
	client   ports.ShopifyClient
	sessions ports.SessionStore
	shops    *ShopService
	opts     OAuthOptions
	logger   zerolog.Logger
	now      func() time.Time
}

// NewOAuthService creates a new OAuth service
func NewOAuthService(client ports.ShopifyClient, sessions ports.SessionStore, shops *ShopService, opts OAuthOptions, logger zerolog.Logger) *OAuthService {
	return &OAuthService{
		client:   client,
		sessions: sessions,
		shops:    shops,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// BeginInstall stores a fresh state and returns Shopify's authorize URL
func (s *OAuthService) BeginInstall(ctx context.Context, shopDomain string, returnURL string) (string, error) {
	shopDomain, err := normalizeShop(shopDomain)
	if err != nil {
		return "", err
	}

	// Random state for CSRF protection
	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := hex.EncodeToString(stateBytes)

	if returnURL != "" && s.trustedReturnURL(returnURL) == "" {
		s.logger.Warn().Str("shop", shopDomain).Str("return_url", returnURL).Msg("Ignoring return URL outside the frontend origin")
		returnURL = ""
	}

	now := s.now()
	session := &domain.Session{
		Shop:      shopDomain,
		State:     state,
		Scopes:    s.opts.Scopes,
		ReturnURL: returnURL,
		ExpiresAt: now.Add(oauthSessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to create session")
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return s.client.GenerateAuthURL(shopDomain, s.opts.Scopes, s.opts.AppURL+"/auth/callback", state)
}

// CompleteInstall verifies the callback, stores the token and returns where to send the merchant
func (s *OAuthService) CompleteInstall(ctx context.Context, callback *url.URL) (string, error) {
	q := callback.Query()
	shopDomain := domain.NormalizeShopDomain(q.Get("shop"))
	code := q.Get("code")
	state := q.Get("state")

	if shopDomain == "" || code == "" || state == "" {
		return "", fmt.Errorf("%w: shop, code and state are required", domain.ErrInvalidInput)
	}
	if !domain.IsValidShopDomain(shopDomain) {
		return "", fmt.Errorf("%w: invalid shop domain %q", domain.ErrInvalidInput, shopDomain)
	}

	ok, err := s.client.VerifyAuthorizationURL(callback)
	if err != nil || !ok {
		s.logger.Warn().Err(err).Str("shop", shopDomain).Msg("OAuth callback HMAC verification failed")
		return "", ErrInvalidHMAC
	}

	session, err := s.sessions.ConsumeSession(ctx, state)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to get session")
		return "", fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil || session.Shop != shopDomain {
		return "", ErrInvalidState
	}

	accessToken, err := s.client.ExchangeToken(ctx, shopDomain, code)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to exchange token")
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}

	if _, err := s.shops.SaveInstallation(ctx, shopDomain, accessToken, session.Scopes); err != nil {
		return "", err
	}

	s.registerWebhooks(ctx, shopDomain, accessToken)

	return s.redirectURL(session, shopDomain, q.Get("host")), nil
}

// registerWebhooks subscribes the app topics; failures are logged and do not abort the install
func (s *OAuthService) registerWebhooks(ctx context.Context, shopDomain string, accessToken string) {
	for _, topic := range AppWebhookTopics {
		address := s.opts.AppURL + "/webhooks/" + topic
		if err := s.client.CreateWebhook(ctx, shopDomain, accessToken, topic, address); err != nil {
			s.logger.Warn().Err(err).Str("shop", shopDomain).Str("topic", topic).Msg("Failed to register webhook")
			continue
		}
		s.logger.Debug().Str("shop", shopDomain).Str("topic", topic).Msg("Webhook registered")
	}
}

func (s *OAuthService) redirectURL(session *domain.Session, shopDomain string, host string) string {
	base := s.trustedReturnURL(session.ReturnURL)
	if base == "" {
		base = s.opts.FrontendURL
	}

	u, err := url.Parse(base)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set("shop", shopDomain)
	if host != "" {
		q.Set("host", host)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// trustedReturnURL resolves raw against the frontend URL and returns it only when scheme and host match the frontend
func (s *OAuthService) trustedReturnURL(raw string) string {
	if raw == "" {
		return ""
	}
	frontend, err := url.Parse(s.opts.FrontendURL)
	if err != nil || frontend.Host == "" {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	resolved := frontend.ResolveReference(ref)
	if !strings.EqualFold(resolved.Scheme, frontend.Scheme) || !strings.EqualFold(resolved.Host, frontend.Host) {
		return ""
	}
	return resolved.String()
}
