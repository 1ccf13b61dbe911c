package ports

import (
	"context"

	"shopify-quantity-rules/internal/domain"
)

// RulesetCache caches the validator input of a shop.
// Every Invalidate bumps the shop's version; SetRuleset only stores a ruleset
// read under the current version, so a slow reader cannot restore stale rules.
type RulesetCache interface {
	GetRuleset(ctx context.Context, shopDomain string) (*domain.Ruleset, bool, error)
	RulesetVersion(ctx context.Context, shopDomain string) (int64, error)
	// SetRuleset reports false when the version moved since it was read
	SetRuleset(ctx context.Context, shopDomain string, version int64, ruleset *domain.Ruleset) (bool, error)
	Invalidate(ctx context.Context, shopDomain string) error
}

// SessionStore keeps OAuth state between the install redirect and the callback
type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	// ConsumeSession returns and removes the session; nil, nil when absent or expired
	ConsumeSession(ctx context.Context, state string) (*domain.Session, error)
}

// WebhookDeduper claims webhook ids so retried deliveries are processed once
type WebhookDeduper interface {
	// ClaimWebhook returns true when the id was not seen before
	ClaimWebhook(ctx context.Context, webhookID string) (bool, error)
	// ReleaseWebhook forgets an id so a failed delivery can be retried
	ReleaseWebhook(ctx context.Context, webhookID string) error
}

// EncryptionService encrypts secrets at rest
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
