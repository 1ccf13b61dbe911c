package cache

import (
	"context"
	"sync"
	"time"

	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/ports"
)

type memoryEntry struct {
	ruleset   domain.Ruleset
	expiresAt time.Time
}

// MemoryRulesetCache is an in-process RulesetCache
type MemoryRulesetCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	entries  map[string]memoryEntry
	versions map[string]int64
}

// NewMemoryRulesetCache creates an in-process ruleset cache
func NewMemoryRulesetCache(ttl time.Duration) ports.RulesetCache {
	return &MemoryRulesetCache{
		ttl:      ttl,
		entries:  make(map[string]memoryEntry),
		versions: make(map[string]int64),
	}
}

func (c *MemoryRulesetCache) GetRuleset(_ context.Context, shopDomain string) (*domain.Ruleset, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[shopDomain]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, shopDomain)
		return nil, false, nil
	}
	ruleset := entry.ruleset
	return &ruleset, true, nil
}

func (c *MemoryRulesetCache) RulesetVersion(_ context.Context, shopDomain string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.versions[shopDomain], nil
}

func (c *MemoryRulesetCache) SetRuleset(_ context.Context, shopDomain string, version int64, ruleset *domain.Ruleset) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.versions[shopDomain] != version {
		return false, nil
	}
	c.entries[shopDomain] = memoryEntry{ruleset: *ruleset, expiresAt: time.Now().Add(c.ttl)}
	return true, nil
}

func (c *MemoryRulesetCache) Invalidate(_ context.Context, shopDomain string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.versions[shopDomain]++
	delete(c.entries, shopDomain)
	return nil
}

// MemorySessionStore is an in-process SessionStore
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

// NewMemorySessionStore creates an in-process session store
func NewMemorySessionStore() ports.SessionStore {
	return &MemorySessionStore{sessions: make(map[string]domain.Session)}
}

func (s *MemorySessionStore) CreateSession(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.State] = *session
	return nil
}

func (s *MemorySessionStore) ConsumeSession(_ context.Context, state string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[state]
	if !ok {
		return nil, nil
	}
	delete(s.sessions, state)
	if session.Expired(time.Now()) {
		return nil, nil
	}
	return &session, nil
}

// MemoryWebhookDeduper is an in-process WebhookDeduper
type MemoryWebhookDeduper struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

// NewMemoryWebhookDeduper creates an in-process deduper
func NewMemoryWebhookDeduper() ports.WebhookDeduper {
	return &MemoryWebhookDeduper{seen: make(map[string]time.Time)}
}

func (d *MemoryWebhookDeduper) ClaimWebhook(_ context.Context, webhookID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if at, ok := d.seen[webhookID]; ok && now.Sub(at) < WebhookDedupeTTL {
		return false, nil
	}
	d.seen[webhookID] = now
	return true, nil
}

func (d *MemoryWebhookDeduper) ReleaseWebhook(_ context.Context, webhookID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.seen, webhookID)
	return nil
}
