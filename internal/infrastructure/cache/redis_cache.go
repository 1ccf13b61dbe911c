package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/ports"

	"github.com/redis/go-redis/v9"
)

// WebhookDedupeTTL bounds how long a delivery id is remembered
const WebhookDedupeTTL = 7 * 24 * time.Hour

// rulesetVersionTTL keeps version counters well past any in-flight read
const rulesetVersionTTL = 24 * time.Hour

// setIfVersion writes KEYS[2] only while KEYS[1] still holds ARGV[1]
var setIfVersion = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisRulesetCache stores each shop's validator input as JSON
type RedisRulesetCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRulesetCache creates a ruleset cache with the given TTL
func NewRedisRulesetCache(client *Client, ttl time.Duration) ports.RulesetCache {
	return &RedisRulesetCache{client: client.GetRedis(), ttl: ttl}
}

// GetRuleset returns the cached ruleset and whether it was present
func (c *RedisRulesetCache) GetRuleset(ctx context.Context, shopDomain string) (*domain.Ruleset, bool, error) {
	data, err := c.client.Get(ctx, RulesetKey(shopDomain)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get ruleset: %w", err)
	}

	var ruleset domain.Ruleset
	if err := json.Unmarshal(data, &ruleset); err != nil {
		return nil, false, fmt.Errorf("failed to decode ruleset: %w", err)
	}

	return &ruleset, true, nil
}

// RulesetVersion returns how many times the shop's ruleset was invalidated
func (c *RedisRulesetCache) RulesetVersion(ctx context.Context, shopDomain string) (int64, error) {
	version, err := c.client.Get(ctx, RulesetVersionKey(shopDomain)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get ruleset version: %w", err)
	}
	return version, nil
}

// SetRuleset caches the ruleset for the configured TTL unless the version moved
func (c *RedisRulesetCache) SetRuleset(ctx context.Context, shopDomain string, version int64, ruleset *domain.Ruleset) (bool, error) {
	data, err := json.Marshal(ruleset)
	if err != nil {
		return false, fmt.Errorf("failed to encode ruleset: %w", err)
	}

	keys := []string{RulesetVersionKey(shopDomain), RulesetKey(shopDomain)}
	stored, err := setIfVersion.Run(ctx, c.client, keys, strconv.FormatInt(version, 10), data, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to set ruleset: %w", err)
	}

	return stored == 1, nil
}

// Invalidate bumps the shop's ruleset version and drops the cached ruleset
func (c *RedisRulesetCache) Invalidate(ctx context.Context, shopDomain string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, RulesetVersionKey(shopDomain))
		pipe.Expire(ctx, RulesetVersionKey(shopDomain), rulesetVersionTTL)
		pipe.Del(ctx, RulesetKey(shopDomain))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate ruleset: %w", err)
	}
	return nil
}

// RedisSessionStore keeps OAuth sessions until their deadline
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a Redis-backed session store
func NewRedisSessionStore(client *Client) ports.SessionStore {
	return &RedisSessionStore{client: client.GetRedis()}
}

// CreateSession stores the session keyed by its state
func (s *RedisSessionStore) CreateSession(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.client.Set(ctx, SessionKey(session.State), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// ConsumeSession atomically reads and deletes the session
func (s *RedisSessionStore) ConsumeSession(ctx context.Context, state string) (*domain.Session, error) {
	data, err := s.client.GetDel(ctx, SessionKey(state)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	if session.Expired(time.Now()) {
		return nil, nil
	}

	return &session, nil
}

// RedisWebhookDeduper claims webhook ids with SETNX
type RedisWebhookDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisWebhookDeduper creates a deduper remembering ids for WebhookDedupeTTL
func NewRedisWebhookDeduper(client *Client) ports.WebhookDeduper {
	return &RedisWebhookDeduper{client: client.GetRedis(), ttl: WebhookDedupeTTL}
}

// ClaimWebhook returns true the first time an id is seen
func (d *RedisWebhookDeduper) ClaimWebhook(ctx context.Context, webhookID string) (bool, error) {
	claimed, err := d.client.SetNX(ctx, WebhookKey(webhookID), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim webhook: %w", err)
	}
	return claimed, nil
}

// ReleaseWebhook deletes the claim of a delivery
func (d *RedisWebhookDeduper) ReleaseWebhook(ctx context.Context, webhookID string) error {
	if err := d.client.Del(ctx, WebhookKey(webhookID)).Err(); err != nil {
		return fmt.Errorf("failed to release webhook: %w", err)
	}
	return nil
}
