package cache

import "fmt"

// RedisPrefix is the prefix for all Redis keys written by the app
const RedisPrefix = "qr:"

// RulesetKey returns the Redis key for a shop's cached ruleset
func RulesetKey(shopDomain string) string {
	return fmt.Sprintf("%sruleset:%s", RedisPrefix, shopDomain)
}

// RulesetVersionKey returns the Redis key counting invalidations of a shop's ruleset
func RulesetVersionKey(shopDomain string) string {
	return fmt.Sprintf("%sruleset-version:%s", RedisPrefix, shopDomain)
}

// SessionKey returns the Redis key for a pending OAuth session
func SessionKey(state string) string {
	return fmt.Sprintf("%soauth:%s", RedisPrefix, state)
}

// WebhookKey returns the Redis key marking a processed webhook delivery
func WebhookKey(webhookID string) string {
	return fmt.Sprintf("%swebhook:%s", RedisPrefix, webhookID)
}
