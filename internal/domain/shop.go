package domain

import (
	"regexp"
	"strings"
	"time"
)

// SubscriptionStatus mirrors Shopify's AppSubscriptionStatus enum
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionPending   SubscriptionStatus = "PENDING"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionDeclined  SubscriptionStatus = "DECLINED"
	SubscriptionExpired   SubscriptionStatus = "EXPIRED"
	SubscriptionFrozen    SubscriptionStatus = "FROZEN"
	SubscriptionNone      SubscriptionStatus = ""
)

// Shop represents an installed Shopify store
type Shop struct {
	ID                 string             `json:"id"`
	Domain             string             `json:"domain"`
	AccessToken        string             `json:"-"` // Encrypted at rest
	Scopes             []string           `json:"scopes"`
	SubscriptionID     string             `json:"subscriptionId,omitempty"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus,omitempty"`
	InstalledAt        *time.Time         `json:"installedAt,omitempty"`
	UninstalledAt      *time.Time         `json:"uninstalledAt,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// HasActiveSubscription reports whether the shop's stored subscription is active
func (s *Shop) HasActiveSubscription() bool {
	return s != nil && s.SubscriptionStatus == SubscriptionActive
}

// TrialEndsAt returns the moment the trial lapses for the given trial length
func (s *Shop) TrialEndsAt(trialDays int) time.Time {
	return s.CreatedAt.Add(time.Duration(trialDays) * 24 * time.Hour)
}

// InTrial reports whether now falls within the trial window
func (s *Shop) InTrial(trialDays int, now time.Time) bool {
	if trialDays <= 0 {
		return false
	}
	return now.Before(s.TrialEndsAt(trialDays))
}

var shopDomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*\.myshopify\.com$`)

// NormalizeShopDomain lowercases and trims a shop domain, stripping any scheme
func NormalizeShopDomain(shop string) string {
	shop = strings.ToLower(strings.TrimSpace(shop))
	shop = strings.TrimPrefix(shop, "https://")
	shop = strings.TrimPrefix(shop, "http://")
	return strings.TrimSuffix(shop, "/")
}

// IsValidShopDomain checks for the your-store.myshopify.com form
func IsValidShopDomain(shop string) bool {
	return shopDomainPattern.MatchString(shop)
}
