package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingInterval is the recurring charge period accepted by Shopify
type BillingInterval string

const (
	IntervalEvery30Days BillingInterval = "EVERY_30_DAYS"
	IntervalAnnual      BillingInterval = "ANNUAL"
)

// SubscriptionPlan describes the recurring charge offered to merchants
type SubscriptionPlan struct {
	Name      string
	Price     decimal.Decimal
	Currency  string
	Interval  BillingInterval
	TrialDays int
	Test      bool
}

// AppSubscription is a subscription as reported by Shopify
type AppSubscription struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Status           SubscriptionStatus `json:"status"`
	TrialDays        int                `json:"trialDays"`
	Test             bool               `json:"test"`
	CurrentPeriodEnd *time.Time         `json:"currentPeriodEnd,omitempty"`
	CreatedAt        *time.Time         `json:"createdAt,omitempty"`
}

// BillingStatus summarises a shop's access to the app
type BillingStatus struct {
	Shop               string             `json:"shop"`
	Active             bool               `json:"active"`
	Status             SubscriptionStatus `json:"status"`
	SubscriptionID     string             `json:"subscriptionId,omitempty"`
	TrialActive        bool               `json:"trialActive"`
	TrialEndsAt        time.Time          `json:"trialEndsAt"`
	TrialDaysRemaining int                `json:"trialDaysRemaining"`
}

// HasAccess reports whether the shop may use the app
func (b *BillingStatus) HasAccess() bool {
	return b.Active || b.TrialActive
}

// ProductSummary is the slim product shape returned by search
type ProductSummary struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Handle   string           `json:"handle"`
	Variants []VariantSummary `json:"variants"`
}

// VariantSummary is a product variant in search results
type VariantSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	SKU   string `json:"sku,omitempty"`
}
