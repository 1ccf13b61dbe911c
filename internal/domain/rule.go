package domain

import (
	"fmt"
	"strings"
	"time"
)

// RuleType is the scope a quantity rule applies to
type RuleType string

const (
	RuleTypeProduct RuleType = "product"
	RuleTypeVariant RuleType = "variant"
	RuleTypeCart    RuleType = "cart"
)

// IsValid reports whether t is a known rule type
func (t RuleType) IsValid() bool {
	switch t {
	case RuleTypeProduct, RuleTypeVariant, RuleTypeCart:
		return true
	}
	return false
}

// Rule is a merchant-defined quantity constraint
type Rule struct {
	ID          string    `json:"id"`
	ShopDomain  string    `json:"shop"`
	Type        RuleType  `json:"type"`
	TargetID    string    `json:"targetId,omitempty"`
	TargetTitle string    `json:"targetTitle,omitempty"`
	MinQuantity *int      `json:"minQuantity,omitempty"`
	MaxQuantity *int      `json:"maxQuantity,omitempty"`
	Enabled     bool      `json:"enabled"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks the rule's invariants
func (r *Rule) Validate() error {
	if r.ShopDomain == "" {
		return fmt.Errorf("%w: shop is required", ErrInvalidInput)
	}
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: unknown rule type %q", ErrInvalidInput, r.Type)
	}
	if r.Type != RuleTypeCart && strings.TrimSpace(r.TargetID) == "" {
		return fmt.Errorf("%w: targetId is required for %s rules", ErrInvalidInput, r.Type)
	}
	if r.MinQuantity != nil && *r.MinQuantity < 0 {
		return fmt.Errorf("%w: minQuantity must not be negative", ErrInvalidInput)
	}
	if r.MaxQuantity != nil && *r.MaxQuantity < 0 {
		return fmt.Errorf("%w: maxQuantity must not be negative", ErrInvalidInput)
	}
	if r.MinQuantity != nil && r.MaxQuantity != nil && *r.MinQuantity > *r.MaxQuantity {
		return fmt.Errorf("%w: minQuantity must not exceed maxQuantity", ErrInvalidInput)
	}
	return nil
}

// Matches reports whether the rule targets the given line item
func (r *Rule) Matches(item CartItem) bool {
	if !r.Enabled {
		return false
	}
	switch r.Type {
	case RuleTypeProduct:
		return item.ProductID != "" && NormalizeID(r.TargetID) == NormalizeID(item.ProductID)
	case RuleTypeVariant:
		return item.VariantID != "" && NormalizeID(r.TargetID) == NormalizeID(item.VariantID)
	}
	return false
}

// NormalizeID reduces a Shopify GID (gid://shopify/Product/123) to its numeric tail
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	if i := strings.Index(id, "?"); i >= 0 {
		id = id[:i]
	}
	return id
}

// IntPtr is a small helper for optional bounds
func IntPtr(v int) *int {
	return &v
}
