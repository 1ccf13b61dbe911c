package domain

import (
	"fmt"
	"time"
)

// Settings holds per-shop cart-wide bounds and checkout behaviour
type Settings struct {
	ID                   string    `json:"id"`
	ShopDomain           string    `json:"shop"`
	GlobalMinCart        *int      `json:"globalMinCart,omitempty"`
	GlobalMaxCart        *int      `json:"globalMaxCart,omitempty"`
	ShowWarning          bool      `json:"showWarning"`
	BlockCheckout        *bool     `json:"blockCheckout,omitempty"`
	CustomMessageEnabled bool      `json:"customMessageEnabled"`
	CustomMessage        string    `json:"customMessage,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// DefaultSettings returns the record created on first read
func DefaultSettings(shopDomain string) *Settings {
	block := true
	return &Settings{
		ShopDomain:    shopDomain,
		ShowWarning:   true,
		BlockCheckout: &block,
	}
}

// ShouldBlockCheckout resolves the block flag; unset or absent settings block
func (s *Settings) ShouldBlockCheckout() bool {
	if s == nil || s.BlockCheckout == nil {
		return true
	}
	return *s.BlockCheckout
}

// Validate checks the settings invariants
func (s *Settings) Validate() error {
	if s.ShopDomain == "" {
		return fmt.Errorf("%w: shop is required", ErrInvalidInput)
	}
	if s.GlobalMinCart != nil && *s.GlobalMinCart < 0 {
		return fmt.Errorf("%w: globalMinCart must not be negative", ErrInvalidInput)
	}
	if s.GlobalMaxCart != nil && *s.GlobalMaxCart < 0 {
		return fmt.Errorf("%w: globalMaxCart must not be negative", ErrInvalidInput)
	}
	if s.GlobalMinCart != nil && s.GlobalMaxCart != nil && *s.GlobalMinCart > *s.GlobalMaxCart {
		return fmt.Errorf("%w: globalMinCart must not exceed globalMaxCart", ErrInvalidInput)
	}
	return nil
}

// Ruleset is everything the cart validator needs for one shop
type Ruleset struct {
	Rules    []*Rule   `json:"rules"`
	Settings *Settings `json:"settings,omitempty"`
}
