package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ViolationType classifies a breached bound
type ViolationType string

const (
	ViolationMin     ViolationType = "min"
	ViolationMax     ViolationType = "max"
	ViolationCartMin ViolationType = "cart_min"
	ViolationCartMax ViolationType = "cart_max"
)

// CartItem is a single line of a submitted cart
type CartItem struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
	Title     string `json:"title"`
}

// Violation is one rule or settings bound breached by a cart
type Violation struct {
	Type    ViolationType `json:"type"`
	Item    *CartItem     `json:"item,omitempty"`
	RuleID  string        `json:"ruleId,omitempty"`
	Limit   int           `json:"limit"`
	Current int           `json:"current"`
	Message string        `json:"message"`
}

// ValidationResult is the outcome of validating a cart
type ValidationResult struct {
	Valid         bool        `json:"valid"`
	Violations    []Violation `json:"violations"`
	BlockCheckout bool        `json:"blockCheckout"`
	ShowWarning   bool        `json:"showWarning"`
	CartTotal     int         `json:"cartTotal"`
}

// ValidateCart checks items against the enabled rules and settings of a shop.
// Every breached bound is reported; nothing short-circuits.
func ValidateCart(items []CartItem, rules []*Rule, settings *Settings) *ValidationResult {
	violations := make([]Violation, 0)

	for i := range items {
		item := items[i]
		for _, rule := range rules {
			if !rule.Matches(item) {
				continue
			}
			title := item.Title
			if title == "" {
				title = rule.TargetTitle
			}
			if rule.MinQuantity != nil && item.Quantity < *rule.MinQuantity {
				violations = append(violations, Violation{
					Type:    ViolationMin,
					Item:    &items[i],
					RuleID:  rule.ID,
					Limit:   *rule.MinQuantity,
					Current: item.Quantity,
					Message: ruleMessage(rule.Message, defaultItemMessage(ViolationMin, title, *rule.MinQuantity), title, *rule.MinQuantity, item.Quantity),
				})
			}
			if rule.MaxQuantity != nil && item.Quantity > *rule.MaxQuantity {
				violations = append(violations, Violation{
					Type:    ViolationMax,
					Item:    &items[i],
					RuleID:  rule.ID,
					Limit:   *rule.MaxQuantity,
					Current: item.Quantity,
					Message: ruleMessage(rule.Message, defaultItemMessage(ViolationMax, title, *rule.MaxQuantity), title, *rule.MaxQuantity, item.Quantity),
				})
			}
		}
	}

	total := CartTotal(items)

	for _, rule := range rules {
		if !rule.Enabled || rule.Type != RuleTypeCart {
			continue
		}
		if rule.MinQuantity != nil && total < *rule.MinQuantity {
			violations = append(violations, Violation{
				Type:    ViolationCartMin,
				RuleID:  rule.ID,
				Limit:   *rule.MinQuantity,
				Current: total,
				Message: ruleMessage(rule.Message, defaultCartMessage(ViolationCartMin, *rule.MinQuantity), "", *rule.MinQuantity, total),
			})
		}
		if rule.MaxQuantity != nil && total > *rule.MaxQuantity {
			violations = append(violations, Violation{
				Type:    ViolationCartMax,
				RuleID:  rule.ID,
				Limit:   *rule.MaxQuantity,
				Current: total,
				Message: ruleMessage(rule.Message, defaultCartMessage(ViolationCartMax, *rule.MaxQuantity), "", *rule.MaxQuantity, total),
			})
		}
	}

	if settings != nil {
		custom := ""
		if settings.CustomMessageEnabled {
			custom = settings.CustomMessage
		}
		if settings.GlobalMinCart != nil && total < *settings.GlobalMinCart {
			violations = append(violations, Violation{
				Type:    ViolationCartMin,
				Limit:   *settings.GlobalMinCart,
				Current: total,
				Message: ruleMessage(custom, defaultCartMessage(ViolationCartMin, *settings.GlobalMinCart), "", *settings.GlobalMinCart, total),
			})
		}
		if settings.GlobalMaxCart != nil && total > *settings.GlobalMaxCart {
			violations = append(violations, Violation{
				Type:    ViolationCartMax,
				Limit:   *settings.GlobalMaxCart,
				Current: total,
				Message: ruleMessage(custom, defaultCartMessage(ViolationCartMax, *settings.GlobalMaxCart), "", *settings.GlobalMaxCart, total),
			})
		}
	}

	showWarning := true
	if settings != nil {
		showWarning = settings.ShowWarning
	}

	return &ValidationResult{
		Valid:         len(violations) == 0,
		Violations:    violations,
		BlockCheckout: settings.ShouldBlockCheckout(),
		ShowWarning:   showWarning,
		CartTotal:     total,
	}
}

// CartTotal sums the quantities of all line items
func CartTotal(items []CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func defaultItemMessage(t ViolationType, title string, limit int) string {
	if title == "" {
		title = "this item"
	}
	if t == ViolationMin {
		return fmt.Sprintf("Minimum quantity for %s is %d", title, limit)
	}
	return fmt.Sprintf("Maximum quantity for %s is %d", title, limit)
}

func defaultCartMessage(t ViolationType, limit int) string {
	if t == ViolationCartMin {
		return fmt.Sprintf("Cart must contain at least %d items", limit)
	}
	return fmt.Sprintf("Cart cannot contain more than %d items", limit)
}

// ruleMessage picks the custom message when set and fills its placeholders
func ruleMessage(custom, fallback, title string, limit, current int) string {
	if strings.TrimSpace(custom) == "" {
		return fallback
	}
	return strings.NewReplacer(
		"{{title}}", title,
		"{{limit}}", strconv.Itoa(limit),
		"{{current}}", strconv.Itoa(current),
	).Replace(custom)
}
