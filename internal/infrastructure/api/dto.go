package api

import (
	"bytes"
	"encoding/json"

	"shopify-quantity-rules/internal/application"
	"shopify-quantity-rules/internal/domain"
)

type ruleRequest struct {
	Shop        string `json:"shop" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=product variant cart"`
	TargetID    string `json:"targetId" validate:"required_unless=Type cart"`
	TargetTitle string `json:"targetTitle" validate:"max=255"`
	MinQuantity *int   `json:"minQuantity" validate:"omitempty,gte=0"`
	MaxQuantity *int   `json:"maxQuantity" validate:"omitempty,gte=0"`
	Enabled     *bool  `json:"enabled"`
	Message     string `json:"message" validate:"max=500"`
}

func (req ruleRequest) toInput() application.RuleInput {
	return application.RuleInput{
		Shop:        req.Shop,
		Type:        domain.RuleType(req.Type),
		TargetID:    req.TargetID,
		TargetTitle: req.TargetTitle,
		MinQuantity: req.MinQuantity,
		MaxQuantity: req.MaxQuantity,
		Enabled:     req.Enabled,
		Message:     req.Message,
	}
}

type settingsRequest struct {
	Shop                 string  `json:"shop" validate:"required"`
	GlobalMinCart        *int    `json:"globalMinCart" validate:"omitempty,gte=0"`
	GlobalMaxCart        *int    `json:"globalMaxCart" validate:"omitempty,gte=0"`
	ShowWarning          *bool   `json:"showWarning"`
	BlockCheckout        *bool   `json:"blockCheckout"`
	CustomMessageEnabled *bool   `json:"customMessageEnabled"`
	CustomMessage        *string `json:"customMessage" validate:"omitempty,max=500"`
}

func (req settingsRequest) toInput() application.SettingsInput {
	return application.SettingsInput{
		Shop:                 req.Shop,
		GlobalMinCart:        req.GlobalMinCart,
		GlobalMaxCart:        req.GlobalMaxCart,
		ShowWarning:          req.ShowWarning,
		BlockCheckout:        req.BlockCheckout,
		CustomMessageEnabled: req.CustomMessageEnabled,
		CustomMessage:        req.CustomMessage,
	}
}

type cartRequest struct {
	Shop  string            `json:"shop" validate:"required"`
	Items []cartItemRequest `json:"items" validate:"required,dive"`
}

type cartItemRequest struct {
	ProductID flexibleID `json:"productId"`
	VariantID flexibleID `json:"variantId"`
	Quantity  int        `json:"quantity" validate:"gte=0"`
	Title     string     `json:"title"`
}

func (req cartRequest) toItems() []domain.CartItem {
	items := make([]domain.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.CartItem{
			ProductID: string(it.ProductID),
			VariantID: string(it.VariantID),
			Quantity:  it.Quantity,
			Title:     it.Title,
		})
	}
	return items
}

// flexibleID accepts the numeric ids of the storefront cart API as well as strings
type flexibleID string

func (id *flexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexibleID(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = flexibleID(n.String())
	return nil
}

type prepShipmentRequest struct {
	Shop   string `json:"shop" validate:"required"`
	Name   string `json:"name" validate:"max=255"`
	Units  int    `json:"units" validate:"gte=0"`
	Status string `json:"status" validate:"omitempty,oneof=Pending Prepped Shipped"`
}

func (req prepShipmentRequest) toInput() application.PrepShipmentInput {
	return application.PrepShipmentInput{
		Shop:   req.Shop,
		Name:   req.Name,
		Units:  req.Units,
		Status: domain.PrepShipmentStatus(req.Status),
	}
}
