package domain

import (
	"fmt"
	"time"
)

// PrepShipmentStatus is the lifecycle label of a prep shipment
type PrepShipmentStatus string

const (
	PrepShipmentPending PrepShipmentStatus = "Pending"
	PrepShipmentPrepped PrepShipmentStatus = "Prepped"
	PrepShipmentShipped PrepShipmentStatus = "Shipped"
)

// PrepShipment tracks units being prepared for shipping
type PrepShipment struct {
	ID         string             `json:"id"`
	ShopDomain string             `json:"shop"`
	Name       string             `json:"name,omitempty"`
	Units      int                `json:"units"`
	Status     PrepShipmentStatus `json:"status"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// Validate checks the shipment fields
func (p *PrepShipment) Validate() error {
	if p.ShopDomain == "" {
		return fmt.Errorf("%w: shop is required", ErrInvalidInput)
	}
	if p.Units < 0 {
		return fmt.Errorf("%w: units must not be negative", ErrInvalidInput)
	}
	switch p.Status {
	case PrepShipmentPending, PrepShipmentPrepped, PrepShipmentShipped:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, p.Status)
	}
	return nil
}
