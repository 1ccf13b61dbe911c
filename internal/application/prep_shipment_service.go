package application

import (
	"context"
	"fmt"

	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/ports"

	"github.com/rs/zerolog"
)

// PrepShipmentInput carries the writable fields of a prep shipment
type PrepShipmentInput struct {
	Shop   string
	Name   string
	Units  int
	Status domain.PrepShipmentStatus
}

// PrepShipmentService manages prep shipments
type PrepShipmentService struct {
	shipments ports.PrepShipmentRepository
	shops     *ShopService
	logger    zerolog.Logger
}

// NewPrepShipmentService creates a new prep shipment service
func NewPrepShipmentService(shipments ports.PrepShipmentRepository, shops *ShopService, logger zerolog.Logger) *PrepShipmentService {
	return &PrepShipmentService{
		shipments: shipments,
		shops:     shops,
		logger:    logger,
	}
}

// List returns the shop's shipments, newest first
func (s *PrepShipmentService) List(ctx context.Context, shopDomain string) ([]*domain.PrepShipment, error) {
	shop, err := s.shops.EnsureShop(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	shipments, err := s.shipments.ListByShop(ctx, shop.Domain)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop.Domain).Msg("Failed to list prep shipments")
		return nil, fmt.Errorf("failed to list prep shipments: %w", err)
	}
	return shipments, nil
}

// Create stores a new shipment; status defaults to Pending
func (s *PrepShipmentService) Create(ctx context.Context, input PrepShipmentInput) (*domain.PrepShipment, error) {
	shop, err := s.shops.EnsureShop(ctx, input.Shop)
	if err != nil {
		return nil, err
	}

	shipment := &domain.PrepShipment{
		ShopDomain: shop.Domain,
		Name:       input.Name,
		Units:      input.Units,
		Status:     input.Status,
	}
	if shipment.Status == "" {
		shipment.Status = domain.PrepShipmentPending
	}
	if err := shipment.Validate(); err != nil {
		return nil, err
	}

	if err := s.shipments.Create(ctx, shipment); err != nil {
		s.logger.Error().Err(err).Str("shop", shop.Domain).Msg("Failed to create prep shipment")
		return nil, fmt.Errorf("failed to create prep shipment: %w", err)
	}
	return shipment, nil
}

// Update replaces a shipment's fields; an empty status keeps the current one
func (s *PrepShipmentService) Update(ctx context.Context, id string, input PrepShipmentInput) (*domain.PrepShipment, error) {
	shop, err := s.shops.EnsureShop(ctx, input.Shop)
	if err != nil {
		return nil, err
	}

	shipment, err := s.shipments.GetByID(ctx, shop.Domain, id)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop.Domain).Str("id", id).Msg("Failed to get prep shipment")
		return nil, fmt.Errorf("failed to get prep shipment: %w", err)
	}
	if shipment == nil {
		return nil, fmt.Errorf("prep shipment %s: %w", id, domain.ErrNotFound)
	}

	shipment.Name = input.Name
	shipment.Units = input.Units
	if input.Status != "" {
		shipment.Status = input.Status
	}
	if err := shipment.Validate(); err != nil {
		return nil, err
	}

	if err := s.shipments.Update(ctx, shipment); err != nil {
		s.logger.Error().Err(err).Str("shop", shop.Domain).Str("id", id).Msg("Failed to update prep shipment")
		return nil, fmt.Errorf("failed to update prep shipment: %w", err)
	}
	return shipment, nil
}

// Delete removes a shipment
func (s *PrepShipmentService) Delete(ctx context.Context, shopDomain string, id string) error {
	shop, err := s.shops.EnsureShop(ctx, shopDomain)
	if err != nil {
		return err
	}

	if err := s.shipments.Delete(ctx, shop.Domain, id); err != nil {
		return fmt.Errorf("failed to delete prep shipment %s: %w", id, err)
	}
	return nil
}
