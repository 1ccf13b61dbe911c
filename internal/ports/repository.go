package ports

import (
	"context"

	"shopify-quantity-rules/internal/domain"
)

// ShopRepository defines persistence for installed shops
type ShopRepository interface {
	// UpsertShop returns the shop, creating it on first touch
	UpsertShop(ctx context.Context, shopDomain string) (*domain.Shop, error)
	// GetShop returns nil, nil when the shop does not exist
	GetShop(ctx context.Context, shopDomain string) (*domain.Shop, error)
	SaveShop(ctx context.Context, shop *domain.Shop) error
	DeleteShop(ctx context.Context, shopDomain string) error
}

// RuleRepository defines persistence for quantity rules
type RuleRepository interface {
	ListByShop(ctx context.Context, shopDomain string, enabledOnly bool) ([]*domain.Rule, error)
	// GetByID returns nil, nil when the rule does not exist for the shop
	GetByID(ctx context.Context, shopDomain string, id string) (*domain.Rule, error)
	Create(ctx context.Context, rule *domain.Rule) error
	Update(ctx context.Context, rule *domain.Rule) error
	Delete(ctx context.Context, shopDomain string, id string) error
	DeleteByShop(ctx context.Context, shopDomain string) (int64, error)
}

// SettingsRepository defines persistence for the per-shop settings singleton
type SettingsRepository interface {
	// GetByShop returns nil, nil when no settings were saved yet
	GetByShop(ctx context.Context, shopDomain string) (*domain.Settings, error)
	Save(ctx context.Context, settings *domain.Settings) error
	DeleteByShop(ctx context.Context, shopDomain string) error
}

// PrepShipmentRepository defines persistence for prep shipments
type PrepShipmentRepository interface {
	ListByShop(ctx context.Context, shopDomain string) ([]*domain.PrepShipment, error)
	GetByID(ctx context.Context, shopDomain string, id string) (*domain.PrepShipment, error)
	Create(ctx context.Context, shipment *domain.PrepShipment) error
	Update(ctx context.Context, shipment *domain.PrepShipment) error
	Delete(ctx context.Context, shopDomain string, id string) error
	DeleteByShop(ctx context.Context, shopDomain string) (int64, error)
}

// WebhookLogRepository records verified webhook deliveries
type WebhookLogRepository interface {
	LogWebhook(ctx context.Context, event *domain.WebhookEvent) error
	DeleteByShop(ctx context.Context, shopDomain string) (int64, error)
}

// Repositories groups every store the application needs
type Repositories struct {
	Shops         ShopRepository
	Rules         RuleRepository
	Settings      SettingsRepository
	PrepShipments PrepShipmentRepository
	Webhooks      WebhookLogRepository
}
