// Package memory provides in-process repositories for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/ports"

	"github.com/google/uuid"
)

// Store holds every collection behind a single lock
type Store struct {
	mu        sync.RWMutex
	shops     map[string]*domain.Shop
	rules     map[string]*domain.Rule
	settings  map[string]*domain.Settings
	shipments map[string]*domain.PrepShipment
	webhooks  map[string]*domain.WebhookEvent
	now       func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		shops:     make(map[string]*domain.Shop),
		rules:     make(map[string]*domain.Rule),
		settings:  make(map[string]*domain.Settings),
		shipments: make(map[string]*domain.PrepShipment),
		webhooks:  make(map[string]*domain.WebhookEvent),
		now:       time.Now,
	}
}

// Repositories exposes the store through the repository ports
func (s *Store) Repositories() ports.Repositories {
	return ports.Repositories{
		Shops:         &shopRepository{s},
		Rules:         &ruleRepository{s},
		Settings:      &settingsRepository{s},
		PrepShipments: &prepShipmentRepository{s},
		Webhooks:      &webhookLogRepository{s},
	}
}

// WebhookEvents returns the logged webhook deliveries
func (s *Store) WebhookEvents() []*domain.WebhookEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]*domain.WebhookEvent, 0, len(s.webhooks))
	for _, e := range s.webhooks {
		c := *e
		events = append(events, &c)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ReceivedAt.Before(events[j].ReceivedAt) })
	return events
}

type shopRepository struct{ s *Store }

func (r *shopRepository) UpsertShop(_ context.Context, shopDomain string) (*domain.Shop, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if shop, ok := r.s.shops[shopDomain]; ok {
		c := *shop
		return &c, nil
	}

	now := r.s.now()
	shop := &domain.Shop{
		ID:        uuid.NewString(),
		Domain:    shopDomain,
		Scopes:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.shops[shopDomain] = shop
	c := *shop
	return &c, nil
}

func (r *shopRepository) GetShop(_ context.Context, shopDomain string) (*domain.Shop, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	shop, ok := r.s.shops[shopDomain]
	if !ok {
		return nil, nil
	}
	c := *shop
	return &c, nil
}

func (r *shopRepository) SaveShop(_ context.Context, shop *domain.Shop) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	if existing, ok := r.s.shops[shop.Domain]; ok {
		shop.ID = existing.ID
		shop.CreatedAt = existing.CreatedAt
	} else {
		if shop.ID == "" {
			shop.ID = uuid.NewString()
		}
		if shop.CreatedAt.IsZero() {
			shop.CreatedAt = now
		}
	}
	shop.UpdatedAt = now

	c := *shop
	r.s.shops[shop.Domain] = &c
	return nil
}

func (r *shopRepository) DeleteShop(_ context.Context, shopDomain string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.shops, shopDomain)
	return nil
}

type ruleRepository struct{ s *Store }

func (r *ruleRepository) ListByShop(_ context.Context, shopDomain string, enabledOnly bool) ([]*domain.Rule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rules := []*domain.Rule{}
	for _, rule := range r.s.rules {
		if rule.ShopDomain != shopDomain || (enabledOnly && !rule.Enabled) {
			continue
		}
		c := *rule
		rules = append(rules, &c)
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].CreatedAt.Before(rules[j].CreatedAt) })
	return rules, nil
}

func (r *ruleRepository) GetByID(_ context.Context, shopDomain string, id string) (*domain.Rule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rule, ok := r.s.rules[id]
	if !ok || rule.ShopDomain != shopDomain {
		return nil, nil
	}
	c := *rule
	return &c, nil
}

func (r *ruleRepository) Create(_ context.Context, rule *domain.Rule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	rule.ID = uuid.NewString()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	c := *rule
	r.s.rules[rule.ID] = &c
	return nil
}

func (r *ruleRepository) Update(_ context.Context, rule *domain.Rule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.rules[rule.ID]
	if !ok || existing.ShopDomain != rule.ShopDomain {
		return domain.ErrNotFound
	}
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = r.s.now()

	c := *rule
	r.s.rules[rule.ID] = &c
	return nil
}

func (r *ruleRepository) Delete(_ context.Context, shopDomain string, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.rules[id]
	if !ok || existing.ShopDomain != shopDomain {
		return domain.ErrNotFound
	}
	delete(r.s.rules, id)
	return nil
}

func (r *ruleRepository) DeleteByShop(_ context.Context, shopDomain string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, rule := range r.s.rules {
		if rule.ShopDomain == shopDomain {
			delete(r.s.rules, id)
			n++
		}
	}
	return n, nil
}

type settingsRepository struct{ s *Store }

func (r *settingsRepository) GetByShop(_ context.Context, shopDomain string) (*domain.Settings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	settings, ok := r.s.settings[shopDomain]
	if !ok {
		return nil, nil
	}
	c := *settings
	return &c, nil
}

func (r *settingsRepository) Save(_ context.Context, settings *domain.Settings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	if existing, ok := r.s.settings[settings.ShopDomain]; ok {
		settings.ID = existing.ID
		settings.CreatedAt = existing.CreatedAt
	} else {
		settings.ID = uuid.NewString()
		settings.CreatedAt = now
	}
	settings.UpdatedAt = now

	c := *settings
	r.s.settings[settings.ShopDomain] = &c
	return nil
}

func (r *settingsRepository) DeleteByShop(_ context.Context, shopDomain string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.settings, shopDomain)
	return nil
}

type prepShipmentRepository struct{ s *Store }

func (r *prepShipmentRepository) ListByShop(_ context.Context, shopDomain string) ([]*domain.PrepShipment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	shipments := []*domain.PrepShipment{}
	for _, p := range r.s.shipments {
		if p.ShopDomain != shopDomain {
			continue
		}
		c := *p
		shipments = append(shipments, &c)
	}
	sort.SliceStable(shipments, func(i, j int) bool { return shipments[i].CreatedAt.After(shipments[j].CreatedAt) })
	return shipments, nil
}

func (r *prepShipmentRepository) GetByID(_ context.Context, shopDomain string, id string) (*domain.PrepShipment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.shipments[id]
	if !ok || p.ShopDomain != shopDomain {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *prepShipmentRepository) Create(_ context.Context, shipment *domain.PrepShipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	shipment.ID = uuid.NewString()
	shipment.CreatedAt = now
	shipment.UpdatedAt = now

	c := *shipment
	r.s.shipments[shipment.ID] = &c
	return nil
}

func (r *prepShipmentRepository) Update(_ context.Context, shipment *domain.PrepShipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.shipments[shipment.ID]
	if !ok || existing.ShopDomain != shipment.ShopDomain {
		return domain.ErrNotFound
	}
	shipment.CreatedAt = existing.CreatedAt
	shipment.UpdatedAt = r.s.now()

	c := *shipment
	r.s.shipments[shipment.ID] = &c
	return nil
}

func (r *prepShipmentRepository) Delete(_ context.Context, shopDomain string, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.shipments[id]
	if !ok || existing.ShopDomain != shopDomain {
		return domain.ErrNotFound
	}
	delete(r.s.shipments, id)
	return nil
}

func (r *prepShipmentRepository) DeleteByShop(_ context.Context, shopDomain string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, p := range r.s.shipments {
		if p.ShopDomain == shopDomain {
			delete(r.s.shipments, id)
			n++
		}
	}
	return n, nil
}

type webhookLogRepository struct{ s *Store }

func (r *webhookLogRepository) LogWebhook(_ context.Context, event *domain.WebhookEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = r.s.now()
	}
	c := *event
	r.s.webhooks[event.ID] = &c
	return nil
}

func (r *webhookLogRepository) DeleteByShop(_ context.Context, shopDomain string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, e := range r.s.webhooks {
		if e.Shop == shopDomain {
			delete(r.s.webhooks, id)
			n++
		}
	}
	return n, nil
}
