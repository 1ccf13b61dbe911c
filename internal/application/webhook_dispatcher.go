package application

import (
	"context"
	"errors"
	"fmt"

	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/ports"

	"github.com/rs/zerolog"
)

// WebhookHandler processes the webhook topics it claims
type WebhookHandler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}

// WebhookDispatcher routes verified webhook events to their handlers
type WebhookDispatcher struct {
	handlers []WebhookHandler
	logger   zerolog.Logger
}

// NewWebhookDispatcher creates an empty dispatcher
func NewWebhookDispatcher(logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{logger: logger}
}

// RegisterHandler adds a handler
func (d *WebhookDispatcher) RegisterHandler(handler WebhookHandler) {
	d.handlers = append(d.handlers, handler)
}

// Dispatch runs every handler that claims the event's topic
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) error {
	handled := false
	var errs []error
	for _, h := range d.handlers {
		if !h.CanHandle(event.Topic) {
			continue
		}
		handled = true
		if err := h.Handle(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if !handled {
		d.logger.Debug().Str("topic", event.Topic).Str("shop", event.Shop).Msg("No handler for webhook topic")
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to handle %s: %w", event.Topic, errors.Join(errs...))
	}
	return nil
}

// WebhookService deduplicates, logs and dispatches verified deliveries
type WebhookService struct {
	deduper    ports.WebhookDeduper
	shops      *ShopService
	dispatcher *WebhookDispatcher
	logger     zerolog.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(deduper ports.WebhookDeduper, shops *ShopService, dispatcher *WebhookDispatcher, logger zerolog.Logger) *WebhookService {
	return &WebhookService{
		deduper:    deduper,
		shops:      shops,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Process handles one delivery; it returns duplicate=true for an already processed id
func (s *WebhookService) Process(ctx context.Context, event *domain.WebhookEvent) (bool, error) {
	first, err := s.deduper.ClaimWebhook(ctx, event.ID)
	if err != nil {
		// Dedupe store unavailable: process anyway
		s.logger.Warn().Err(err).Str("webhookId", event.ID).Msg("Failed to claim webhook")
		first = true
	}
	if !first {
		s.logger.Info().Str("webhookId", event.ID).Str("topic", event.Topic).Msg("Duplicate webhook ignored")
		return true, nil
	}

	if err := s.shops.LogWebhook(ctx, event); err != nil {
		// Continue processing even if logging fails
		s.logger.Warn().Err(err).Str("webhookId", event.ID).Msg("Webhook not logged")
	}

	if err := s.dispatcher.Dispatch(ctx, event); err != nil {
		if rerr := s.deduper.ReleaseWebhook(ctx, event.ID); rerr != nil {
			s.logger.Warn().Err(rerr).Str("webhookId", event.ID).Msg("Failed to release webhook claim")
		}
		return false, err
	}

	s.logger.Info().Str("topic", event.Topic).Str("shop", event.Shop).Str("webhookId", event.ID).Msg("Webhook processed")
	return false, nil
}
