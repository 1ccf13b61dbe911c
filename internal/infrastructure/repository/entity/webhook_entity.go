package entity

import (
	"time"

	"shopify-quantity-rules/internal/domain"
)

// MongoWebhookDoc represents a logged webhook delivery
type MongoWebhookDoc struct {
	ID         string    `bson:"_id"`
	Topic      string    `bson:"topic"`
	Shop       string    `bson:"shop"`
	Payload    string    `bson:"payload"`
	Verified   bool      `bson:"verified"`
	ReceivedAt time.Time `bson:"receivedAt"`
}

// MongoWebhookDocFromDomain converts a webhook event to a MongoDB document
func MongoWebhookDocFromDomain(event *domain.WebhookEvent) *MongoWebhookDoc {
	return &MongoWebhookDoc{
		ID:         event.ID,
		Topic:      event.Topic,
		Shop:       event.Shop,
		Payload:    string(event.Payload),
		Verified:   event.Verified,
		ReceivedAt: event.ReceivedAt,
	}
}
