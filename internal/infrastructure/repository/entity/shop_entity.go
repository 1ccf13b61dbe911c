package entity

import (
	"time"

	"shopify-quantity-rules/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoShopDoc represents a shop in MongoDB
type MongoShopDoc struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Domain             string             `bson:"domain"`
	AccessToken        string             `bson:"accessToken"`
	Scopes             []string           `bson:"scopes"`
	SubscriptionID     string             `bson:"subscriptionId"`
	SubscriptionStatus string             `bson:"subscriptionStatus"`
	InstalledAt        *time.Time         `bson:"installedAt,omitempty"`
	UninstalledAt      *time.Time         `bson:"uninstalledAt,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoShopDoc) ToDomain() *domain.Shop {
	return &domain.Shop{
		ID:                 d.ID.Hex(),
		Domain:             d.Domain,
		AccessToken:        d.AccessToken,
		Scopes:             d.Scopes,
		SubscriptionID:     d.SubscriptionID,
		SubscriptionStatus: domain.SubscriptionStatus(d.SubscriptionStatus),
		InstalledAt:        d.InstalledAt,
		UninstalledAt:      d.UninstalledAt,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

// MongoShopDocFromDomain converts a domain entity to a MongoDB document
func MongoShopDocFromDomain(shop *domain.Shop) *MongoShopDoc {
	doc := &MongoShopDoc{
		Domain:             shop.Domain,
		AccessToken:        shop.AccessToken,
		Scopes:             shop.Scopes,
		SubscriptionID:     shop.SubscriptionID,
		SubscriptionStatus: string(shop.SubscriptionStatus),
		InstalledAt:        shop.InstalledAt,
		UninstalledAt:      shop.UninstalledAt,
		CreatedAt:          shop.CreatedAt,
		UpdatedAt:          shop.UpdatedAt,
	}

	if shop.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(shop.ID); err == nil {
			doc.ID = objID
		}
	}

	return doc
}
