package entity

import (
	"time"

	"shopify-quantity-rules/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoPrepShipmentDoc represents a prep shipment in MongoDB
type MongoPrepShipmentDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ShopDomain string             `bson:"shopDomain"`
	Name       string             `bson:"name"`
	Units      int                `bson:"units"`
	Status     string             `bson:"status"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoPrepShipmentDoc) ToDomain() *domain.PrepShipment {
	return &domain.PrepShipment{
		ID:         d.ID.Hex(),
		ShopDomain: d.ShopDomain,
		Name:       d.Name,
		Units:      d.Units,
		Status:     domain.PrepShipmentStatus(d.Status),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// MongoPrepShipmentDocFromDomain converts a domain entity to a MongoDB document
func MongoPrepShipmentDocFromDomain(p *domain.PrepShipment) *MongoPrepShipmentDoc {
	doc := &MongoPrepShipmentDoc{
		ShopDomain: p.ShopDomain,
		Name:       p.Name,
		Units:      p.Units,
		Status:     string(p.Status),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}

	if p.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(p.ID); err == nil {
			doc.ID = objID
		}
	}

	return doc
}
