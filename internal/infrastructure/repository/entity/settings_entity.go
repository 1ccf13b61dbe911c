package entity

import (
	"time"

	"shopify-quantity-rules/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoSettingsDoc represents the per-shop settings singleton in MongoDB
type MongoSettingsDoc struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	ShopDomain           string             `bson:"shopDomain"`
	GlobalMinCart        *int               `bson:"globalMinCart"`
	GlobalMaxCart        *int               `bson:"globalMaxCart"`
	ShowWarning          bool               `bson:"showWarning"`
	BlockCheckout        *bool              `bson:"blockCheckout"`
	CustomMessageEnabled bool               `bson:"customMessageEnabled"`
	CustomMessage        string             `bson:"customMessage"`
	CreatedAt            time.Time          `bson:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoSettingsDoc) ToDomain() *domain.Settings {
	return &domain.Settings{
		ID:                   d.ID.Hex(),
		ShopDomain:           d.ShopDomain,
		GlobalMinCart:        d.GlobalMinCart,
		GlobalMaxCart:        d.GlobalMaxCart,
		ShowWarning:          d.ShowWarning,
		BlockCheckout:        d.BlockCheckout,
		CustomMessageEnabled: d.CustomMessageEnabled,
		CustomMessage:        d.CustomMessage,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

// MongoSettingsDocFromDomain converts a domain entity to a MongoDB document
func MongoSettingsDocFromDomain(s *domain.Settings) *MongoSettingsDoc {
	doc := &MongoSettingsDoc{
		ShopDomain:           s.ShopDomain,
		GlobalMinCart:        s.GlobalMinCart,
		GlobalMaxCart:        s.GlobalMaxCart,
		ShowWarning:          s.ShowWarning,
		BlockCheckout:        s.BlockCheckout,
		CustomMessageEnabled: s.CustomMessageEnabled,
		CustomMessage:        s.CustomMessage,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}

	if s.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(s.ID); err == nil {
			doc.ID = objID
		}
	}

	return doc
}
