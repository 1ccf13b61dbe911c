package entity

import (
	"time"

	"shopify-quantity-rules/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoRuleDoc represents a quantity rule in MongoDB
type MongoRuleDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ShopDomain  string             `bson:"shopDomain"`
	Type        string             `bson:"type"`
	TargetID    string             `bson:"targetId,omitempty"`
	TargetTitle string             `bson:"targetTitle,omitempty"`
	MinQuantity *int               `bson:"minQuantity,omitempty"`
	MaxQuantity *int               `bson:"maxQuantity,omitempty"`
	Enabled     bool               `bson:"enabled"`
	Message     string             `bson:"message,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoRuleDoc) ToDomain() *domain.Rule {
	return &domain.Rule{
		ID:          d.ID.Hex(),
		ShopDomain:  d.ShopDomain,
		Type:        domain.RuleType(d.Type),
		TargetID:    d.TargetID,
		TargetTitle: d.TargetTitle,
		MinQuantity: d.MinQuantity,
		MaxQuantity: d.MaxQuantity,
		Enabled:     d.Enabled,
		Message:     d.Message,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoRuleDocFromDomain converts a domain entity to a MongoDB document
func MongoRuleDocFromDomain(rule *domain.Rule) *MongoRuleDoc {
	doc := &MongoRuleDoc{
		ShopDomain:  rule.ShopDomain,
		Type:        string(rule.Type),
		TargetID:    rule.TargetID,
		TargetTitle: rule.TargetTitle,
		MinQuantity: rule.MinQuantity,
		MaxQuantity: rule.MaxQuantity,
		Enabled:     rule.Enabled,
		Message:     rule.Message,
		CreatedAt:   rule.CreatedAt,
		UpdatedAt:   rule.UpdatedAt,
	}

	if rule.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(rule.ID); err == nil {
			doc.ID = objID
		}
	}

	return doc
}
