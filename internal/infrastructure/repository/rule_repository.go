package repository

import (
	"context"
	"fmt"
	"time"

	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/infrastructure/repository/entity"
	"shopify-quantity-rules/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRuleRepository implements RuleRepository using MongoDB
type MongoRuleRepository struct {
	collection *mongo.Collection
}

// NewMongoRuleRepository creates a new MongoDB rule repository
func NewMongoRuleRepository(db *mongo.Database) ports.RuleRepository {
	return &MongoRuleRepository{collection: db.Collection(rulesCollection)}
}

// ListByShop returns a shop's rules, oldest first
func (r *MongoRuleRepository) ListByShop(ctx context.Context, shopDomain string, enabledOnly bool) ([]*domain.Rule, error) {
	filter := bson.M{"shopDomain": shopDomain}
	if enabledOnly {
		filter["enabled"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer cursor.Close(ctx)

	rules := []*domain.Rule{}
	for cursor.Next(ctx) {
		var doc entity.MongoRuleDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode rule: %w", err)
		}
		rules = append(rules, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return rules, nil
}

// GetByID retrieves a rule scoped to its shop
func (r *MongoRuleRepository) GetByID(ctx context.Context, shopDomain string, id string) (*domain.Rule, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc entity.MongoRuleDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": objID, "shopDomain": shopDomain}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	return doc.ToDomain(), nil
}

// Create inserts a new rule and assigns its id
func (r *MongoRuleRepository) Create(ctx context.Context, rule *domain.Rule) error {
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	doc := entity.MongoRuleDocFromDomain(rule)
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	rule.ID = doc.ID.Hex()
	return nil
}

// Update replaces a rule's mutable fields
func (r *MongoRuleRepository) Update(ctx context.Context, rule *domain.Rule) error {
	objID, err := primitive.ObjectIDFromHex(rule.ID)
	if err != nil {
		return domain.ErrNotFound
	}

	rule.UpdatedAt = time.Now()
	doc := entity.MongoRuleDocFromDomain(rule)

	filter := bson.M{"_id": objID, "shopDomain": rule.ShopDomain}
	update := bson.M{"$set": bson.M{
		"type":        doc.Type,
		"targetId":    doc.TargetID,
		"targetTitle": doc.TargetTitle,
		"minQuantity": doc.MinQuantity,
		"maxQuantity": doc.MaxQuantity,
		"enabled":     doc.Enabled,
		"message":     doc.Message,
		"updatedAt":   doc.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Delete removes a rule scoped to its shop
func (r *MongoRuleRepository) Delete(ctx context.Context, shopDomain string, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID, "shopDomain": shopDomain})
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// DeleteByShop removes every rule of a shop
func (r *MongoRuleRepository) DeleteByShop(ctx context.Context, shopDomain string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"shopDomain": shopDomain})
	if err != nil {
		return 0, fmt.Errorf("failed to delete rules: %w", err)
	}
	return result.DeletedCount, nil
}
