package repository

import (
	"context"
	"fmt"
	"time"

	"shopify-quantity-rules/internal/domain"
	"shopify-quantity-rules/internal/infrastructure/repository/entity"
	"shopify-quantity-rules/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSettingsRepository implements SettingsRepository using MongoDB
type MongoSettingsRepository struct {
	collection *mongo.Collection
}

// NewMongoSettingsRepository creates a new MongoDB settings repository
func NewMongoSettingsRepository(db *mongo.Database) ports.SettingsRepository {
	return &MongoSettingsRepository{collection: db.Collection(settingsCollection)}
}

// GetByShop retrieves the settings singleton of a shop
func (r *MongoSettingsRepository) GetByShop(ctx context.Context, shopDomain string) (*domain.Settings, error) {
	var doc entity.MongoSettingsDoc
	err := r.collection.FindOne(ctx, bson.M{"shopDomain": shopDomain}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return doc.ToDomain(), nil
}

// Save upserts the settings singleton keyed by shop
func (r *MongoSettingsRepository) Save(ctx context.Context, settings *domain.Settings) error {
	now := time.Now()
	settings.UpdatedAt = now
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = now
	}
	doc := entity.MongoSettingsDocFromDomain(settings)

	filter := bson.M{"shopDomain": settings.ShopDomain}
	update := bson.M{
		"$set": bson.M{
			"globalMinCart":        doc.GlobalMinCart,
			"globalMaxCart":        doc.GlobalMaxCart,
			"showWarning":          doc.ShowWarning,
			"blockCheckout":        doc.BlockCheckout,
			"customMessageEnabled": doc.CustomMessageEnabled,
			"customMessage":        doc.CustomMessage,
			"updatedAt":            doc.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"shopDomain": doc.ShopDomain,
			"createdAt":  doc.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved entity.MongoSettingsDoc
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	settings.ID = saved.ID.Hex()
	settings.CreatedAt = saved.CreatedAt
	return nil
}

// DeleteByShop removes a shop's settings
func (r *MongoSettingsRepository) DeleteByShop(ctx context.Context, shopDomain string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"shopDomain": shopDomain}); err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}
	return nil
}
