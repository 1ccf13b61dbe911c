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

const (
	shopsCollection         = "shops"
	rulesCollection         = "rules"
	settingsCollection      = "settings"
	prepShipmentsCollection = "prep_shipments"
	webhooksCollection      = "webhook_events"
)

// NewMongoRepositories wires every MongoDB-backed store on the given database
func NewMongoRepositories(db *mongo.Database) ports.Repositories {
	return ports.Repositories{
		Shops:         NewMongoShopRepository(db),
		Rules:         NewMongoRuleRepository(db),
		Settings:      NewMongoSettingsRepository(db),
		PrepShipments: NewMongoPrepShipmentRepository(db),
		Webhooks:      NewMongoWebhookLogRepository(db),
	}
}

// EnsureIndexes creates the indexes the repositories rely on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		shopsCollection: {
			{Keys: bson.D{{Key: "domain", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		rulesCollection: {
			{Keys: bson.D{{Key: "shopDomain", Value: 1}, {Key: "enabled", Value: 1}}},
			{Keys: bson.D{{Key: "shopDomain", Value: 1}, {Key: "targetId", Value: 1}}},
		},
		settingsCollection: {
			{Keys: bson.D{{Key: "shopDomain", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		prepShipmentsCollection: {
			{Keys: bson.D{{Key: "shopDomain", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		webhooksCollection: {
			{Keys: bson.D{{Key: "shop", Value: 1}, {Key: "receivedAt", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}

	return nil
}

// MongoShopRepository implements ShopRepository using MongoDB
type MongoShopRepository struct {
	collection *mongo.Collection
}

// NewMongoShopRepository creates a new MongoDB shop repository
func NewMongoShopRepository(db *mongo.Database) ports.ShopRepository {
	return &MongoShopRepository{collection: db.Collection(shopsCollection)}
}

// UpsertShop returns the shop, inserting a bare record on first touch
func (r *MongoShopRepository) UpsertShop(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	now := time.Now()
	filter := bson.M{"domain": shopDomain}
	update := bson.M{
		"$setOnInsert": bson.M{
			"domain":             shopDomain,
			"scopes":             []string{},
			"accessToken":        "",
			"subscriptionId":     "",
			"subscriptionStatus": "",
			"createdAt":          now,
			"updatedAt":          now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc entity.MongoShopDoc
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to upsert shop: %w", err)
	}

	return doc.ToDomain(), nil
}

// GetShop retrieves a shop by domain
func (r *MongoShopRepository) GetShop(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	var doc entity.MongoShopDoc
	filter := bson.M{"domain": shopDomain}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}

	return doc.ToDomain(), nil
}

// SaveShop saves or updates a shop keyed by domain
func (r *MongoShopRepository) SaveShop(ctx context.Context, shop *domain.Shop) error {
	doc := entity.MongoShopDocFromDomain(shop)
	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = doc.UpdatedAt
	}

	set := bson.M{
		"accessToken":        doc.AccessToken,
		"scopes":             doc.Scopes,
		"subscriptionId":     doc.SubscriptionID,
		"subscriptionStatus": doc.SubscriptionStatus,
		"installedAt":        doc.InstalledAt,
		"uninstalledAt":      doc.UninstalledAt,
		"updatedAt":          doc.UpdatedAt,
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"domain": shop.Domain}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": doc.CreatedAt},
	}

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save shop: %w", err)
	}

	shop.UpdatedAt = doc.UpdatedAt
	return nil
}

// DeleteShop removes a shop record
func (r *MongoShopRepository) DeleteShop(ctx context.Context, shopDomain string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"domain": shopDomain}); err != nil {
		return fmt.Errorf("failed to delete shop: %w", err)
	}
	return nil
}

// MongoWebhookLogRepository implements WebhookLogRepository using MongoDB
type MongoWebhookLogRepository struct {
	collection *mongo.Collection
}

// NewMongoWebhookLogRepository creates a new MongoDB webhook log
func NewMongoWebhookLogRepository(db *mongo.Database) ports.WebhookLogRepository {
	return &MongoWebhookLogRepository{collection: db.Collection(webhooksCollection)}
}

// LogWebhook logs a webhook event; redeliveries overwrite the earlier entry
func (r *MongoWebhookLogRepository) LogWebhook(ctx context.Context, event *domain.WebhookEvent) error {
	doc := entity.MongoWebhookDocFromDomain(event)
	if doc.ReceivedAt.IsZero() {
		doc.ReceivedAt = time.Now()
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return fmt.Errorf("failed to log webhook: %w", err)
	}

	return nil
}

// DeleteByShop removes every logged delivery of a shop
func (r *MongoWebhookLogRepository) DeleteByShop(ctx context.Context, shopDomain string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"shop": shopDomain})
	if err != nil {
		return 0, fmt.Errorf("failed to delete webhook events: %w", err)
	}
	return result.DeletedCount, nil
}
