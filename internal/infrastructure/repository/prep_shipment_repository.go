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

// MongoPrepShipmentRepository implements PrepShipmentRepository using MongoDB
type MongoPrepShipmentRepository struct {
	collection *mongo.Collection
}

// NewMongoPrepShipmentRepository creates a new MongoDB prep shipment repository
func NewMongoPrepShipmentRepository(db *mongo.Database) ports.PrepShipmentRepository {
	return &MongoPrepShipmentRepository{collection: db.Collection(prepShipmentsCollection)}
}

// ListByShop returns a shop's shipments, newest first
func (r *MongoPrepShipmentRepository) ListByShop(ctx context.Context, shopDomain string) ([]*domain.PrepShipment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"shopDomain": shopDomain}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list prep shipments: %w", err)
	}
	defer cursor.Close(ctx)

	shipments := []*domain.PrepShipment{}
	for cursor.Next(ctx) {
		var doc entity.MongoPrepShipmentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode prep shipment: %w", err)
		}
		shipments = append(shipments, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return shipments, nil
}

// GetByID retrieves a shipment scoped to its shop
func (r *MongoPrepShipmentRepository) GetByID(ctx context.Context, shopDomain string, id string) (*domain.PrepShipment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc entity.MongoPrepShipmentDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": objID, "shopDomain": shopDomain}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prep shipment: %w", err)
	}

	return doc.ToDomain(), nil
}

// Create inserts a shipment and assigns its id
func (r *MongoPrepShipmentRepository) Create(ctx context.Context, shipment *domain.PrepShipment) error {
	now := time.Now()
	shipment.CreatedAt = now
	shipment.UpdatedAt = now

	doc := entity.MongoPrepShipmentDocFromDomain(shipment)
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create prep shipment: %w", err)
	}

	shipment.ID = doc.ID.Hex()
	return nil
}

// Update replaces a shipment's mutable fields
func (r *MongoPrepShipmentRepository) Update(ctx context.Context, shipment *domain.PrepShipment) error {
	objID, err := primitive.ObjectIDFromHex(shipment.ID)
	if err != nil {
		return domain.ErrNotFound
	}

	shipment.UpdatedAt = time.Now()
	filter := bson.M{"_id": objID, "shopDomain": shipment.ShopDomain}
	update := bson.M{"$set": bson.M{
		"name":      shipment.Name,
		"units":     shipment.Units,
		"status":    string(shipment.Status),
		"updatedAt": shipment.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update prep shipment: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Delete removes a shipment scoped to its shop
func (r *MongoPrepShipmentRepository) Delete(ctx context.Context, shopDomain string, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID, "shopDomain": shopDomain})
	if err != nil {
		return fmt.Errorf("failed to delete prep shipment: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// DeleteByShop removes every shipment of a shop
func (r *MongoPrepShipmentRepository) DeleteByShop(ctx context.Context, shopDomain string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"shopDomain": shopDomain})
	if err != nil {
		return 0, fmt.Errorf("failed to delete prep shipments: %w", err)
	}
	return result.DeletedCount, nil
}
