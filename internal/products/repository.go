package products

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, item Product) (Product, error)
	Replace(ctx context.Context, id string, set bson.M) (Product, error)
	Delete(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (Product, error)
	List(ctx context.Context) ([]Product, error)
	Upsert(ctx context.Context, id string, set bson.M, createdAt time.Time) error
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, item Product) (Product, error) {
	if item.ID == "" {
		item.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.col.InsertOne(ctx, item); err != nil {
		return Product{}, err
	}
	return item, nil
}

func (r *MongoRepository) Replace(ctx context.Context, id string, set bson.M) (Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Product
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		return Product{}, err
	}
	return updated, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (Product, error) {
	var item Product
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return Product{}, err
	}
	return item, nil
}

// List sorts by order only; equal ranks keep the store's natural order.
func (r *MongoRepository) List(ctx context.Context) ([]Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Product, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert writes set onto the product with id, creating it when missing.
func (r *MongoRepository) Upsert(ctx context.Context, id string, set bson.M, createdAt time.Time) error {
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": createdAt},
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	return err
}
