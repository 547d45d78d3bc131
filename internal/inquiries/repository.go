package inquiries

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	// Create stores a new inquiry and returns it with its store-assigned ID.
	Create(ctx context.Context, inq Inquiry) (Inquiry, error)
	GetByID(ctx context.Context, id string) (Inquiry, error)
	// List returns matching inquiries newest first. limit 0 returns all.
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Inquiry, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	Update(ctx context.Context, id string, patch Patch, now time.Time) (Inquiry, error)
	AppendReply(ctx context.Context, id string, entry ReplyEntry, status Status, now time.Time) (Inquiry, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, inq Inquiry) (Inquiry, error) {
	inq.ID = primitive.NewObjectID().Hex()
	if inq.Labels == nil {
		inq.Labels = []string{}
	}
	if inq.ReplyHistory == nil {
		inq.ReplyHistory = []ReplyEntry{}
	}
	if _, err := r.col.InsertOne(ctx, inq); err != nil {
		return Inquiry{}, err
	}
	return inq, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (Inquiry, error) {
	var inq Inquiry
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&inq); err != nil {
		return Inquiry{}, err
	}
	return inq, nil
}

func (r *MongoRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Inquiry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}

	cursor, err := r.col.Find(ctx, filterToBSON(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Inquiry, 0)
	for cursor.Next(ctx) {
		var inq Inquiry
		if err := cursor.Decode(&inq); err != nil {
			return nil, err
		}
		items = append(items, inq)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return r.col.CountDocuments(ctx, filterToBSON(filter))
}

func (r *MongoRepository) Update(ctx context.Context, id string, patch Patch, now time.Time) (Inquiry, error) {
	set := bson.M{"updatedAt": now}
	unset := bson.M{}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Labels != nil {
		set["labels"] = *patch.Labels
	}
	if patch.Notes != nil {
		set["notes"] = *patch.Notes
	}
	if patch.ClearDealValue {
		unset["dealValue"] = ""
	} else if patch.DealValue != nil {
		set["dealValue"] = *patch.DealValue
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return r.findOneAndUpdate(ctx, id, update)
}

func (r *MongoRepository) AppendReply(ctx context.Context, id string, entry ReplyEntry, status Status, now time.Time) (Inquiry, error) {
	update := bson.M{
		"$push": bson.M{"replyHistory": entry},
		"$set": bson.M{
			"status":    status,
			"updatedAt": now,
		},
	}
	return r.findOneAndUpdate(ctx, id, update)
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRepository) findOneAndUpdate(ctx context.Context, id string, update bson.M) (Inquiry, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated Inquiry
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		return Inquiry{}, err
	}
	return updated, nil
}

var searchFields = []string{"name", "email", "phone", "productInterest", "message"}

func filterToBSON(filter ListFilter) bson.M {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		or := make(bson.A, 0, len(searchFields))
		for _, field := range searchFields {
			or = append(or, bson.M{field: pattern})
		}
		query["$or"] = or
	}
	return query
}
