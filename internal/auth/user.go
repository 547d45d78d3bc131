package auth

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const RoleAdmin = "admin"

// Identity is what the rest of the application knows about a signed-in admin.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Email        string    `bson:"email" json:"email"`
	DisplayName  string    `bson:"displayName" json:"displayName"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Role         string    `bson:"role" json:"role"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName}
}

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (User, error)
}

type MongoUserStore struct {
	col *mongo.Collection
}

func NewUserStore(col *mongo.Collection) *MongoUserStore {
	return &MongoUserStore{col: col}
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (User, error) {
	var user User
	if err := s.col.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Upsert creates the admin user or resets its password and display name.
func (s *MongoUserStore) Upsert(ctx context.Context, email, displayName, password string, now time.Time) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	email = normalizeEmail(email)
	set := bson.M{
		"passwordHash": hash,
		"role":         RoleAdmin,
		"updatedAt":    now,
	}
	if strings.TrimSpace(displayName) != "" {
		set["displayName"] = strings.TrimSpace(displayName)
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID().Hex(),
			"email":     email,
			"createdAt": now,
		},
	}
	_, err = s.col.UpdateOne(ctx, bson.M{"email": email}, update, options.Update().SetUpsert(true))
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
