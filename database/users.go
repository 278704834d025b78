package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/princinho/storecatalog/apperrors"
	"github.com/princinho/storecatalog/models"
)

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// SeedUser inserts u unless a user with the same email exists. It
	// reports whether a user was inserted.
	SeedUser(ctx context.Context, u models.User) (bool, error)
}

type MongoUserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *DB) *MongoUserStore {
	return &MongoUserStore{col: db.OpenCollection(UsersCollection)}
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("user")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *MongoUserStore) SeedUser(ctx context.Context, u models.User) (bool, error) {
	update := bson.M{
		"$setOnInsert": bson.M{
			"email":        u.Email,
			"passwordHash": u.PasswordHash,
			"role":         u.Role,
			"storeId":      u.StoreID,
			"isActive":     u.IsActive,
			"createdAt":    u.CreatedAt,
			"updatedAt":    u.UpdatedAt,
		},
	}
	opts := options.UpdateOne().SetUpsert(true)

	res, err := s.col.UpdateOne(ctx, bson.M{"email": u.Email}, update, opts)
	if err != nil {
		return false, fmt.Errorf("seed user upsert: %w", err)
	}
	return res.UpsertedCount == 1, nil
}
