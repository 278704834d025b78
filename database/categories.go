package database

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/princinho/storecatalog/apperrors"
	"github.com/princinho/storecatalog/models"
)

type CategoryStore interface {
	List(ctx context.Context, query string) ([]models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, id bson.ObjectID, set bson.M) error
	Delete(ctx context.Context, id bson.ObjectID) error
}

type MongoCategoryStore struct {
	col *mongo.Collection
}

func NewCategoryStore(db *DB) *MongoCategoryStore {
	return &MongoCategoryStore{col: db.OpenCollection(CategoriesCollection)}
}

// List returns categories sorted by name. A non-empty query matches names
// case-insensitively.
func (s *MongoCategoryStore) List(ctx context.Context, query string) ([]models.Category, error) {
	filter := bson.M{}
	if query != "" {
		filter["name"] = bson.M{"$regex": bson.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}}
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]models.Category, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return items, nil
}

func (s *MongoCategoryStore) Create(ctx context.Context, c *models.Category) error {
	c.Id = bson.NewObjectID()
	c.CreatedAt = time.Now().UTC()
	if _, err := s.col.InsertOne(ctx, c); err != nil {
		if IsDuplicateKey(err) {
			return apperrors.Conflict("slug", "slug already exists")
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (s *MongoCategoryStore) Update(ctx context.Context, id bson.ObjectID, set bson.M) error {
	res, err := s.col.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if IsDuplicateKey(err) {
			return apperrors.Conflict("slug", "slug already exists")
		}
		return fmt.Errorf("update category: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("category")
	}
	return nil
}

func (s *MongoCategoryStore) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("category")
	}
	return nil
}
