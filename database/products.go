package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/princinho/storecatalog/apperrors"
	"github.com/princinho/storecatalog/models"
)

// ProductFilter narrows a product listing. Zero values match everything.
type ProductFilter struct {
	StoreID string
	InStock *bool
	Limit   int64
}

// FBTConfig is the stored frequently-bought-together configuration.
type FBTConfig struct {
	Enabled        bool
	ProductIDs     []string
	BundlePrice    *float64
	BundleDiscount *float64
}

// ProductStore persists products. Mutations take the owning store ID and
// only touch products of that store.
type ProductStore interface {
	List(ctx context.Context, f ProductFilter) ([]models.Product, error)
	Get(ctx context.Context, id bson.ObjectID) (*models.Product, error)
	GetForStore(ctx context.Context, id bson.ObjectID, storeID string) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Replace(ctx context.Context, p *models.Product) error
	SetImages(ctx context.Context, id bson.ObjectID, storeID string, images []string) (*models.Product, error)
	Delete(ctx context.Context, id bson.ObjectID, storeID string) (*models.Product, error)
	ToggleStock(ctx context.Context, id bson.ObjectID, storeID string) (bool, error)
	ToggleFastDelivery(ctx context.Context, id bson.ObjectID, storeID string) (bool, error)
	SetFBT(ctx context.Context, id bson.ObjectID, storeID string, cfg FBTConfig) (*models.Product, error)
}

type MongoProductStore struct {
	col *mongo.Collection
}

func NewProductStore(db *DB) *MongoProductStore {
	return &MongoProductStore{col: db.OpenCollection(ProductsCollection)}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func (s *MongoProductStore) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	filter := bson.M{}
	if f.StoreID != "" {
		filter["storeId"] = f.StoreID
	}
	if f.InStock != nil {
		filter["inStock"] = *f.InStock
	}
	opts := options.Find().SetSort(newestFirst)
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	return s.find(ctx, filter, opts)
}

func (s *MongoProductStore) find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) ([]models.Product, error) {
	cursor, err := s.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (s *MongoProductStore) Get(ctx context.Context, id bson.ObjectID) (*models.Product, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoProductStore) GetForStore(ctx context.Context, id bson.ObjectID, storeID string) (*models.Product, error) {
	return s.findOne(ctx, bson.M{"_id": id, "storeId": storeID})
}

func (s *MongoProductStore) findOne(ctx context.Context, filter bson.M) (*models.Product, error) {
	var p models.Product
	if err := s.col.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, notFoundOr(err, "get product")
	}
	return &p, nil
}

// FindByIDs returns the products with the given IDs in the order of ids.
// Unknown IDs are skipped.
func (s *MongoProductStore) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	found, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	byID := make(map[bson.ObjectID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MongoProductStore) Create(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	p.ID = bson.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.col.InsertOne(ctx, p); err != nil {
		return writeErr(err, "insert product")
	}
	return nil
}

// Replace overwrites the stored document with p, keeping its creation time.
func (s *MongoProductStore) Replace(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": p.ID, "storeId": p.StoreID}, p)
	if err != nil {
		return writeErr(err, "replace product")
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("product")
	}
	return nil
}

func (s *MongoProductStore) SetImages(ctx context.Context, id bson.ObjectID, storeID string, images []string) (*models.Product, error) {
	return s.updateOne(ctx, id, storeID, bson.M{"$set": bson.M{
		"images":    images,
		"updatedAt": time.Now().UTC(),
	}})
}

func (s *MongoProductStore) Delete(ctx context.Context, id bson.ObjectID, storeID string) (*models.Product, error) {
	var p models.Product
	if err := s.col.FindOneAndDelete(ctx, bson.M{"_id": id, "storeId": storeID}).Decode(&p); err != nil {
		return nil, notFoundOr(err, "delete product")
	}
	return &p, nil
}

func (s *MongoProductStore) ToggleStock(ctx context.Context, id bson.ObjectID, storeID string) (bool, error) {
	p, err := s.toggle(ctx, id, storeID, "inStock")
	if err != nil {
		return false, err
	}
	return p.InStock, nil
}

func (s *MongoProductStore) ToggleFastDelivery(ctx context.Context, id bson.ObjectID, storeID string) (bool, error) {
	p, err := s.toggle(ctx, id, storeID, "fastDelivery")
	if err != nil {
		return false, err
	}
	return p.FastDelivery, nil
}

// toggle negates a boolean field server side so concurrent toggles never
// read a stale value.
func (s *MongoProductStore) toggle(ctx context.Context, id bson.ObjectID, storeID, field string) (*models.Product, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: field, Value: bson.D{{Key: "$not", Value: bson.A{"$" + field}}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}
	return s.updateOne(ctx, id, storeID, pipeline)
}

func (s *MongoProductStore) SetFBT(ctx context.Context, id bson.ObjectID, storeID string, cfg FBTConfig) (*models.Product, error) {
	ids := cfg.ProductIDs
	if ids == nil {
		ids = []string{}
	}
	return s.updateOne(ctx, id, storeID, bson.M{"$set": bson.M{
		"enableFBT":         cfg.Enabled,
		"fbtProductIds":     ids,
		"fbtBundlePrice":    cfg.BundlePrice,
		"fbtBundleDiscount": cfg.BundleDiscount,
		"updatedAt":         time.Now().UTC(),
	}})
}

func (s *MongoProductStore) updateOne(ctx context.Context, id bson.ObjectID, storeID string, update any) (*models.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Product
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "storeId": storeID}, update, opts).Decode(&p)
	if err != nil {
		return nil, notFoundOr(err, "update product")
	}
	return &p, nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.NotFound("product")
	}
	return fmt.Errorf("%s: %w", op, err)
}

func writeErr(err error, op string) error {
	if IsDuplicateKey(err) {
		return apperrors.Conflict("slug", "slug already exists")
	}
	return fmt.Errorf("%s: %w", op, err)
}
