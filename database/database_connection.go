package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
)

const (
	ProductsCollection   = "products"
	CategoriesCollection = "categories"
	UsersCollection      = "users"
)

// DB is one connected client and the catalog database it serves.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zap.Logger
}

// Connect opens the client and pings the primary before returning.
func Connect(ctx context.Context, uri, databaseName string, log *zap.Logger) (*DB, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	log.Info("connected to mongodb", zap.String("database", databaseName))
	return &DB{client: client, db: client.Database(databaseName), log: log}, nil
}

func (d *DB) OpenCollection(name string) *mongo.Collection {
	return d.db.Collection(name)
}

func (d *DB) Disconnect(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the catalog queries rely on. It is safe
// to run on every start.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		ProductsCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "inStock", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "inStock", Value: 1}}},
		},
		CategoriesCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for col, idx := range indexes {
		names, err := d.OpenCollection(col).Indexes().CreateMany(ctx, idx)
		if err != nil {
			return fmt.Errorf("create %s indexes: %w", col, err)
		}
		d.log.Debug("indexes ready", zap.String("collection", col), zap.Strings("names", names))
	}
	return nil
}
