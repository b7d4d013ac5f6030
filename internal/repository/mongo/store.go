// Package mongo stores users and products as MongoDB documents.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/bazaar-shop/marketplace/internal/repository"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
)

// NewStore wires the document repositories over db.
func NewStore(db *mongo.Database) *repository.Store {
	ping := func(ctx context.Context) error { return db.Client().Ping(ctx, readpref.Primary()) }
	closeFn := func(ctx context.Context) error { return db.Client().Disconnect(ctx) }
	return repository.NewStore(NewUserRepository(db), NewProductRepository(db), ping, closeFn)
}

// EnsureIndexes creates the indexes the repositories rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	_, err = db.Collection(productsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "seller", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("seller_created")},
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "category", Value: 1}}, Options: options.Index().SetName("active_category")},
	})
	if err != nil {
		return fmt.Errorf("products indexes: %w", err)
	}
	return nil
}
