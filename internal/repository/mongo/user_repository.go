package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bazaar-shop/marketplace/internal/models"
	"github.com/bazaar-shop/marketplace/internal/repository"
	appErr "github.com/bazaar-shop/marketplace/pkg/errors"
)

type userRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userRepository{coll: db.Collection(usersCollection)}
}

func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return appErr.Wrap(err, appErr.CodeConflict, "email is already registered")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "create user failed")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string, dest *models.User) error {
	opts := options.FindOne().SetProjection(bson.D{{Key: "password_hash", Value: 0}})
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}}, dest, opts)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string, dest *models.User) error {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}}, dest)
}

func (r *userRepository) findOne(ctx context.Context, filter bson.D, dest *models.User, opts ...*options.FindOneOptions) error {
	err := r.coll.FindOne(ctx, filter, opts...).Decode(dest)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return appErr.New(appErr.CodeNotFound, "user not found")
	case err != nil:
		return appErr.Wrap(err, appErr.CodeInternal, "get user failed")
	}
	return nil
}
