package mongo

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bazaar-shop/marketplace/internal/models"
	"github.com/bazaar-shop/marketplace/internal/repository"
	appErr "github.com/bazaar-shop/marketplace/pkg/errors"
)

type productRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database) repository.ProductRepository {
	return &productRepository{coll: db.Collection(productsCollection)}
}

func (r *productRepository) Create(ctx context.Context, p *models.Product) error {
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return appErr.Wrap(err, appErr.CodeConflict, "product already exists")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "create product failed")
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string, dest *models.Product) error {
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(dest)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return appErr.New(appErr.CodeNotFound, "product not found")
	case err != nil:
		return appErr.Wrap(err, appErr.CodeInternal, "get product failed")
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, p *models.Product) error {
	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: p.ID}}, p)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "update product failed")
	}
	if res.MatchedCount == 0 {
		return appErr.New(appErr.CodeNotFound, "product not found")
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "delete product failed")
	}
	if res.DeletedCount == 0 {
		return appErr.New(appErr.CodeNotFound, "product not found")
	}
	return nil
}

func (r *productRepository) ListActive(ctx context.Context, f repository.ProductFilter) ([]models.Product, error) {
	filter := bson.D{{Key: "is_active", Value: true}}
	if f.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: f.Category})
	}
	if f.Query != "" {
		rx := bson.M{"$regex": regexp.QuoteMeta(f.Query), "$options": "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.M{"name": rx},
			bson.M{"description": rx},
		}})
	}
	price := bson.D{}
	if f.MinPrice != nil {
		price = append(price, bson.E{Key: "$gte", Value: *f.MinPrice})
	}
	if f.MaxPrice != nil {
		price = append(price, bson.E{Key: "$lte", Value: *f.MaxPrice})
	}
	if len(price) > 0 {
		filter = append(filter, bson.E{Key: "price", Value: price})
	}
	return r.find(ctx, filter, sortBy(f.Sort))
}

func (r *productRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Product, error) {
	return r.find(ctx, bson.D{{Key: "seller", Value: sellerID}}, sortBy(repository.SortNewest))
}

func (r *productRepository) find(ctx context.Context, filter bson.D, sort bson.D) ([]models.Product, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list products failed")
	}
	out := []models.Product{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "decode products failed")
	}
	return out, nil
}

func sortBy(s repository.ProductSort) bson.D {
	newest := bson.E{Key: "created_at", Value: -1}
	switch s {
	case repository.SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}, newest}
	case repository.SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}, newest}
	case repository.SortName:
		return bson.D{{Key: "name", Value: 1}, newest}
	default:
		return bson.D{newest}
	}
}
