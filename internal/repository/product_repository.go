package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/bazaar-shop/marketplace/internal/models"
	appErr "github.com/bazaar-shop/marketplace/pkg/errors"
)

type productRepository struct {
	BaseRepository[models.Product]
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{BaseRepository: NewBaseRepository[models.Product](db, "product"), db: db}
}

func (r *productRepository) ListActive(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Query != "" {
		like := "%" + escapeLike(f.Query) + "%"
		q = q.Where("(name ILIKE ? OR description ILIKE ?)", like, like)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	out := []models.Product{}
	if err := q.Order(orderBy(f.Sort)).Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list products failed")
	}
	return out, nil
}

func (r *productRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Product, error) {
	out := []models.Product{}
	if err := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list products by seller failed")
	}
	return out, nil
}

func orderBy(s ProductSort) string {
	switch s {
	case SortPriceAsc:
		return "price ASC, created_at DESC"
	case SortPriceDesc:
		return "price DESC, created_at DESC"
	case SortName:
		return "name ASC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
