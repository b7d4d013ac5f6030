package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bazaar-shop/marketplace/internal/auth"
	"github.com/bazaar-shop/marketplace/internal/models"
	"github.com/bazaar-shop/marketplace/internal/repository"
	"github.com/bazaar-shop/marketplace/internal/validators"
	appErr "github.com/bazaar-shop/marketplace/pkg/errors"
	"github.com/bazaar-shop/marketplace/pkg/logger"
)

type ProductService interface {
	List(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error)
	Get(ctx context.Context, productID string) (*models.Product, error)
	Mine(ctx context.Context, id auth.Identity) ([]models.Product, error)
	Create(ctx context.Context, id auth.Identity, input ProductInput) (*models.Product, error)
	Update(ctx context.Context, id auth.Identity, productID string, input ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id auth.Identity, productID string) error
}

// ProductInput carries client-writable product fields. Nil fields are absent:
// Create requires name, description, price and category; Update leaves
// absent fields untouched.
type ProductInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock"`
	Image       *string  `json:"image"`
	IsActive    *bool    `json:"isActive"`
}

type productService struct {
	products repository.ProductRepository
	now      func() time.Time
}

func NewProductService(products repository.ProductRepository) ProductService {
	return &productService{products: products, now: time.Now}
}

var _ ProductService = (*productService)(nil)

func (s *productService) List(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, appErr.New(appErr.CodeInvalid, "category must be one of the catalog categories")
	}
	if !filter.Sort.Valid() {
		return nil, appErr.New(appErr.CodeInvalid, "sort must be one of: newest price-asc price-desc name")
	}
	if (filter.MinPrice != nil && *filter.MinPrice < 0) || (filter.MaxPrice != nil && *filter.MaxPrice < 0) {
		return nil, appErr.New(appErr.CodeInvalid, "price bounds must not be negative")
	}
	filter.Query = strings.TrimSpace(filter.Query)
	return s.products.ListActive(ctx, filter)
}

func (s *productService) Get(ctx context.Context, productID string) (*models.Product, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return nil, appErr.New(appErr.CodeNotFound, "product not found")
	}
	var p models.Product
	if err := s.products.GetByID(ctx, productID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *productService) Mine(ctx context.Context, id auth.Identity) ([]models.Product, error) {
	return s.products.ListBySeller(ctx, id.UserID)
}

func (s *productService) Create(ctx context.Context, id auth.Identity, input ProductInput) (*models.Product, error) {
	switch {
	case input.Name == nil:
		return nil, appErr.New(appErr.CodeInvalid, "name is required")
	case input.Description == nil:
		return nil, appErr.New(appErr.CodeInvalid, "description is required")
	case input.Price == nil:
		return nil, appErr.New(appErr.CodeInvalid, "price is required")
	case input.Category == nil:
		return nil, appErr.New(appErr.CodeInvalid, "category is required")
	}

	now := s.now().UTC()
	p := &models.Product{
		ID:         uuid.NewString(),
		Image:      models.DefaultProductImage,
		IsActive:   true,
		SellerID:   id.UserID,
		SellerName: id.Name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	input.apply(p)
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.L().Info("product created", zap.String("product_id", p.ID), zap.String("seller_id", id.UserID))
	return p, nil
}

func (s *productService) Update(ctx context.Context, id auth.Identity, productID string, input ProductInput) (*models.Product, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckOwner(p.SellerID, id, "update"); err != nil {
		return nil, err
	}

	input.apply(p)
	p.UpdatedAt = s.now().UTC()
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}

	logger.L().Info("product updated", zap.String("product_id", p.ID), zap.String("seller_id", id.UserID))
	return p, nil
}

func (s *productService) Delete(ctx context.Context, id auth.Identity, productID string) error {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return err
	}
	if err := auth.CheckOwner(p.SellerID, id, "delete"); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, p.ID); err != nil {
		return err
	}

	logger.L().Info("product deleted", zap.String("product_id", p.ID), zap.String("seller_id", id.UserID))
	return nil
}

// apply copies the present fields of in onto p.
func (in ProductInput) apply(p *models.Product) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Category != nil {
		p.Category = models.Category(*in.Category)
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Image != nil {
		p.Image = strings.TrimSpace(*in.Image)
		if p.Image == "" {
			p.Image = models.DefaultProductImage
		}
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}

func validateProduct(p *models.Product) error {
	if err := validators.New().Struct(p); err != nil {
		return appErr.Wrap(err, appErr.CodeInvalid, validators.Message(err))
	}
	return nil
}
