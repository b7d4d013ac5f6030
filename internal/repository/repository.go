// Package repository defines the storage contracts used by the services and
// their gorm implementation. Alternative backends live in subpackages.
package repository

import (
	"context"

	"github.com/bazaar-shop/marketplace/internal/models"
)

// UserRepository persists accounts.
type UserRepository interface {
	// Create inserts u. A taken email fails with CodeConflict.
	Create(ctx context.Context, u *models.User) error
	// GetByID loads a user without its password hash.
	GetByID(ctx context.Context, id string, dest *models.User) error
	// GetByEmail loads a user including its password hash, for login only.
	GetByEmail(ctx context.Context, email string, dest *models.User) error
}

// ProductSort selects the ordering of catalog listings.
type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceAsc  ProductSort = "price-asc"
	SortPriceDesc ProductSort = "price-desc"
	SortName      ProductSort = "name"
)

// Valid reports whether s is a known ordering. The empty value means SortNewest.
func (s ProductSort) Valid() bool {
	switch s {
	case "", SortNewest, SortPriceAsc, SortPriceDesc, SortName:
		return true
	}
	return false
}

// ProductFilter narrows the public catalog. Zero fields do not filter.
type ProductFilter struct {
	Category models.Category
	Query    string
	MinPrice *float64
	MaxPrice *float64
	Sort     ProductSort
}

// ProductRepository persists catalog listings.
type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id string, dest *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
	// ListActive returns active products matching f.
	ListActive(ctx context.Context, f ProductFilter) ([]models.Product, error)
	// ListBySeller returns every product of sellerID, newest first.
	ListBySeller(ctx context.Context, sellerID string) ([]models.Product, error)
}

// Store bundles the repositories of one backend with its lifecycle hooks.
type Store struct {
	Users    UserRepository
	Products ProductRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// NewStore assembles a Store. ping and close may be nil.
func NewStore(users UserRepository, products ProductRepository, ping, close func(ctx context.Context) error) *Store {
	return &Store{Users: users, Products: products, ping: ping, close: close}
}

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases backend resources.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
