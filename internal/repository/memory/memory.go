// Package memory is an in-process store for local development and tests.
// Data lives for the lifetime of the process.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/bazaar-shop/marketplace/internal/models"
	"github.com/bazaar-shop/marketplace/internal/repository"
	appErr "github.com/bazaar-shop/marketplace/pkg/errors"
)

// NewStore returns a Store backed by process memory.
func NewStore() *repository.Store {
	return repository.NewStore(NewUserRepository(), NewProductRepository(), nil, nil)
}

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{byID: map[string]models.User{}, byEmail: map[string]string{}}
}

func (r *UserRepository) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[u.Email]; taken {
		return appErr.New(appErr.CodeConflict, "email is already registered")
	}
	if _, taken := r.byID[u.ID]; taken {
		return appErr.New(appErr.CodeConflict, "user already exists")
	}
	r.byID[u.ID] = cloneUser(*u)
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string, dest *models.User) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return appErr.New(appErr.CodeNotFound, "user not found")
	}
	*dest = cloneUser(u)
	dest.PasswordHash = ""
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string, dest *models.User) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return appErr.New(appErr.CodeNotFound, "user not found")
	}
	*dest = cloneUser(r.byID[id])
	return nil
}

func cloneUser(u models.User) models.User {
	if u.Addresses != nil {
		u.Addresses = append(u.Addresses[:0:0], u.Addresses...)
	}
	return u
}

type ProductRepository struct {
	mu   sync.RWMutex
	byID map[string]models.Product
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

func NewProductRepository() *ProductRepository {
	return &ProductRepository{byID: map[string]models.Product{}}
}

func (r *ProductRepository) Create(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byID[p.ID]; taken {
		return appErr.New(appErr.CodeConflict, "product already exists")
	}
	r.byID[p.ID] = *p
	return nil
}

func (r *ProductRepository) GetByID(_ context.Context, id string, dest *models.Product) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return appErr.New(appErr.CodeNotFound, "product not found")
	}
	*dest = p
	return nil
}

func (r *ProductRepository) Update(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; !ok {
		return appErr.New(appErr.CodeNotFound, "product not found")
	}
	r.byID[p.ID] = *p
	return nil
}

func (r *ProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return appErr.New(appErr.CodeNotFound, "product not found")
	}
	delete(r.byID, id)
	return nil
}

func (r *ProductRepository) ListActive(_ context.Context, f repository.ProductFilter) ([]models.Product, error) {
	query := strings.ToLower(f.Query)
	return r.list(func(p models.Product) bool {
		switch {
		case !p.IsActive:
			return false
		case f.Category != "" && p.Category != f.Category:
			return false
		case f.MinPrice != nil && p.Price < *f.MinPrice:
			return false
		case f.MaxPrice != nil && p.Price > *f.MaxPrice:
			return false
		case query != "" && !strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query):
			return false
		}
		return true
	}, f.Sort), nil
}

func (r *ProductRepository) ListBySeller(_ context.Context, sellerID string) ([]models.Product, error) {
	return r.list(func(p models.Product) bool { return p.SellerID == sellerID }, repository.SortNewest), nil
}

func (r *ProductRepository) list(keep func(models.Product) bool, order repository.ProductSort) []models.Product {
	r.mu.RLock()
	out := []models.Product{}
	for _, p := range r.byID {
		if keep(p) {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()

	newer := func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) }
	sort.SliceStable(out, func(i, j int) bool {
		switch order {
		case repository.SortPriceAsc:
			if out[i].Price != out[j].Price {
				return out[i].Price < out[j].Price
			}
		case repository.SortPriceDesc:
			if out[i].Price != out[j].Price {
				return out[i].Price > out[j].Price
			}
		case repository.SortName:
			if out[i].Name != out[j].Name {
				return out[i].Name < out[j].Name
			}
		}
		return newer(i, j)
	})
	return out
}
