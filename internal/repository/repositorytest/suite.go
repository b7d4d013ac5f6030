// Package repositorytest holds behaviour checks shared by every store backend.
package repositorytest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bazaar-shop/marketplace/internal/models"
	"github.com/bazaar-shop/marketplace/internal/repository"
	appErr "github.com/bazaar-shop/marketplace/pkg/errors"
)

// Run exercises store against the repository contracts. store must be empty.
func Run(t *testing.T, store *repository.Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	seller := newUser("Satıcı", "seller@example.com", models.RoleSeller, base)
	other := newUser("Başka", "other@example.com", models.RoleSeller, base)
	require.NoError(t, store.Users.Create(ctx, seller))
	require.NoError(t, store.Users.Create(ctx, other))

	t.Run("users", func(t *testing.T) {
		dup := newUser("Kopya", seller.Email, models.RoleBuyer, base)
		require.Equal(t, appErr.CodeConflict, appErr.CodeOf(store.Users.Create(ctx, dup)))

		var got models.User
		require.NoError(t, store.Users.GetByID(ctx, seller.ID, &got))
		require.Equal(t, seller.Email, got.Email)
		require.Equal(t, models.RoleSeller, got.Role)
		require.Empty(t, got.PasswordHash)
		require.Len(t, got.Addresses, 1)
		require.Equal(t, "İstanbul", got.Addresses[0].City)

		got = models.User{}
		require.NoError(t, store.Users.GetByEmail(ctx, seller.Email, &got))
		require.Equal(t, seller.PasswordHash, got.PasswordHash)

		require.Equal(t, appErr.CodeNotFound, appErr.CodeOf(store.Users.GetByID(ctx, uuid.NewString(), &got)))
		require.Equal(t, appErr.CodeNotFound, appErr.CodeOf(store.Users.GetByEmail(ctx, "missing@example.com", &got)))
	})

	p1 := newProduct(seller, "Kablosuz Kulaklık", "bluetooth 5.3", 300, models.CategoryElectronics, true, base)
	p2 := newProduct(seller, "Kışlık Mont", "su geçirmez", 900, models.CategoryClothing, true, base.Add(time.Minute))
	p3 := newProduct(seller, "Şarj Aleti", "100%_hızlı", 150, models.CategoryElectronics, false, base.Add(2*time.Minute))
	p4 := newProduct(other, "Ampul", "led ampul", 40, models.CategoryHome, true, base.Add(3*time.Minute))
	for _, p := range []*models.Product{p1, p2, p3, p4} {
		require.NoError(t, store.Products.Create(ctx, p))
	}

	t.Run("list active", func(t *testing.T) {
		minPrice, maxPrice := 100.0, 500.0
		cases := []struct {
			name   string
			filter repository.ProductFilter
			want   []string
		}{
			{"all newest first", repository.ProductFilter{}, ids(p4, p2, p1)},
			{"category", repository.ProductFilter{Category: models.CategoryElectronics}, ids(p1)},
			{"query matches name case-insensitively", repository.ProductFilter{Query: "KULAK"}, ids(p1)},
			{"query matches description", repository.ProductFilter{Query: "geçirmez"}, ids(p2)},
			{"query wildcards are literal", repository.ProductFilter{Query: "%"}, ids()},
			{"price range", repository.ProductFilter{MinPrice: &minPrice, MaxPrice: &maxPrice}, ids(p1)},
			{"price ascending", repository.ProductFilter{Sort: repository.SortPriceAsc}, ids(p4, p1, p2)},
			{"price descending", repository.ProductFilter{Sort: repository.SortPriceDesc}, ids(p2, p1, p4)},
			{"name", repository.ProductFilter{Sort: repository.SortName}, ids(p4, p1, p2)},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				got, err := store.Products.ListActive(ctx, tc.filter)
				require.NoError(t, err)
				require.NotNil(t, got)
				require.Equal(t, tc.want, productIDs(got))
			})
		}
	})

	t.Run("list by seller includes inactive", func(t *testing.T) {
		got, err := store.Products.ListBySeller(ctx, seller.ID)
		require.NoError(t, err)
		require.Equal(t, ids(p3, p2, p1), productIDs(got))

		none, err := store.Products.ListBySeller(ctx, uuid.NewString())
		require.NoError(t, err)
		require.NotNil(t, none)
		require.Empty(t, none)
	})

	t.Run("update and delete", func(t *testing.T) {
		var got models.Product
		require.NoError(t, store.Products.GetByID(ctx, p1.ID, &got))
		require.Equal(t, p1.SellerName, got.SellerName)

		got.Stock = 0
		got.IsActive = false
		got.Price = 275.5
		require.NoError(t, store.Products.Update(ctx, &got))

		var reread models.Product
		require.NoError(t, store.Products.GetByID(ctx, p1.ID, &reread))
		require.Equal(t, 0, reread.Stock)
		require.False(t, reread.IsActive)
		require.Equal(t, 275.5, reread.Price)

		require.NoError(t, store.Products.Delete(ctx, p1.ID))
		require.Equal(t, appErr.CodeNotFound, appErr.CodeOf(store.Products.GetByID(ctx, p1.ID, &reread)))
		require.Equal(t, appErr.CodeNotFound, appErr.CodeOf(store.Products.Delete(ctx, p1.ID)))

		ghost := newProduct(seller, "Hayalet", "yok", 1, models.CategoryOther, true, base)
		require.Equal(t, appErr.CodeNotFound, appErr.CodeOf(store.Products.Update(ctx, ghost)))
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, store.Ping(ctx))
	})
}

func newUser(name, email string, role models.Role, at time.Time) *models.User {
	return &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$10$hash-" + email,
		Role:         role,
		Avatar:       models.DefaultAvatar,
		Addresses:    []models.Address{{Street: "Bağdat Cd. 1", City: "İstanbul", PostalCode: "34710", Country: "TR"}},
		CreatedAt:    at,
		UpdatedAt:    at,
	}
}

func newProduct(seller *models.User, name, desc string, price float64, cat models.Category, active bool, at time.Time) *models.Product {
	return &models.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: desc,
		Price:       price,
		Category:    cat,
		Stock:       3,
		Image:       models.DefaultProductImage,
		IsActive:    active,
		SellerID:    seller.ID,
		SellerName:  seller.Name,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func ids(ps ...*models.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func productIDs(ps []models.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}
