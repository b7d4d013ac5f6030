package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazaar-shop/marketplace/internal/api/types"
	"github.com/bazaar-shop/marketplace/internal/auth"
	"github.com/bazaar-shop/marketplace/internal/models"
	"github.com/bazaar-shop/marketplace/internal/repository"
	"github.com/bazaar-shop/marketplace/internal/repository/memory"
	"github.com/bazaar-shop/marketplace/internal/services"
	"github.com/bazaar-shop/marketplace/internal/storage"
	appErr "github.com/bazaar-shop/marketplace/pkg/errors"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Count   *int            `json:"count"`
}

type authData struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

type fakePresigner struct{}

func (fakePresigner) PresignUpload(_ context.Context, sellerID, contentType string) (*storage.Upload, error) {
	if contentType != "image/png" {
		return nil, appErr.New(appErr.CodeInvalid, "unsupported content type")
	}
	return &storage.Upload{Key: "products/" + sellerID + "/x.png", UploadURL: "http://s3.local/x", ExpiresIn: 900}, nil
}

type testServer struct {
	t     *testing.T
	h     http.Handler
	store *repository.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	iss, err := auth.NewIssuer([]byte("router-test-secret"), time.Hour)
	require.NoError(t, err)

	h := NewRouter(Dependencies{
		Auth:     services.NewAuthService(store.Users, iss),
		Products: services.NewProductService(store.Products),
		Sessions: auth.NewSessionResolver(iss, store.Users),
		Store:    store,
		Images:   fakePresigner{},
	})
	return &testServer{t: t, h: h, store: store}
}

func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.h.ServeHTTP(rr, req)

	var env envelope
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	}
	return rr, env
}

func (s *testServer) register(name, email, role string) authData {
	s.t.Helper()
	rr, env := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1", "role": role,
	})
	require.Equal(s.t, http.StatusCreated, rr.Code, rr.Body.String())
	var data authData
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data
}

func (s *testServer) createProduct(token string, body map[string]any) models.Product {
	s.t.Helper()
	rr, env := s.do(http.MethodPost, "/api/products", token, body)
	require.Equal(s.t, http.StatusCreated, rr.Code, rr.Body.String())
	var p models.Product
	require.NoError(s.t, json.Unmarshal(env.Data, &p))
	return p
}

func productBody() map[string]any {
	return map[string]any{"name": "Kulaklık", "description": "kablosuz", "price": 250, "category": "Elektronik"}
}

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t)
	reg := s.register("n", "x@x.com", "")
	assert.Equal(t, models.RoleBuyer, reg.User.Role)
	assert.NotEmpty(t, reg.Token)

	rr, env := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "m", "email": "X@X.COM", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, env.Success)

	rr, env = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "x@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rr.Code)
	var login authData
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.Equal(t, reg.User.ID, login.User.ID)

	rrWrong, wrong := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "x@x.com", "password": "nope12"})
	rrUnknown, unknown := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "who@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, rrWrong.Code)
	assert.Equal(t, http.StatusUnauthorized, rrUnknown.Code)
	assert.Equal(t, wrong.Message, unknown.Message)

	rr, env = s.do(http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "secret1")
	assert.NotContains(t, rr.Body.String(), "password")
	var me struct {
		User models.Profile `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, reg.User.ID, me.User.ID)
	assert.NotNil(t, me.User.Addresses)
}

func TestMeRejectsBadSessions(t *testing.T) {
	s := newTestServer(t)
	other, err := auth.NewIssuer([]byte("another-secret"), time.Hour)
	require.NoError(t, err)
	forged, err := other.Issue("someone")
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":        "",
		"not bearer":     "Basic abc",
		"garbage":        "Bearer not.a.token",
		"foreign secret": "Bearer " + forged,
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		s.h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, name)
		assert.Contains(t, rr.Body.String(), `"success":false`, name)
	}
}

func TestAdminSelfRegistrationIsStoredVerbatim(t *testing.T) {
	s := newTestServer(t)
	reg := s.register("root", "root@x.com", "admin")
	assert.Equal(t, models.RoleAdmin, reg.User.Role)

	reg = s.register("eve", "eve@x.com", "superuser")
	assert.Equal(t, models.RoleBuyer, reg.User.Role)
}

func TestCreateProductRoleAndSellerBinding(t *testing.T) {
	s := newTestServer(t)
	buyer := s.register("buyer", "buyer@x.com", "buyer")
	seller := s.register("seller", "seller@x.com", "seller")

	rr, _ := s.do(http.MethodPost, "/api/products", buyer.Token, productBody())
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = s.do(http.MethodPost, "/api/products", "", productBody())
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	body := productBody()
	body["seller"] = buyer.User.ID
	body["sellerName"] = "spoofed"
	p := s.createProduct(seller.Token, body)
	assert.Equal(t, seller.User.ID, p.SellerID)
	assert.Equal(t, "seller", p.SellerName)
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, models.DefaultProductImage, p.Image)

	rr, env := s.do(http.MethodGet, "/api/products/"+p.ID, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got models.Product
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, models.CategoryElectronics, got.Category)

	missing := productBody()
	delete(missing, "price")
	rr, env = s.do(http.MethodPost, "/api/products", seller.Token, missing)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "price is required", env.Message)
}

func TestOwnershipOnUpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	a := s.register("A", "a@x.com", "seller")
	b := s.register("B", "b@x.com", "seller")
	p := s.createProduct(a.Token, productBody())

	rr, _ := s.do(http.MethodPut, "/api/products/"+p.ID, b.Token, map[string]any{"stock": 3})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr, _ = s.do(http.MethodDelete, "/api/products/"+p.ID, b.Token, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, env := s.do(http.MethodPut, "/api/products/"+p.ID, a.Token, map[string]any{"stock": 3})
	require.Equal(t, http.StatusOK, rr.Code)
	var updated models.Product
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, 3, updated.Stock)
	assert.Equal(t, p.Name, updated.Name)
	assert.Equal(t, p.Price, updated.Price)
	assert.Equal(t, p.Category, updated.Category)

	rr, _ = s.do(http.MethodDelete, "/api/products/"+p.ID, a.Token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr, _ = s.do(http.MethodGet, "/api/products/"+p.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr, _ = s.do(http.MethodPut, "/api/products/"+p.ID, b.Token, map[string]any{"stock": 1})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListHidesInactiveButMineShowsIt(t *testing.T) {
	s := newTestServer(t)
	seller := s.register("S", "s@x.com", "seller")
	visible := s.createProduct(seller.Token, productBody())
	hiddenBody := productBody()
	hiddenBody["isActive"] = false
	hidden := s.createProduct(seller.Token, hiddenBody)

	rr, env := s.do(http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []models.Product
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)
	assert.Equal(t, visible.ID, list[0].ID)

	rr, env = s.do(http.MethodGet, "/api/products/my/products", seller.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 2, *env.Count)
	ids := []string{list[0].ID, list[1].ID}
	assert.Contains(t, ids, hidden.ID)

	rr, _ = s.do(http.MethodGet, "/api/products/"+hidden.ID, "", nil)
	assert.Equal(t, http.StatusOK, rr.Code, "inactive products stay reachable by id")
}

func TestListFilters(t *testing.T) {
	s := newTestServer(t)
	seller := s.register("S", "s@x.com", "seller")
	s.createProduct(seller.Token, productBody())
	book := map[string]any{"name": "Roman", "description": "klasik", "price": 40, "category": "Kitap & Hobi"}
	s.createProduct(seller.Token, book)

	rr, env := s.do(http.MethodGet, "/api/products?category=Kitap+%26+Hobi", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, *env.Count)

	rr, env = s.do(http.MethodGet, "/api/products?sort=price-asc&maxPrice=100", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, *env.Count)

	for _, q := range []string{"category=Yiyecek", "minPrice=-1", "maxPrice=abc", "sort=random"} {
		rr, _ = s.do(http.MethodGet, "/api/products?"+q, "", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
}

func TestImageUploadPresign(t *testing.T) {
	s := newTestServer(t)
	seller := s.register("S", "s@x.com", "seller")
	buyer := s.register("B", "b@x.com", "buyer")

	rr, env := s.do(http.MethodPost, "/api/products/images", seller.Token, map[string]string{"contentType": "image/png"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var up storage.Upload
	require.NoError(t, json.Unmarshal(env.Data, &up))
	assert.Contains(t, up.Key, seller.User.ID)

	rr, _ = s.do(http.MethodPost, "/api/products/images", seller.Token, map[string]string{"contentType": "text/plain"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = s.do(http.MethodPost, "/api/products/images", buyer.Token, map[string]string{"contentType": "image/png"})
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestUnknownRouteAndSystemEndpoints(t *testing.T) {
	s := newTestServer(t)

	rr, env := s.do(http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "route not found", env.Message)

	rr, _ = s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr, _ = s.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mrr := httptest.NewRecorder()
	s.h.ServeHTTP(mrr, req)
	assert.Equal(t, http.StatusOK, mrr.Code)
	assert.Contains(t, mrr.Body.String(), "marketplace_api_http_requests_total")
}

func TestStaleTokenAfterUserVanishes(t *testing.T) {
	iss, err := auth.NewIssuer([]byte("router-test-secret"), time.Hour)
	require.NoError(t, err)
	s := newTestServer(t)
	token, err := iss.Issue("00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)

	rr, env := s.do(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, env.Success)
}

type failingStore struct{}

func (failingStore) GetByID(context.Context, string, *models.User) error {
	return appErr.Wrap(errors.New("dial tcp: connection refused"), appErr.CodeInternal, "get user failed")
}

func TestStoreFailureIsServerError(t *testing.T) {
	iss, err := auth.NewIssuer([]byte("router-test-secret"), time.Hour)
	require.NoError(t, err)
	store := memory.NewStore()
	h := NewRouter(Dependencies{
		Auth:              services.NewAuthService(store.Users, iss),
		Products:          services.NewProductService(store.Products),
		Sessions:          auth.NewSessionResolver(iss, failingStore{}),
		Store:             store,
		ExposeErrorDetail: true,
	})
	t.Cleanup(func() { types.ExposeErrorDetail(false) })

	token, err := iss.Issue("u-1")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "connection refused")
}
