package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bazaar-shop/marketplace/internal/api/types"
	"github.com/bazaar-shop/marketplace/internal/models"
	"github.com/bazaar-shop/marketplace/internal/repository"
	"github.com/bazaar-shop/marketplace/internal/services"
	appErr "github.com/bazaar-shop/marketplace/pkg/errors"
)

type ProductsHandler struct {
	products services.ProductService
}

func NewProductsHandler(products services.ProductService) *ProductsHandler {
	return &ProductsHandler{products: products}
}

func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := h.products.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.List(items))
}

func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: p})
}

func (h *ProductsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := h.products.Mine(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.List(items))
}

func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req services.ProductInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.products.Create(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Message: "product created", Data: p})
}

func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req services.ProductInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.products.Update(r.Context(), id, chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Message: "product updated", Data: p})
}

func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.products.Delete(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Message: "product deleted"})
}

func parseFilter(r *http.Request) (repository.ProductFilter, error) {
	q := r.URL.Query()
	f := repository.ProductFilter{
		Category: models.Category(strings.TrimSpace(q.Get("category"))),
		Query:    q.Get("q"),
		Sort:     repository.ProductSort(strings.TrimSpace(q.Get("sort"))),
	}
	var err error
	if f.MinPrice, err = parsePrice(q.Get("minPrice"), "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parsePrice(q.Get("maxPrice"), "maxPrice"); err != nil {
		return f, err
	}
	return f, nil
}

func parsePrice(raw, name string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, appErr.Newf(appErr.CodeInvalid, "%s must be a non-negative number", name)
	}
	return &v, nil
}
