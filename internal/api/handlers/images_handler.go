package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/bazaar-shop/marketplace/internal/api/types"
	"github.com/bazaar-shop/marketplace/internal/storage"
)

// ImagePresigner issues upload URLs for product images.
type ImagePresigner interface {
	PresignUpload(ctx context.Context, sellerID, contentType string) (*storage.Upload, error)
}

type ImagesHandler struct {
	presigner ImagePresigner
}

func NewImagesHandler(p ImagePresigner) *ImagesHandler {
	return &ImagesHandler{presigner: p}
}

func (h *ImagesHandler) Presign(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req types.ImageUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	up, err := h.presigner.PresignUpload(r.Context(), id.UserID, strings.TrimSpace(req.ContentType))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: up})
}
