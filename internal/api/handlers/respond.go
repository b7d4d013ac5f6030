package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bazaar-shop/marketplace/internal/api/types"
	"github.com/bazaar-shop/marketplace/internal/auth"
	appErr "github.com/bazaar-shop/marketplace/pkg/errors"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) { types.WriteJSON(w, status, v) }

func writeError(w http.ResponseWriter, err error) { types.WriteError(w, err) }

// decodeJSON reads a single JSON object from the request body into dst.
// Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return appErr.New(appErr.CodeInvalid, "request body is required")
		case errors.As(err, &tooLarge):
			return appErr.New(appErr.CodeInvalid, "request body is too large")
		default:
			return appErr.Wrap(err, appErr.CodeInvalid, "invalid json")
		}
	}
	return nil
}

func identity(r *http.Request) (auth.Identity, error) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return auth.Identity{}, appErr.New(appErr.CodeUnauthorized, "not authenticated, please log in")
	}
	return id, nil
}
