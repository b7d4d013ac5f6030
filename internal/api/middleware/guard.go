package middleware

import (
	"context"
	"net/http"

	"github.com/bazaar-shop/marketplace/internal/api/types"
	"github.com/bazaar-shop/marketplace/internal/auth"
	"github.com/bazaar-shop/marketplace/internal/models"
	appErr "github.com/bazaar-shop/marketplace/pkg/errors"
)

// Stage is one step of a Guard pipeline. It returns the context for the next
// stage, or an error that ends the request.
type Stage func(r *http.Request) (context.Context, error)

// Guard runs stages in order and calls next with the context the last one
// returned. The first failing stage writes the error response.
func Guard(stages ...Stage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, stage := range stages {
				ctx, err := stage(r)
				if err != nil {
					types.WriteError(w, err)
					return
				}
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionResolver resolves an Authorization header into an identity.
type SessionResolver interface {
	Resolve(ctx context.Context, header string) (auth.Identity, error)
}

// Authenticate attaches the caller's identity to the context.
func Authenticate(resolver SessionResolver) Stage {
	return func(r *http.Request) (context.Context, error) {
		id, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			return nil, err
		}
		return auth.WithIdentity(r.Context(), id), nil
	}
}

// RequireRole admits callers holding one of roles. It must follow Authenticate.
func RequireRole(roles ...models.Role) Stage {
	return func(r *http.Request) (context.Context, error) {
		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			return nil, appErr.New(appErr.CodeUnauthorized, "not authenticated, please log in")
		}
		if err := auth.RequireRole(id, roles...); err != nil {
			return nil, err
		}
		return r.Context(), nil
	}
}
