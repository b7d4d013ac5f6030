package auth

import (
	"context"

	"github.com/bazaar-shop/marketplace/internal/models"
)

// Identity is the resolved caller attached to a request context.
type Identity struct {
	UserID string
	Name   string
	Role   models.Role
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != ""
}
