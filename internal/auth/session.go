package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/bazaar-shop/marketplace/internal/models"
	appErr "github.com/bazaar-shop/marketplace/pkg/errors"
)

// TokenVerifier turns a token into its subject id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserLookup loads a user by id. It must report a missing user with an
// AppError coded CodeNotFound.
type UserLookup interface {
	GetByID(ctx context.Context, id string, dest *models.User) error
}

// SessionResolver turns an Authorization header into a trusted Identity.
type SessionResolver struct {
	tokens TokenVerifier
	users  UserLookup
}

func NewSessionResolver(tokens TokenVerifier, users UserLookup) *SessionResolver {
	return &SessionResolver{tokens: tokens, users: users}
}

// Resolve validates header ("Bearer <token>"), verifies the token and loads
// its subject. Missing credentials, bad tokens and vanished users fail with
// CodeUnauthorized; a failing store surfaces as CodeInternal.
func (s *SessionResolver) Resolve(ctx context.Context, header string) (Identity, error) {
	token, err := bearerToken(header)
	if err != nil {
		return Identity{}, appErr.Wrap(err, appErr.CodeUnauthorized, "not authenticated, please log in")
	}
	subject, err := s.tokens.Verify(token)
	if err != nil {
		return Identity{}, appErr.Wrap(err, appErr.CodeUnauthorized, "invalid token, please log in again")
	}
	var u models.User
	if err := s.users.GetByID(ctx, subject, &u); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return Identity{}, appErr.Wrap(err, appErr.CodeUnauthorized, "user for this token no longer exists")
		}
		return Identity{}, appErr.Wrap(err, appErr.CodeInternal, "resolve session failed")
	}
	return Identity{UserID: u.ID, Name: u.Name, Role: u.Role}, nil
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}
