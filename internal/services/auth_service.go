package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bazaar-shop/marketplace/internal/auth"
	"github.com/bazaar-shop/marketplace/internal/models"
	"github.com/bazaar-shop/marketplace/internal/repository"
	"github.com/bazaar-shop/marketplace/internal/validators"
	appErr "github.com/bazaar-shop/marketplace/pkg/errors"
	"github.com/bazaar-shop/marketplace/pkg/logger"
)

// invalidCredentials is shared by every login failure so callers cannot tell
// an unknown email from a wrong password.
const invalidCredentials = "invalid email or password"

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Me(ctx context.Context, id auth.Identity) (*models.Profile, error)
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

// TokenIssuer signs session tokens for a user id.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

type authService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer) AuthService {
	return &authService{users: users, tokens: tokens, now: time.Now}
}

var _ AuthService = (*authService)(nil)

func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if err := validators.New().Struct(input); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, validators.Message(err))
	}

	role := models.ParseRole(input.Role)
	if role == models.RoleAdmin {
		logger.L().Warn("self-registration with admin role", zap.String("email", input.Email))
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "hash password failed")
	}

	now := s.now().UTC()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
		Avatar:       models.DefaultAvatar,
		Addresses:    []models.Address{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if appErr.IsCode(err, appErr.CodeConflict) {
			return nil, appErr.Wrap(err, appErr.CodeInvalid, "email is already registered")
		}
		return nil, err
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "issue token failed")
	}

	logger.L().Info("user registered", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return &AuthResult{User: u.Public(), Token: token}, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validators.New().Struct(input); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "email and password are required")
	}

	var u models.User
	if err := s.users.GetByEmail(ctx, input.Email, &u); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, appErr.New(appErr.CodeUnauthorized, invalidCredentials)
		}
		return nil, err
	}

	ok, err := auth.ComparePassword(u.PasswordHash, input.Password)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "verify password failed")
	}
	if !ok {
		return nil, appErr.New(appErr.CodeUnauthorized, invalidCredentials)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "issue token failed")
	}

	logger.L().Info("user logged in", zap.String("user_id", u.ID))
	return &AuthResult{User: u.Public(), Token: token}, nil
}

func (s *authService) Me(ctx context.Context, id auth.Identity) (*models.Profile, error) {
	var u models.User
	if err := s.users.GetByID(ctx, id.UserID, &u); err != nil {
		return nil, err
	}
	p := u.Profile()
	return &p, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
