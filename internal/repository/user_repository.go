package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bazaar-shop/marketplace/internal/models"
	appErr "github.com/bazaar-shop/marketplace/pkg/errors"
)

type userRepository struct {
	BaseRepository[models.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository[models.User](db, "user"), db: db}
}

func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	if err := r.BaseRepository.Create(ctx, u); err != nil {
		if appErr.IsCode(err, appErr.CodeConflict) {
			return appErr.Wrap(err, appErr.CodeConflict, "email is already registered")
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string, dest *models.User) error {
	if err := r.db.WithContext(ctx).Omit("password_hash").First(dest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appErr.New(appErr.CodeNotFound, "user not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get user failed")
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string, dest *models.User) error {
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appErr.New(appErr.CodeNotFound, "user not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get user by email failed")
	}
	return nil
}
