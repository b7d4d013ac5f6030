package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// NewGormStore wires the gorm repositories over db.
func NewGormStore(db *gorm.DB) *Store {
	ping := func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("sql db: %w", err)
		}
		return sqlDB.PingContext(ctx)
	}
	closeFn := func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("sql db: %w", err)
		}
		return sqlDB.Close()
	}
	return NewStore(NewUserRepository(db), NewProductRepository(db), ping, closeFn)
}
