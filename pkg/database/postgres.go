package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bazaar-shop/marketplace/pkg/logger"
)

// OpenPostgres opens a gorm PostgreSQL connection with retry and pooling defaults.
// Query logging is enabled at warn level outside production.
func OpenPostgres(ctx context.Context, dsn, appEnv string) (*gorm.DB, error) {
	level := gormlogger.Silent
	if appEnv == "development" || appEnv == "test" {
		level = gormlogger.Warn
	}

	var db *gorm.DB
	err := defaultBackoff.retry(ctx, "open postgres", func() error {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:         gormLogger{zap: logger.L(), level: level},
			TranslateError: true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// gormLogger routes gorm output through zap.
type gormLogger struct {
	zap   *zap.Logger
	level gormlogger.LogLevel
}

func (l gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	l.level = level
	return l
}

func (l gormLogger) Info(_ context.Context, s string, args ...any) {
	if l.level >= gormlogger.Info {
		l.zap.Sugar().Infof(s, args...)
	}
}

func (l gormLogger) Warn(_ context.Context, s string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.zap.Sugar().Warnf(s, args...)
	}
}

func (l gormLogger) Error(_ context.Context, s string, args ...any) {
	if l.level >= gormlogger.Error {
		l.zap.Sugar().Errorf(s, args...)
	}
}

func (l gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level == gormlogger.Silent {
		return
	}
	sql, rows := fc()
	fields := []zap.Field{zap.Duration("duration", time.Since(begin)), zap.Int64("rows", rows), zap.String("sql", sql)}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		l.zap.Error("gorm query error", append(fields, zap.Error(err))...)
		return
	}
	l.zap.Debug("gorm query", fields...)
}
