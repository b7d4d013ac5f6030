package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bazaar-shop/marketplace/internal/api"
	mw "github.com/bazaar-shop/marketplace/internal/api/middleware"
	"github.com/bazaar-shop/marketplace/internal/auth"
	"github.com/bazaar-shop/marketplace/internal/migrate"
	"github.com/bazaar-shop/marketplace/internal/repository"
	"github.com/bazaar-shop/marketplace/internal/repository/memory"
	mongorepo "github.com/bazaar-shop/marketplace/internal/repository/mongo"
	"github.com/bazaar-shop/marketplace/internal/services"
	"github.com/bazaar-shop/marketplace/internal/storage"
	"github.com/bazaar-shop/marketplace/pkg/config"
	"github.com/bazaar-shop/marketplace/pkg/database"
	"github.com/bazaar-shop/marketplace/pkg/logger"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("starting marketplace api",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("store", cfg.StoreDriver),
	)

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn("store close error", zap.Error(err))
		}
	}()
	log.Info("store ready", zap.String("driver", cfg.StoreDriver))

	issuer, err := auth.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		log.Fatal("invalid token configuration", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	dep := api.Dependencies{
		Auth:               services.NewAuthService(store.Users, issuer),
		Products:           services.NewProductService(store.Products),
		Sessions:           auth.NewSessionResolver(issuer, store.Users),
		Store:              store,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ExposeErrorDetail:  cfg.IsDevelopment(),
		Registry:           reg,
	}

	limiter, closeLimiter := newAuthLimiter(ctx, cfg, log)
	defer closeLimiter()
	dep.AuthLimiter = limiter

	if cfg.S3Bucket != "" {
		presigner, err := storage.NewImagePresigner(ctx, storage.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			log.Fatal("failed to configure image storage", zap.Error(err))
		}
		dep.Images = presigner
		log.Info("image uploads enabled", zap.String("bucket", cfg.S3Bucket))
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(dep),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*repository.Store, error) {
	switch cfg.StoreDriver {
	case "postgres":
		if err := migrate.Up(ctx, cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, cfg.AppEnv)
		if err != nil {
			return nil, err
		}
		return repository.NewGormStore(db), nil
	case "mongo":
		db, err := database.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
			_ = db.Client().Disconnect(ctx)
			return nil, err
		}
		return mongorepo.NewStore(db), nil
	case "memory":
		logger.L().Warn("using in-memory store; data is lost on restart")
		return memory.NewStore(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// newAuthLimiter returns the register/login limiter, shared through Redis
// when REDIS_ADDR is set. It returns nil when rate limiting is disabled.
func newAuthLimiter(ctx context.Context, cfg *config.Config, log *zap.Logger) (mw.Limiter, func()) {
	noop := func() {}
	if cfg.RateLimitRPS <= 0 {
		return nil, noop
	}
	if cfg.RedisAddr == "" {
		return mw.NewMemoryLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst), noop
	}

	client, err := database.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn("redis unavailable, falling back to in-process rate limiting", zap.Error(err))
		return mw.NewMemoryLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst), noop
	}
	perMinute := int(cfg.RateLimitRPS * 60)
	if perMinute < cfg.RateLimitBurst {
		perMinute = cfg.RateLimitBurst
	}
	return mw.NewRedisLimiter(client, perMinute, time.Minute), func() { closeRedis(client, log) }
}

func closeRedis(client *redis.Client, log *zap.Logger) {
	if err := client.Close(); err != nil {
		log.Warn("redis close error", zap.Error(err))
	}
}
