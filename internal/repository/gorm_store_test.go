package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bazaar-shop/marketplace/internal/migrate"
	"github.com/bazaar-shop/marketplace/internal/repository"
	"github.com/bazaar-shop/marketplace/internal/repository/repositorytest"
	"github.com/bazaar-shop/marketplace/pkg/database"
)

func TestGormStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pg, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("marketplace"),
		postgres.WithUsername("marketplace"),
		postgres.WithPassword("marketplace"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, pg)
	require.NoError(t, err)

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, migrate.Up(ctx, dsn))

	db, err := database.OpenPostgres(ctx, dsn, "test")
	require.NoError(t, err)

	store := repository.NewGormStore(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	repositorytest.Run(t, store)
}
