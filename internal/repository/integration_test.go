//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"tech-advisor/internal/models"
	"tech-advisor/pkg/cache"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("tech_advisor_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool, zap.NewNop()))
	// Applying twice must be harmless.
	require.NoError(t, Migrate(ctx, pool, zap.NewNop()))
	return pool
}

type fixture struct {
	phones, laptops models.Category
	apple, dell     models.Brand
}

func seedFixture(t *testing.T, ctx context.Context, pool *pgxpool.Pool) fixture {
	t.Helper()
	logger := zap.NewNop()
	catalog := NewCatalogRepository(pool, logger)
	products := NewProductRepository(pool, logger)

	f := fixture{
		phones:  models.Category{Name: "Smartphone"},
		laptops: models.Category{Name: "Laptop"},
		apple:   models.Brand{Name: "Apple"},
		dell:    models.Brand{Name: "Dell"},
	}
	require.NoError(t, catalog.UpsertCategory(ctx, &f.phones))
	require.NoError(t, catalog.UpsertCategory(ctx, &f.laptops))
	require.NoError(t, catalog.UpsertBrand(ctx, &f.apple))
	require.NoError(t, catalog.UpsertBrand(ctx, &f.dell))

	items := []models.Product{
		{Name: "iPhone 15", BrandID: f.apple.ID, CategoryID: f.phones.ID, Price: 799, IsActive: true,
			Specifications: []models.Specification{{Key: "RAM", Value: "6GB"}, {Key: "Storage", Value: "128GB"}}},
		{Name: "MacBook Air", BrandID: f.apple.ID, CategoryID: f.laptops.ID, Price: 1099, IsActive: true,
			Specifications: []models.Specification{{Key: "Processor", Value: "Apple M3"}}},
		{Name: "XPS 13", BrandID: f.dell.ID, CategoryID: f.laptops.ID, Price: 999.99, IsActive: true},
		{Name: "Retired", BrandID: f.dell.ID, CategoryID: f.laptops.ID, Price: 100, IsActive: false},
	}
	for i := range items {
		require.NoError(t, products.UpsertProduct(ctx, &items[i]))
	}
	return f
}

func TestIntegration_ProductRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	pool := setupPostgres(t)
	f := seedFixture(t, ctx, pool)
	repo := NewProductRepository(pool, zap.NewNop())

	all, err := repo.ListProducts(ctx, models.ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "iPhone 15", all[0].Name, "cheapest first")
	assert.Equal(t, "Apple", all[0].BrandName)
	assert.Equal(t, "Smartphone", all[0].CategoryName)
	assert.Equal(t, []models.Specification{{Key: "RAM", Value: "6GB"}, {Key: "Storage", Value: "128GB"}}, all[0].Specifications)

	maxPrice := 1000.0
	laptops, err := repo.ListProducts(ctx, models.ProductFilter{
		ActiveOnly:  true,
		CategoryIDs: []int64{f.laptops.ID},
		MaxPrice:    &maxPrice,
	})
	require.NoError(t, err)
	require.Len(t, laptops, 1)
	assert.Equal(t, "XPS 13", laptops[0].Name)
	assert.InDelta(t, 999.99, laptops[0].Price, 0.001)

	brand := f.apple.ID
	apple, err := repo.ListProducts(ctx, models.ProductFilter{ActiveOnly: true, BrandID: &brand})
	require.NoError(t, err)
	assert.Len(t, apple, 2)

	withInactive, err := repo.ListProducts(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, withInactive, 4)

	got, err := repo.GetProduct(ctx, all[1].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, all[1].Name, got.Name)

	missing, err := repo.GetProduct(ctx, 987654)
	require.NoError(t, err)
	assert.Nil(t, missing)

	// Upserting again replaces specifications instead of duplicating them.
	again := models.Product{Name: "iPhone 15", BrandID: f.apple.ID, CategoryID: f.phones.ID, Price: 749, IsActive: true,
		Specifications: []models.Specification{{Key: "RAM", Value: "8GB"}}}
	require.NoError(t, repo.UpsertProduct(ctx, &again))
	assert.Equal(t, all[0].ID, again.ID)

	reloaded, err := repo.GetProduct(ctx, again.ID)
	require.NoError(t, err)
	assert.Equal(t, 749.0, reloaded.Price)
	assert.Equal(t, []models.Specification{{Key: "RAM", Value: "8GB"}}, reloaded.Specifications)
}

func TestIntegration_CatalogRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	pool := setupPostgres(t)
	f := seedFixture(t, ctx, pool)
	repo := NewCatalogRepository(pool, zap.NewNop())

	id, ok, err := repo.ResolveCategoryID(ctx, "  smartPHONE ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, f.phones.ID, id)

	_, ok, err = repo.ResolveBrandID(ctx, "Nokia")
	require.NoError(t, err)
	assert.False(t, ok)

	id, ok, err = repo.ResolveBrandID(ctx, "DELL")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, f.dell.ID, id)

	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Laptop", categories[0].Name)

	brands, err := repo.ListBrands(ctx)
	require.NoError(t, err)
	assert.Len(t, brands, 2)
}

func TestIntegration_RuleRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	pool := setupPostgres(t)
	f := seedFixture(t, ctx, pool)
	repo := NewRuleRepository(pool, zap.NewNop())

	rules := []models.Rule{
		{Name: "Gaming laptops", CategoryID: &f.laptops.ID, Priority: 90, IsActive: true,
			Conditions: []models.RuleCondition{{Key: "usage_type", Operator: models.OperatorEquals, Value: "gaming"}}},
		{Name: "Any budget", Priority: 10, IsActive: true},
		{Name: "Phones", CategoryID: &f.phones.ID, Priority: 50, IsActive: true},
		{Name: "Disabled", Priority: 100, IsActive: false},
	}
	for i := range rules {
		require.NoError(t, repo.ReplaceRule(ctx, &rules[i]))
	}
	// Replacing by name keeps a single copy.
	require.NoError(t, repo.ReplaceRule(ctx, &rules[0]))

	all, err := repo.ActiveRules(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Gaming laptops", all[0].Name)
	require.Len(t, all[0].Conditions, 1)
	assert.Equal(t, models.OperatorEquals, all[0].Conditions[0].Operator)
	assert.Equal(t, "user_input", all[0].Conditions[0].Type)

	laptops, err := repo.ActiveRules(ctx, &f.laptops.ID)
	require.NoError(t, err)
	names := make([]string, 0, len(laptops))
	for _, r := range laptops {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Gaming laptops", "Any budget"}, names)
}

func TestIntegration_RedisRuleCache(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx,
		"redis:7.4-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := cache.NewRedisClient(ctx, cache.RedisConfig{Addr: fmt.Sprintf("%s:%s", host, port.Port()), Prefix: "test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := &countingStore{rules: sampleRules()}
	repo := NewCachedRuleRepository(store, client, time.Minute, zap.NewNop())

	first, err := repo.ActiveRules(ctx, nil)
	require.NoError(t, err)
	second, err := repo.ActiveRules(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.calls)

	require.NoError(t, repo.Invalidate(ctx))
	_, err = client.Get(ctx, ruleCacheKey(nil))
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}
