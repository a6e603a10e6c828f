package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tech-advisor/internal/api/handlers"
	"tech-advisor/internal/inference"
	"tech-advisor/internal/models"
	"tech-advisor/internal/service"
	"tech-advisor/pkg/auth"
	"tech-advisor/pkg/config"
	"tech-advisor/pkg/middleware"
)

type emptyStore struct{}

func (emptyStore) ListProducts(context.Context, models.ProductFilter) ([]models.Product, error) {
	return nil, nil
}

func (emptyStore) GetProduct(context.Context, int64) (*models.Product, error) { return nil, nil }

func (emptyStore) ResolveCategoryID(context.Context, string) (int64, bool, error) {
	return 0, false, nil
}

func (emptyStore) ResolveBrandID(context.Context, string) (int64, bool, error) {
	return 0, false, nil
}

func (emptyStore) ListCategories(context.Context) ([]models.Category, error) { return nil, nil }

func (emptyStore) ListBrands(context.Context) ([]models.Brand, error) { return nil, nil }

func (emptyStore) ActiveRules(context.Context, *int64) ([]models.Rule, error) { return nil, nil }

func newRouter(t *testing.T) (*fiber.App, *auth.JWTManager) {
	t.Helper()
	logger := zap.NewNop()
	store := emptyStore{}
	engine := inference.NewEngine(store, logger)
	scorer := service.NewScorer(service.DefaultTables())

	jwtManager, err := auth.NewJWTManager(&config.AuthConfig{JWTSecret: "router-secret"})
	require.NoError(t, err)

	app := SetupRouter(
		Config{ReadTimeout: time.Second, WriteTimeout: time.Second},
		handlers.NewRecommendationHandler(service.NewRecommendationService(engine, store, store, scorer, 10, 50, logger), logger),
		handlers.NewComparisonHandler(service.NewComparisonService(store, scorer, logger), logger),
		handlers.NewCatalogHandler(store, store, logger),
		handlers.NewAdminHandler(engine, nil, logger),
		jwtManager,
		logger,
	)
	return app, jwtManager
}

func get(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestRouter_PublicEndpoints(t *testing.T) {
	app, _ := newRouter(t)

	resp, body := get(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))

	resp, body = get(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"products":[],"total":0}`, body)

	resp, body = get(t, app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "api_requests_total")
}

func TestRouter_EmptyCatalogRecommendation(t *testing.T) {
	app, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(`{"category":"laptop"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, body := get(t, app, req)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"products":[],"total_matches":0,"fired_rules":0,"message":"No matching products found. Try adjusting your criteria."}`, body)
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	app, jwtManager := newRouter(t)

	resp, _ := get(t, app, httptest.NewRequest(http.MethodDelete, "/api/v1/admin/rules/cache", nil))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token, err := jwtManager.GenerateToken("ops", auth.RoleAdmin, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/rules/cache", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, body := get(t, app, req)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"invalidated":false`)
}

func TestRouter_UnknownRoute(t *testing.T) {
	app, _ := newRouter(t)

	resp, body := get(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"error"`)
}
