package api

import (
	"errors"
	"time"

	"tech-advisor/docs"
	"tech-advisor/internal/api/handlers"
	"tech-advisor/pkg/middleware"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Config struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// AccessLog enables fiber's request logger.
	AccessLog bool
}

func SetupRouter(
	cfg Config,
	recHandler *handlers.RecommendationHandler,
	compHandler *handlers.ComparisonHandler,
	catalogHandler *handlers.CatalogHandler,
	adminHandler *handlers.AdminHandler,
	tokens middleware.TokenValidator,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "tech-advisor",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				appLogger.Error("Unhandled request error",
					zap.String("path", c.Path()),
					zap.String("request_id", middleware.GetRequestID(c)),
					zap.Error(err),
				)
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization," + middleware.HeaderRequestID,
		ExposeHeaders: middleware.HeaderRequestID,
	}))
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:request_id} ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	app.Use(middleware.Metrics())

	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	api.Post("/recommendations", recHandler.GetRecommendations)
	api.Get("/compare", compHandler.CompareProducts)

	api.Get("/products", catalogHandler.ListProducts)
	api.Get("/products/:id", catalogHandler.GetProduct)
	api.Get("/categories", catalogHandler.ListCategories)
	api.Get("/brands", catalogHandler.ListBrands)

	admin := api.Group("/admin", middleware.AdminOnly(tokens, appLogger))
	admin.Post("/rules/evaluate", adminHandler.EvaluateRules)
	admin.Delete("/rules/cache", adminHandler.InvalidateRuleCache)

	return app
}
