package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tech-advisor/internal/api"
	"tech-advisor/internal/api/handlers"
	"tech-advisor/internal/inference"
	"tech-advisor/internal/repository"
	"tech-advisor/internal/service"
	"tech-advisor/pkg/auth"
	"tech-advisor/pkg/cache"
	"tech-advisor/pkg/config"
	"tech-advisor/pkg/logger"
	"tech-advisor/pkg/postgres"

	"go.uber.org/zap"
)

// @title Tech Advisor API
// @version 1.0
// @description Rule-based product recommendations and comparisons for smartphones and laptops.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and an admin JWT.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting tech advisor service")

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	tables, err := service.LoadTables(cfg.Engine.ScoringTablesFile)
	if err != nil {
		appLogger.Fatal("Failed to load scoring tables", zap.Error(err))
	}

	// Repositories
	productRepo := repository.NewProductRepository(db, logger.Named("product_repository"))
	catalogRepo := repository.NewCatalogRepository(db, logger.Named("catalog_repository"))
	ruleRepo := repository.NewRuleRepository(db, logger.Named("rule_repository"))

	var (
		ruleStore   inference.RuleStore = ruleRepo
		invalidator handlers.RuleCacheInvalidator
	)
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			appLogger.Warn("Redis unavailable, rule caching disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			defer redisClient.Close()
			cached := repository.NewCachedRuleRepository(ruleRepo, redisClient, cfg.Redis.RuleCacheTTL, logger.Named("rule_cache"))
			ruleStore = cached
			invalidator = cached
			appLogger.Info("Rule caching enabled", zap.Duration("ttl", cfg.Redis.RuleCacheTTL))
		}
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Auth)
	if err != nil {
		appLogger.Fatal("Failed to initialize JWT manager", zap.Error(err))
	}

	// Engines and services
	engine := inference.NewEngine(ruleStore, logger.Named("inference"))
	scorer := service.NewScorer(tables)
	recService := service.NewRecommendationService(
		engine, productRepo, catalogRepo, scorer,
		cfg.Engine.DefaultLimit, cfg.Engine.MaxLimit,
		logger.Named("recommendation_service"),
	)
	compService := service.NewComparisonService(productRepo, scorer, logger.Named("comparison_service"))

	// Handlers
	recHandler := handlers.NewRecommendationHandler(recService, appLogger)
	compHandler := handlers.NewComparisonHandler(compService, appLogger)
	catalogHandler := handlers.NewCatalogHandler(productRepo, catalogRepo, appLogger)
	adminHandler := handlers.NewAdminHandler(engine, invalidator, appLogger)

	app := api.SetupRouter(
		api.Config{
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			AccessLog:    true,
		},
		recHandler, compHandler, catalogHandler, adminHandler,
		jwtManager, appLogger,
	)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
