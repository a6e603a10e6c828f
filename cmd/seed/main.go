package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"tech-advisor/internal/repository"
	"tech-advisor/pkg/auth"
	"tech-advisor/pkg/cache"
	"tech-advisor/pkg/config"
	"tech-advisor/pkg/logger"
	"tech-advisor/pkg/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataFile string
	logLevel string
	timeout  time.Duration

	tokenSubject string
	tokenTTL     time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "seed",
	Short:         "Prepare the tech advisor database",
	Long:          "Applies the schema and loads categories, brands, products and the recommendation rule set.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, db *pgxpool.Pool, cfg *config.Config, log *zap.Logger) error {
			return repository.Migrate(ctx, db, log)
		})
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Seed categories, brands and products",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(true, false)
	},
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Seed the recommendation rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(false, true)
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Migrate, then seed catalog and rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, db *pgxpool.Pool, cfg *config.Config, log *zap.Logger) error {
			if err := repository.Migrate(ctx, db, log); err != nil {
				return err
			}
			return seed(ctx, db, cfg, log, true, true)
		})
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print an admin bearer token for the admin endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		jwtManager, err := auth.NewJWTManager(&cfg.Auth)
		if err != nil {
			return err
		}
		token, err := jwtManager.GenerateToken(tokenSubject, auth.RoleAdmin, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataFile, "data", "d", "", "seed data YAML file (defaults to the built-in data set)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (defaults to LOG_LEVEL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")

	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "admin", "token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")

	rootCmd.AddCommand(migrateCmd, catalogCmd, rulesCmd, allCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func runSeed(catalog, rules bool) error {
	return withDatabase(func(ctx context.Context, db *pgxpool.Pool, cfg *config.Config, log *zap.Logger) error {
		return seed(ctx, db, cfg, log, catalog, rules)
	})
}

func withDatabase(fn func(ctx context.Context, db *pgxpool.Pool, cfg *config.Config, log *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel == "" {
		logLevel = cfg.Logger.Level
	}

	log, err := logger.New(logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := postgres.NewPool(ctx, &cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, db, cfg, log)
}

func seed(ctx context.Context, db *pgxpool.Pool, cfg *config.Config, log *zap.Logger, catalog, rules bool) error {
	data, err := loadSeedData(dataFile)
	if err != nil {
		return err
	}

	ruleRepo := repository.NewRuleRepository(db, log)
	s := &seeder{
		catalog:  repository.NewCatalogRepository(db, log),
		products: repository.NewProductRepository(db, log),
		rules:    ruleRepo,
		logger:   log,
	}

	if catalog {
		if err := s.seedCatalog(ctx, data); err != nil {
			return err
		}
	}
	if rules {
		if err := s.seedRules(ctx, data); err != nil {
			return err
		}
		invalidateRuleCache(ctx, cfg, ruleRepo, log)
	}

	log.Info("Database seeding completed")
	return nil
}

// invalidateRuleCache drops cached rule sets so the service sees new rules
// before the TTL runs out. Failure only logs.
func invalidateRuleCache(ctx context.Context, cfg *config.Config, store *repository.RuleRepository, log *zap.Logger) {
	if !cfg.Redis.Enabled() {
		return
	}
	client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.Prefix,
	})
	if err != nil {
		log.Warn("Redis unavailable, cached rules expire on their own", zap.Error(err))
		return
	}
	defer client.Close()

	if err := repository.NewCachedRuleRepository(store, client, cfg.Redis.RuleCacheTTL, log).Invalidate(ctx); err != nil {
		log.Warn("Failed to invalidate rule cache", zap.Error(err))
		return
	}
	log.Info("Rule cache invalidated")
}
