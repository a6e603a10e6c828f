package main

import (
	"context"
	"fmt"

	"tech-advisor/internal/repository"

	"go.uber.org/zap"
)

type seeder struct {
	catalog  *repository.CatalogRepository
	products *repository.ProductRepository
	rules    *repository.RuleRepository
	logger   *zap.Logger
}

// seedCatalog upserts categories, brands and products. Running it twice
// leaves the same rows behind.
func (s *seeder) seedCatalog(ctx context.Context, data *seedData) error {
	categoryIDs := make(map[string]int64, len(data.Categories))
	for _, c := range data.Categories {
		category := c.toModel()
		if err := s.catalog.UpsertCategory(ctx, &category); err != nil {
			return err
		}
		categoryIDs[c.Name] = category.ID
	}

	brandIDs := make(map[string]int64, len(data.Brands))
	for _, b := range data.Brands {
		brand := b.toModel()
		if err := s.catalog.UpsertBrand(ctx, &brand); err != nil {
			return err
		}
		brandIDs[b.Name] = brand.ID
	}

	for _, p := range data.Products {
		product := p.toModel(brandIDs[p.Brand], categoryIDs[p.Category])
		if err := s.products.UpsertProduct(ctx, &product); err != nil {
			return fmt.Errorf("failed to seed product %q: %w", p.Name, err)
		}
	}

	s.logger.Info("Catalog seeded",
		zap.Int("categories", len(data.Categories)),
		zap.Int("brands", len(data.Brands)),
		zap.Int("products", len(data.Products)),
	)
	return nil
}

// seedRules replaces every rule of the data set by name. Categories must
// already exist.
func (s *seeder) seedRules(ctx context.Context, data *seedData) error {
	for _, r := range data.Rules {
		var categoryID *int64
		if r.Category != "" {
			id, ok, err := s.catalog.ResolveCategoryID(ctx, r.Category)
			if err != nil {
				return fmt.Errorf("failed to resolve category %q: %w", r.Category, err)
			}
			if !ok {
				return fmt.Errorf("rule %q: category %q not found, seed the catalog first", r.Name, r.Category)
			}
			categoryID = &id
		}

		rule := r.toModel(categoryID)
		if err := s.rules.ReplaceRule(ctx, &rule); err != nil {
			return err
		}
		s.logger.Debug("Rule seeded", zap.String("name", rule.Name), zap.Int("conditions", len(rule.Conditions)))
	}

	s.logger.Info("Rules seeded", zap.Int("rules", len(data.Rules)))
	return nil
}
