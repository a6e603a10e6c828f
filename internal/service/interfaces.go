package service

import (
	"context"
	"errors"

	"tech-advisor/internal/models"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidComparison = errors.New("a product cannot be compared with itself")
)

// ProductCatalog reads products with their brand, category and
// specifications populated.
type ProductCatalog interface {
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	// GetProduct returns a nil product and no error when no active product
	// has the id.
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

// NameResolver maps category and brand names to ids, ignoring case. ok is
// false when the name is unknown.
type NameResolver interface {
	ResolveCategoryID(ctx context.Context, name string) (id int64, ok bool, err error)
	ResolveBrandID(ctx context.Context, name string) (id int64, ok bool, err error)
}

// RuleInferrer returns the rules that fire for a fact set, highest priority
// first.
type RuleInferrer interface {
	Infer(ctx context.Context, inputs models.Preferences) ([]models.Rule, error)
}
