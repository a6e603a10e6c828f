package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tech-advisor/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// CatalogRepository reads and seeds categories and brands.
type CatalogRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCatalogRepository(db *pgxpool.Pool, logger *zap.Logger) *CatalogRepository {
	return &CatalogRepository{
		db:     db,
		logger: logger,
	}
}

func (r *CatalogRepository) ResolveCategoryID(ctx context.Context, name string) (int64, bool, error) {
	return r.resolve(ctx, "categories", name)
}

func (r *CatalogRepository) ResolveBrandID(ctx context.Context, name string) (int64, bool, error) {
	return r.resolve(ctx, "brands", name)
}

// resolve looks a name up ignoring case and surrounding whitespace.
func (r *CatalogRepository) resolve(ctx context.Context, table, name string) (int64, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false, nil
	}

	sql, args, err := squirrel.Select("id").
		From(table).
		Where("LOWER(name) = LOWER(?)", name).
		OrderBy("id").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, false, err
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	sql, args, err := squirrel.Select("id", "name", "description", "created_at").
		From("categories").
		OrderBy("name").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CatalogRepository) ListBrands(ctx context.Context) ([]models.Brand, error) {
	sql, args, err := squirrel.Select("id", "name", "logo_url", "created_at").
		From("brands").
		OrderBy("name").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []models.Brand
	for rows.Next() {
		var b models.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.LogoURL, &b.CreatedAt); err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

// UpsertCategory inserts a category or updates the description of an
// existing one with the same name, filling in c.ID.
func (r *CatalogRepository) UpsertCategory(ctx context.Context, c *models.Category) error {
	sql, args, err := squirrel.Insert("categories").
		Columns("name", "description").
		Values(c.Name, c.Description).
		Suffix("ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("failed to upsert category %q: %w", c.Name, err)
	}
	return nil
}

// UpsertBrand inserts a brand or updates the logo of an existing one with the
// same name, filling in b.ID.
func (r *CatalogRepository) UpsertBrand(ctx context.Context, b *models.Brand) error {
	sql, args, err := squirrel.Insert("brands").
		Columns("name", "logo_url").
		Values(b.Name, b.LogoURL).
		Suffix("ON CONFLICT (name) DO UPDATE SET logo_url = EXCLUDED.logo_url RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&b.ID, &b.CreatedAt); err != nil {
		return fmt.Errorf("failed to upsert brand %q: %w", b.Name, err)
	}
	return nil
}
