package repository

import (
	"context"
	"errors"
	"fmt"

	"tech-advisor/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var productColumns = []string{
	"p.id", "p.name", "p.brand_id", "b.name", "p.category_id", "c.name",
	"p.price", "p.image_url", "p.description", "p.is_active", "p.created_at", "p.updated_at",
}

type ProductRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProductRepository(db *pgxpool.Pool, logger *zap.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: logger,
	}
}

func productQuery() squirrel.SelectBuilder {
	return squirrel.Select(productColumns...).
		From("products p").
		Join("brands b ON b.id = p.brand_id").
		Join("categories c ON c.id = p.category_id").
		PlaceholderFormat(squirrel.Dollar)
}

// ListProducts returns the products matching filter, cheapest first, with
// their specifications loaded.
func (r *ProductRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	query := productQuery()

	if filter.ActiveOnly {
		query = query.Where(squirrel.Eq{"p.is_active": true})
	}
	if len(filter.CategoryIDs) > 0 {
		query = query.Where(squirrel.Eq{"p.category_id": filter.CategoryIDs})
	}
	if filter.MaxPrice != nil {
		query = query.Where(squirrel.LtOrEq{"p.price": *filter.MaxPrice})
	}
	if filter.BrandID != nil {
		query = query.Where(squirrel.Eq{"p.brand_id": *filter.BrandID})
	}

	sql, args, err := query.OrderBy("p.price ASC", "p.id ASC").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachSpecifications(ctx, products); err != nil {
		return nil, err
	}

	r.logger.Debug("Products listed", zap.Int("count", len(products)))
	return products, nil
}

// GetProduct returns the active product with the id, or nil when there is none.
func (r *ProductRepository) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	sql, args, err := productQuery().
		Where(squirrel.Eq{"p.id": id, "p.is_active": true}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var p models.Product
	if err := scanProduct(r.db.QueryRow(ctx, sql, args...), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	products := []models.Product{p}
	if err := r.attachSpecifications(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// UpsertProduct inserts or updates a product by (brand, name) and replaces
// its specifications.
func (r *ProductRepository) UpsertProduct(ctx context.Context, p *models.Product) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql, args, err := squirrel.Insert("products").
		Columns("name", "brand_id", "category_id", "price", "image_url", "description", "is_active").
		Values(p.Name, p.BrandID, p.CategoryID, p.Price, p.ImageURL, p.Description, p.IsActive).
		Suffix(`ON CONFLICT (brand_id, name) DO UPDATE SET
			category_id = EXCLUDED.category_id,
			price = EXCLUDED.price,
			image_url = EXCLUDED.image_url,
			description = EXCLUDED.description,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
			RETURNING id, created_at, updated_at`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if err := tx.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM specifications WHERE product_id = $1", p.ID); err != nil {
		return fmt.Errorf("failed to clear specifications: %w", err)
	}

	if len(p.Specifications) > 0 {
		builder := squirrel.Insert("specifications").
			Columns("product_id", "spec_key", "spec_value").
			PlaceholderFormat(squirrel.Dollar)
		for _, s := range p.Specifications {
			builder = builder.Values(p.ID, s.Key, s.Value)
		}
		sql, args, err := builder.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("failed to insert specifications: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *ProductRepository) attachSpecifications(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]int64, len(products))
	index := make(map[int64]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
	}

	sql, args, err := squirrel.Select("product_id", "spec_key", "spec_value").
		From("specifications").
		Where(squirrel.Eq{"product_id": ids}).
		OrderBy("product_id", "id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID int64
			spec      models.Specification
		)
		if err := rows.Scan(&productID, &spec.Key, &spec.Value); err != nil {
			return err
		}
		if i, ok := index[productID]; ok {
			products[i].Specifications = append(products[i].Specifications, spec)
		}
	}
	return rows.Err()
}

func scanProduct(row pgx.Row, p *models.Product) error {
	return row.Scan(
		&p.ID, &p.Name, &p.BrandID, &p.BrandName, &p.CategoryID, &p.CategoryName,
		&p.Price, &p.ImageURL, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
}
