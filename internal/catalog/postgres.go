// Package catalog reads products and the category tree from PostgreSQL.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jonesrussell/north-cloud/personalization/internal/domain"
)

// ErrNotFound is returned when a product or category id is unknown.
var ErrNotFound = errors.New("catalog: not found")

// Repository provides catalog lookups.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Product returns the product with the given id.
func (r *Repository) Product(ctx context.Context, id string) (*domain.Product, error) {
	product := &domain.Product{}
	query := `
		SELECT id, product_type, primary_category_id, master_id
		FROM products
		WHERE id = $1
	`

	if err := r.db.GetContext(ctx, product, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// Category returns the category with the given id.
func (r *Repository) Category(ctx context.Context, id string) (*domain.Category, error) {
	category := &domain.Category{}
	query := `
		SELECT id, parent_id, name
		FROM categories
		WHERE id = $1
	`

	if err := r.db.GetContext(ctx, category, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return category, nil
}

// IsSubCategoryOf reports whether child sits strictly below ancestor in the
// category tree. The walk starts at child's parent, so a category is never a
// subcategory of itself.
func (r *Repository) IsSubCategoryOf(ctx context.Context, child, ancestor *domain.Category) (bool, error) {
	if child.ParentID == nil {
		return false, nil
	}

	query := `
		WITH RECURSIVE ancestors(id, parent_id) AS (
			SELECT id, parent_id FROM categories WHERE id = $1
			UNION
			SELECT c.id, c.parent_id
			FROM categories c
			JOIN ancestors a ON c.id = a.parent_id
		)
		SELECT EXISTS (SELECT 1 FROM ancestors WHERE id = $2)
	`

	var found bool
	if err := r.db.GetContext(ctx, &found, query, *child.ParentID, ancestor.ID); err != nil {
		return false, fmt.Errorf("check category ancestry: %w", err)
	}

	return found, nil
}
