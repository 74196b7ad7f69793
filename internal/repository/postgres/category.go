package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/egannguyen/go-ecommerce-backend/internal/entity"
	"github.com/egannguyen/go-ecommerce-backend/internal/repository"
)

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new CategoryRepository backed by Postgres.
func NewCategoryRepository(db *sql.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, c *entity.Category) error {
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO categories (id, name, description)
		 VALUES ($1, $2, $3)
		 RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Description,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (r *categoryRepository) FindAll(ctx context.Context) ([]entity.Category, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range categories {
		products, err := r.findProducts(ctx, categories[i].ID)
		if err != nil {
			return nil, err
		}
		categories[i].Products = products
	}
	return categories, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id string) (*entity.Category, error) {
	var c entity.Category
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM categories WHERE id = $1", id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entity.NotFoundError{Resource: "category"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	products, err := r.findProducts(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Products = products
	return &c, nil
}

func (r *categoryRepository) findProducts(ctx context.Context, categoryID string) ([]entity.Product, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, name, description, price, image_url, stock, category_id, created_at, updated_at
		 FROM products WHERE category_id = $1 ORDER BY name`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL,
			&p.Stock, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
