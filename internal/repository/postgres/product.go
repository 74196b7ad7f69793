package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/egannguyen/go-ecommerce-backend/internal/entity"
	"github.com/egannguyen/go-ecommerce-backend/internal/repository"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new ProductRepository backed by Postgres.
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `
	p.id, p.name, p.description, p.price, p.image_url, p.stock, p.category_id,
	p.created_at, p.updated_at,
	c.id, c.name, c.description, c.created_at, c.updated_at`

const productSelect = `
	SELECT ` + productColumns + `
	FROM products p
	JOIN categories c ON c.id = p.category_id`

func scanProduct(row interface{ Scan(...any) error }) (*entity.Product, error) {
	var p entity.Product
	var c entity.Category
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Stock, &p.CategoryID,
		&p.CreatedAt, &p.UpdatedAt,
		&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Category = &c
	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, p *entity.Product) error {
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO products (id, name, description, price, image_url, stock, category_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Stock, p.CategoryID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, productSelect+" ORDER BY p.name")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(conn(ctx, r.db).QueryRowContext(ctx, productSelect+" WHERE p.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entity.NotFoundError{Resource: "product"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

func (r *productRepository) Update(ctx context.Context, p *entity.Product) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE products
		 SET name = $1, description = $2, price = $3, image_url = $4, stock = $5,
		     category_id = $6, updated_at = NOW()
		 WHERE id = $7`,
		p.Name, p.Description, p.Price, p.ImageURL, p.Stock, p.CategoryID, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &entity.NotFoundError{Resource: "product"}
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &entity.NotFoundError{Resource: "product"}
	}
	return nil
}

// DecrementStock subtracts qty conditionally: the row is only touched while
// stock >= qty, so a concurrent checkout can never drive stock negative no
// matter what the caller read beforehand.
func (r *productRepository) DecrementStock(ctx context.Context, productID string, qty int) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1",
		qty, productID,
	)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read decrement result: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Conditional update matched nothing: either the product vanished or the
	// remaining stock is short. Re-read inside the same transaction to report.
	var name string
	var stock int
	err = conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT name, stock FROM products WHERE id = $1", productID,
	).Scan(&name, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return &entity.NotFoundError{Resource: "product"}
	}
	if err != nil {
		return fmt.Errorf("failed to re-read stock: %w", err)
	}
	return &entity.InsufficientStockError{
		ProductID:   productID,
		ProductName: name,
		Requested:   qty,
		Available:   stock,
	}
}

// IncrementStock restores stock, used only by order cancellation.
func (r *productRepository) IncrementStock(ctx context.Context, productID string, qty int) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2",
		qty, productID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &entity.NotFoundError{Resource: "product"}
	}
	return nil
}
