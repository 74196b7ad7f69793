package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/egannguyen/go-ecommerce-backend/internal/entity"
	"github.com/egannguyen/go-ecommerce-backend/internal/repository"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new CartRepository backed by Postgres.
func NewCartRepository(db *sql.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

// GetOrCreate returns the user's cart, creating an empty one on first access.
// The unique constraint on user_id makes the create race-safe.
func (r *cartRepository) GetOrCreate(ctx context.Context, userID string) (*entity.Cart, error) {
	q := conn(ctx, r.db)

	_, err := q.ExecContext(ctx,
		"INSERT INTO carts (id, user_id) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING",
		uuid.New().String(), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	var cart entity.Cart
	err = q.QueryRowContext(ctx,
		"SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1", userID,
	).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	return &cart, nil
}

const cartItemSelect = `
	SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
	       ` + productColumns + `
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id
	JOIN categories c ON c.id = p.category_id`

func scanCartItem(row interface{ Scan(...any) error }) (*entity.CartItem, error) {
	var item entity.CartItem
	var p entity.Product
	var c entity.Category
	err := row.Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
		&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Stock, &p.CategoryID,
		&p.CreatedAt, &p.UpdatedAt,
		&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Category = &c
	item.Product = &p
	return &item, nil
}

func (r *cartRepository) FindItems(ctx context.Context, cartID string) ([]entity.CartItem, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		cartItemSelect+" WHERE ci.cart_id = $1 ORDER BY ci.created_at", cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []entity.CartItem
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *cartRepository) FindItem(ctx context.Context, cartID, itemID string) (*entity.CartItem, error) {
	item, err := scanCartItem(conn(ctx, r.db).QueryRowContext(ctx,
		cartItemSelect+" WHERE ci.cart_id = $1 AND ci.id = $2", cartID, itemID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entity.NotFoundError{Resource: "cart item"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cart item: %w", err)
	}
	return item, nil
}

func (r *cartRepository) FindItemByProduct(ctx context.Context, cartID, productID string) (*entity.CartItem, error) {
	item, err := scanCartItem(conn(ctx, r.db).QueryRowContext(ctx,
		cartItemSelect+" WHERE ci.cart_id = $1 AND ci.product_id = $2", cartID, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entity.NotFoundError{Resource: "cart item"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cart item: %w", err)
	}
	return item, nil
}

func (r *cartRepository) InsertItem(ctx context.Context, item *entity.CartItem) error {
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO cart_items (id, cart_id, product_id, quantity)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		item.ID, item.CartID, item.ProductID, item.Quantity,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1, updated_at = NOW() WHERE id = $2",
		quantity, itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &entity.NotFoundError{Resource: "cart item"}
	}
	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, itemID string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, "DELETE FROM cart_items WHERE id = $1", itemID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &entity.NotFoundError{Resource: "cart item"}
	}
	return nil
}

// DeleteItems empties a cart. Deleting from an already-empty cart is fine.
func (r *cartRepository) DeleteItems(ctx context.Context, cartID string) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cartID)
	if err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}
	return nil
}
