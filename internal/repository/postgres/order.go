package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/egannguyen/go-ecommerce-backend/internal/entity"
	"github.com/egannguyen/go-ecommerce-backend/internal/repository"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new OrderRepository backed by Postgres.
func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Insert(ctx context.Context, o *entity.Order) error {
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO orders (id, user_id, status, total, shipping_address, billing_address, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.Status, o.Total, o.ShippingAddress, o.BillingAddress, o.Notes,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (r *orderRepository) InsertItem(ctx context.Context, item *entity.OrderItem) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO order_items (id, order_id, product_id, quantity, price)
		 VALUES ($1, $2, $3, $4, $5)`,
		item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order item: %w", err)
	}
	return nil
}

const orderSelect = `
	SELECT o.id, o.user_id, o.status, o.total, o.shipping_address, o.billing_address,
	       o.notes, o.created_at, o.updated_at
	FROM orders o`

func scanOrder(row interface{ Scan(...any) error }) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.Total,
		&o.ShippingAddress, &o.BillingAddress, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) FindByID(ctx context.Context, orderID string) (*entity.Order, error) {
	o, err := scanOrder(conn(ctx, r.db).QueryRowContext(ctx, orderSelect+" WHERE o.id = $1", orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entity.NotFoundError{Resource: "order"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) FindByIDForUser(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	o, err := scanOrder(conn(ctx, r.db).QueryRowContext(ctx,
		orderSelect+" WHERE o.id = $1 AND o.user_id = $2", orderID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entity.NotFoundError{Resource: "order"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) FindByUserID(ctx context.Context, userID string) ([]entity.Order, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		orderSelect+" WHERE o.user_id = $1 ORDER BY o.created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	return r.collectOrders(ctx, rows, false)
}

func (r *orderRepository) FindAll(ctx context.Context) ([]entity.Order, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, orderSelect+" ORDER BY o.created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	return r.collectOrders(ctx, rows, true)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID string, status entity.OrderStatus) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &entity.NotFoundError{Resource: "order"}
	}
	return nil
}

func (r *orderRepository) collectOrders(ctx context.Context, rows *sql.Rows, withUser bool) ([]entity.Order, error) {
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
		if withUser {
			if err := r.loadUser(ctx, &orders[i]); err != nil {
				return nil, err
			}
		}
	}
	return orders, nil
}

// loadItems attaches the order's lines with product and category joined in.
func (r *orderRepository) loadItems(ctx context.Context, o *entity.Order) error {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
		        `+productColumns+`
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 JOIN categories c ON c.id = p.category_id
		 WHERE oi.order_id = $1
		 ORDER BY oi.id`, o.ID)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	o.Items = []entity.OrderItem{}
	for rows.Next() {
		var item entity.OrderItem
		var p entity.Product
		var c entity.Category
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Stock, &p.CategoryID,
			&p.CreatedAt, &p.UpdatedAt,
			&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		p.Category = &c
		item.Product = &p
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

func (r *orderRepository) loadUser(ctx context.Context, o *entity.Order) error {
	var u entity.UserSummary
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT id, email, first_name, last_name FROM users WHERE id = $1", o.UserID,
	).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to query order user: %w", err)
	}
	o.User = &u
	return nil
}
