package repository

import (
	"context"

	"github.com/egannguyen/go-ecommerce-backend/internal/entity"
)

// Transactor runs a unit of work inside a single database transaction.
// Repository calls made with the ctx passed to fn join that transaction;
// any error from fn rolls everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository handles persistence for Users.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

// CategoryRepository handles persistence for Categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	FindAll(ctx context.Context) ([]entity.Category, error)
	FindByID(ctx context.Context, id string) (*entity.Category, error)
}

// ProductRepository handles persistence for Products, including the stock
// ledger. DecrementStock is a conditional update: it fails with
// *entity.InsufficientStockError instead of letting stock go negative,
// regardless of what the caller checked beforehand.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	FindAll(ctx context.Context) ([]entity.Product, error)
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
	DecrementStock(ctx context.Context, productID string, qty int) error
	IncrementStock(ctx context.Context, productID string, qty int) error
}

// CartRepository handles persistence for Carts and their items. Item lookups
// are always scoped by cart, which is how ownership is enforced.
type CartRepository interface {
	GetOrCreate(ctx context.Context, userID string) (*entity.Cart, error)
	FindItems(ctx context.Context, cartID string) ([]entity.CartItem, error)
	FindItem(ctx context.Context, cartID, itemID string) (*entity.CartItem, error)
	FindItemByProduct(ctx context.Context, cartID, productID string) (*entity.CartItem, error)
	InsertItem(ctx context.Context, item *entity.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error
	DeleteItem(ctx context.Context, itemID string) error
	DeleteItems(ctx context.Context, cartID string) error
}

// OrderRepository handles persistence for Orders and their items.
type OrderRepository interface {
	Insert(ctx context.Context, order *entity.Order) error
	InsertItem(ctx context.Context, item *entity.OrderItem) error
	FindByID(ctx context.Context, orderID string) (*entity.Order, error)
	FindByIDForUser(ctx context.Context, userID, orderID string) (*entity.Order, error)
	FindByUserID(ctx context.Context, userID string) ([]entity.Order, error)
	FindAll(ctx context.Context) ([]entity.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status entity.OrderStatus) error
}
