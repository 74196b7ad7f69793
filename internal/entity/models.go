package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role of an authenticated user.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSummary is the user projection embedded in admin order listings.
type UserSummary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Summary returns the embeddable projection of a user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}

// Category groups products.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Products    []Product `json:"products,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product represents a product in the store. Stock is mutated only through
// the product repository's decrement/increment operations.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Stock       int             `json:"stock"`
	CategoryID  string          `json:"category_id"`
	Category    *Category       `json:"category,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Cart is a user's shopping cart. One cart per user, created lazily and
// never deleted, only emptied.
type Cart struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartItem is one (product, quantity) line in a cart. At most one line per
// (cart, product) pair.
type CartItem struct {
	ID        string    `json:"id"`
	CartID    string    `json:"cart_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartView is a cart with its lines and derived totals. Totals are computed
// from current product prices, never stored.
type CartView struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewCartView assembles a cart view, computing totals from the given lines.
func NewCartView(cart *Cart, items []CartItem) *CartView {
	view := &CartView{
		ID:         cart.ID,
		UserID:     cart.UserID,
		Items:      items,
		TotalPrice: decimal.Zero,
		CreatedAt:  cart.CreatedAt,
		UpdatedAt:  cart.UpdatedAt,
	}
	if view.Items == nil {
		view.Items = []CartItem{}
	}
	for _, item := range items {
		view.TotalItems += item.Quantity
		if item.Product != nil {
			line := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			view.TotalPrice = view.TotalPrice.Add(line)
		}
	}
	return view
}

// Order is an immutable snapshot of a checked-out cart. Only Status changes
// after creation.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Status          OrderStatus     `json:"status"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress string          `json:"shipping_address,omitempty"`
	BillingAddress  string          `json:"billing_address,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Items           []OrderItem     `json:"items"`
	User            *UserSummary    `json:"user,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is an immutable line of an order. Price is the product's unit
// price at checkout time and is never re-derived.
type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Product   *Product        `json:"product,omitempty"`
}
