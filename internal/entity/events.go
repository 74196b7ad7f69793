package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event represents a domain event.
type Event interface {
	EventType() string
}

// OrderLine is the event-payload projection of an order item.
type OrderLine struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderPlaced is emitted after a checkout transaction commits.
type OrderPlaced struct {
	OrderID  string          `json:"order_id"`
	UserID   string          `json:"user_id"`
	Items    []OrderLine     `json:"items"`
	Total    decimal.Decimal `json:"total"`
	PlacedAt time.Time       `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }

// OrderStatusChanged is emitted after a privileged status update commits.
type OrderStatusChanged struct {
	OrderID   string      `json:"order_id"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedAt time.Time   `json:"changed_at"`
}

func (e OrderStatusChanged) EventType() string { return "OrderStatusChanged" }

// OrderCancelled is emitted after a cancellation commits. Restocked lists
// the stock restorations applied, the exact inverse of the checkout decrement.
type OrderCancelled struct {
	OrderID     string      `json:"order_id"`
	UserID      string      `json:"user_id"`
	Restocked   []OrderLine `json:"restocked"`
	CancelledAt time.Time   `json:"cancelled_at"`
}

func (e OrderCancelled) EventType() string { return "OrderCancelled" }
