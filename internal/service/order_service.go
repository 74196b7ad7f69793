package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/egannguyen/go-ecommerce-backend/internal/entity"
	"github.com/egannguyen/go-ecommerce-backend/internal/messaging"
	"github.com/egannguyen/go-ecommerce-backend/internal/repository"
)

// Kafka topics for order lifecycle events.
const (
	TopicOrdersPlaced        = "orders.placed"
	TopicOrdersStatusChanged = "orders.status_changed"
	TopicOrdersCancelled     = "orders.cancelled"
)

// CreateOrderInput carries the optional checkout fields.
type CreateOrderInput struct {
	ShippingAddress string
	BillingAddress  string
	Notes           string
}

// OrderService orchestrates checkout, order queries and the status
// lifecycle. Every multi-step mutation runs inside a single transaction via
// the Transactor; events are published only after commit.
type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	carts     repository.CartRepository
	tx        repository.Transactor
	publisher messaging.Publisher
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	carts repository.CartRepository,
	tx repository.Transactor,
	publisher messaging.Publisher,
) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		carts:     carts,
		tx:        tx,
		publisher: publisher,
	}
}

// CreateOrder converts the user's cart into an order: it snapshots every
// line at the product's current price, decrements stock, and empties the
// cart, all atomically. If any stock decrement fails the whole checkout
// rolls back and the cart is left untouched.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, input CreateOrderInput) (*entity.Order, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.carts.FindItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, entity.ErrEmptyCart
	}

	// Fast user-facing rejection before opening a transaction. The cart's
	// own checks are stale by design; the decrement below is the real guard.
	for _, item := range items {
		if item.Product.Stock < item.Quantity {
			return nil, &entity.InsufficientStockError{
				ProductID:   item.ProductID,
				ProductName: item.Product.Name,
				Requested:   item.Quantity,
				Available:   item.Product.Stock,
			}
		}
	}

	view := entity.NewCartView(cart, items)
	order := &entity.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Status:          entity.StatusPending,
		Total:           view.TotalPrice,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  input.BillingAddress,
		Notes:           input.Notes,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.orders.Insert(ctx, order); err != nil {
			return err
		}
		for _, item := range items {
			line := &entity.OrderItem{
				ID:        uuid.New().String(),
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Product.Price,
			}
			if err := s.orders.InsertItem(ctx, line); err != nil {
				return err
			}
			// Conditional decrement; fails if stock changed since the check
			// above, rolling back the whole checkout.
			if err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return s.carts.DeleteItems(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	placed, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("Service: Order placed", "order_id", placed.ID, "user_id", userID, "total", placed.Total)
	s.publish(ctx, TopicOrdersPlaced, placed.ID, entity.OrderPlaced{
		OrderID:  placed.ID,
		UserID:   userID,
		Items:    orderLines(placed.Items),
		Total:    placed.Total,
		PlacedAt: placed.CreatedAt,
	})
	return placed, nil
}

// GetUserOrders returns the user's orders, newest first.
func (s *OrderService) GetUserOrders(ctx context.Context, userID string) ([]entity.Order, error) {
	return s.orders.FindByUserID(ctx, userID)
}

// GetOrderByID returns one of the user's orders; an order belonging to
// someone else reads as not found.
func (s *OrderService) GetOrderByID(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	return s.orders.FindByIDForUser(ctx, userID, orderID)
}

// GetAllOrders returns every order with user summaries. Privileged.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]entity.Order, error) {
	return s.orders.FindAll(ctx)
}

// UpdateOrderStatus applies a privileged status change after validating it
// against the transition table.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID string, next entity.OrderStatus) (*entity.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, &entity.InvalidTransitionError{From: order.Status, To: next}
	}

	if err := s.orders.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, err
	}

	updated, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	slog.Info("Service: Order status updated", "order_id", orderID, "from", order.Status, "to", next)
	s.publish(ctx, TopicOrdersStatusChanged, orderID, entity.OrderStatusChanged{
		OrderID:   orderID,
		From:      order.Status,
		To:        next,
		ChangedAt: updated.UpdatedAt,
	})
	return updated, nil
}

// CancelOrder is the customer-facing cancellation. Unlike the privileged
// transition table it only accepts orders still in PENDING. The status write
// and every stock restoration commit together or not at all.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	order, err := s.orders.FindByIDForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.StatusPending {
		return nil, &entity.BadRequestError{Reason: "only pending orders can be cancelled"}
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.orders.UpdateStatus(ctx, orderID, entity.StatusCancelled); err != nil {
			return err
		}
		// Exact inverse of the checkout decrement.
		for _, item := range order.Items {
			if err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cancelled, err := s.orders.FindByIDForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	slog.Info("Service: Order cancelled", "order_id", orderID, "user_id", userID)
	s.publish(ctx, TopicOrdersCancelled, orderID, entity.OrderCancelled{
		OrderID:     orderID,
		UserID:      userID,
		Restocked:   orderLines(cancelled.Items),
		CancelledAt: time.Now(),
	})
	return cancelled, nil
}

// publish sends a post-commit event. Publish failures are logged, never
// surfaced: the transaction is already durable.
func (s *OrderService) publish(ctx context.Context, topic, key string, event entity.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, topic, key, event); err != nil {
		slog.Error("Failed to publish event", "topic", topic, "type", event.EventType(), "err", err)
	}
}

func orderLines(items []entity.OrderItem) []entity.OrderLine {
	lines := make([]entity.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, entity.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return lines
}
