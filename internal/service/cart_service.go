package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/egannguyen/go-ecommerce-backend/internal/entity"
	"github.com/egannguyen/go-ecommerce-backend/internal/repository"
)

// CartService orchestrates shopping cart mutations. Stock checks here are
// advisory: they reject obviously invalid additions but reserve nothing.
// Inventory is only committed at checkout.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
	}
}

// GetOrCreateCart returns the user's cart view, creating an empty cart on
// first access.
func (s *CartService) GetOrCreateCart(ctx context.Context, userID string) (*entity.CartView, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// AddToCart adds quantity of a product to the user's cart, merging into an
// existing line if one exists. The stock check always uses the prospective
// total line quantity, not just the delta.
func (s *CartService) AddToCart(ctx context.Context, userID, productID string, quantity int) (*entity.CartView, error) {
	if quantity <= 0 {
		return nil, &entity.BadRequestError{Reason: "quantity must be positive"}
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.carts.FindItemByProduct(ctx, cart.ID, productID)
	var notFound *entity.NotFoundError
	switch {
	case err == nil:
		newQuantity := existing.Quantity + quantity
		if product.Stock < newQuantity {
			return nil, &entity.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   newQuantity,
				Available:   product.Stock,
			}
		}
		if err := s.carts.UpdateItemQuantity(ctx, existing.ID, newQuantity); err != nil {
			return nil, err
		}
	case errors.As(err, &notFound):
		if product.Stock < quantity {
			return nil, &entity.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   quantity,
				Available:   product.Stock,
			}
		}
		item := &entity.CartItem{
			ID:        uuid.New().String(),
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
		}
		if err := s.carts.InsertItem(ctx, item); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	slog.Info("Service: Added item to cart", "user_id", userID, "product_id", productID, "quantity", quantity)
	return s.view(ctx, cart)
}

// UpdateCartItem replaces a line's quantity. The quantity is absolute, not
// additive.
func (s *CartService) UpdateCartItem(ctx context.Context, userID, itemID string, quantity int) (*entity.CartView, error) {
	if quantity <= 0 {
		return nil, &entity.BadRequestError{Reason: "quantity must be positive"}
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Scoping the lookup by the user's cart enforces ownership.
	item, err := s.carts.FindItem(ctx, cart.ID, itemID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, &entity.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Stock,
		}
	}

	if err := s.carts.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// RemoveFromCart deletes a line from the user's cart.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, itemID string) (*entity.CartView, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.carts.FindItem(ctx, cart.ID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.carts.DeleteItem(ctx, item.ID); err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// ClearCart removes every line from the user's cart. Clearing an empty cart
// is a no-op, never an error.
func (s *CartService) ClearCart(ctx context.Context, userID string) (*entity.CartView, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.carts.DeleteItems(ctx, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}
	return s.view(ctx, cart)
}

// view recomputes the cart view from storage, never from a stale cache.
func (s *CartService) view(ctx context.Context, cart *entity.Cart) (*entity.CartView, error) {
	items, err := s.carts.FindItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	return entity.NewCartView(cart, items), nil
}
