package entity

import (
	"errors"
	"fmt"
)

// ErrEmptyCart is returned by checkout when the cart has no lines.
var ErrEmptyCart = errors.New("cart is empty")

// ErrInvalidCredentials is returned on login failure. It is deliberately
// identical for unknown email and wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrEmailTaken is returned when registering an already-used email.
var ErrEmailTaken = errors.New("email is already registered")

// NotFoundError signals a missing entity or an ownership miss.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// InsufficientStockError names the offending product and the shortfall.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient stock for product %s (requested %d, available %d)",
		name, e.Requested, e.Available)
}

// InvalidTransitionError names the rejected status change.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// BadRequestError is a generic business precondition failure.
type BadRequestError struct {
	Reason string
}

func (e *BadRequestError) Error() string {
	return e.Reason
}
