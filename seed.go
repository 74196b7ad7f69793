package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/egannguyen/go-ecommerce-backend/internal/entity"
	"github.com/egannguyen/go-ecommerce-backend/internal/repository"
)

// seedData inserts the demo accounts and a starter catalog. Safe to run on
// every boot.
func seedData(
	ctx context.Context,
	users repository.UserRepository,
	categories repository.CategoryRepository,
	products repository.ProductRepository,
) error {
	if err := seedUser(ctx, users, "admin@ecommerce.com", "admin123", "Admin", entity.RoleAdmin); err != nil {
		return err
	}
	if err := seedUser(ctx, users, "customer@ecommerce.com", "customer123", "Customer", entity.RoleCustomer); err != nil {
		return err
	}

	existing, err := products.FindAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	category := &entity.Category{
		ID:          uuid.New().String(),
		Name:        "Electronics",
		Description: "Gadgets and devices",
	}
	if err := categories.Create(ctx, category); err != nil {
		return fmt.Errorf("failed to seed category: %w", err)
	}

	starter := []entity.Product{
		{Name: "Wireless Headphones", Description: "Noise-cancelling over-ear headphones", Price: decimal.NewFromFloat(129.99), Stock: 25},
		{Name: "Mechanical Keyboard", Description: "Tenkeyless, hot-swappable switches", Price: decimal.NewFromFloat(89.50), Stock: 40},
		{Name: "USB-C Hub", Description: "7-in-1 hub with HDMI and PD", Price: decimal.NewFromFloat(34.00), Stock: 60},
	}
	for i := range starter {
		starter[i].ID = uuid.New().String()
		starter[i].CategoryID = category.ID
		if err := products.Create(ctx, &starter[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", starter[i].Name, err)
		}
	}

	slog.Info("Seeded starter catalog", "products", len(starter))
	return nil
}

func seedUser(ctx context.Context, users repository.UserRepository, email, password, firstName string, role entity.Role) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	err = users.Create(ctx, &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     "User",
		Role:         role,
	})
	if errors.Is(err, entity.ErrEmailTaken) {
		return nil
	}
	return err
}
