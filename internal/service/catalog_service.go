package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/egannguyen/go-ecommerce-backend/internal/entity"
	"github.com/egannguyen/go-ecommerce-backend/internal/repository"
)

// ProductCache is a read-side cache for the product listing. A nil cache is
// valid and simply disables caching.
type ProductCache interface {
	GetProducts(ctx context.Context) ([]entity.Product, bool)
	SetProducts(ctx context.Context, products []entity.Product)
	Invalidate(ctx context.Context)
}

// ProductInput carries the writable product fields.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Stock       int
	CategoryID  string
}

// CatalogService manages products and categories. Stock is only ever set
// here on create/update by an admin; order flow goes through the
// decrement/increment ledger operations instead.
type CatalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	cache      ProductCache
}

func NewCatalogService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	cache ProductCache,
) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		cache:      cache,
	}
}

// ListProducts returns the catalog, served from cache when warm.
func (s *CatalogService) ListProducts(ctx context.Context) ([]entity.Product, error) {
	if s.cache != nil {
		if products, ok := s.cache.GetProducts(ctx); ok {
			return products, nil
		}
	}

	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetProducts(ctx, products)
	}
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, input ProductInput) (*entity.Product, error) {
	if err := s.validateProductInput(input); err != nil {
		return nil, err
	}
	if _, err := s.categories.FindByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product := &entity.Product{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		Stock:       input.Stock,
		CategoryID:  input.CategoryID,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	slog.Info("Service: Product created", "product_id", product.ID, "name", product.Name)
	return s.products.FindByID(ctx, product.ID)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, input ProductInput) (*entity.Product, error) {
	if err := s.validateProductInput(input); err != nil {
		return nil, err
	}

	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.CategoryID != existing.CategoryID {
		if _, err := s.categories.FindByID(ctx, input.CategoryID); err != nil {
			return nil, err
		}
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.Price = input.Price
	existing.ImageURL = input.ImageURL
	existing.Stock = input.Stock
	existing.CategoryID = input.CategoryID

	if err := s.products.Update(ctx, existing); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.products.FindByID(ctx, id)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	slog.Info("Service: Product deleted", "product_id", id)
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	return s.categories.FindAll(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*entity.Category, error) {
	return s.categories.FindByID(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name, description string) (*entity.Category, error) {
	if name == "" {
		return nil, &entity.BadRequestError{Reason: "category name is required"}
	}
	category := &entity.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) validateProductInput(input ProductInput) error {
	switch {
	case input.Name == "":
		return &entity.BadRequestError{Reason: "product name is required"}
	case input.Price.IsNegative():
		return &entity.BadRequestError{Reason: "product price must not be negative"}
	case input.Stock < 0:
		return &entity.BadRequestError{Reason: "product stock must not be negative"}
	case input.CategoryID == "":
		return &entity.BadRequestError{Reason: "category id is required"}
	}
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
