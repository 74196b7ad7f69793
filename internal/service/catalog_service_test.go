package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/go-ecommerce-backend/internal/entity"
)

// memoryCache is a test double for the redis-backed product cache.
type memoryCache struct {
	products    []entity.Product
	warm        bool
	hits        int
	invalidated int
}

func (c *memoryCache) GetProducts(ctx context.Context) ([]entity.Product, bool) {
	if !c.warm {
		return nil, false
	}
	c.hits++
	return c.products, true
}

func (c *memoryCache) SetProducts(ctx context.Context, products []entity.Product) {
	c.products = products
	c.warm = true
}

func (c *memoryCache) Invalidate(ctx context.Context) {
	c.warm = false
	c.invalidated++
}

func newCatalogFixture() (*fakeStore, *memoryCache, *CatalogService) {
	store := newFakeStore()
	cache := &memoryCache{}
	svc := NewCatalogService(&fakeProductRepo{store: store}, &fakeCategoryRepo{store: store}, cache)
	return store, cache, svc
}

func electronicsInput(store *fakeStore) ProductInput {
	store.categories["cat-1"] = &entity.Category{ID: "cat-1", Name: "Electronics"}
	return ProductInput{
		Name:       "Webcam",
		Price:      decimal.RequireFromString("49.90"),
		Stock:      12,
		CategoryID: "cat-1",
	}
}

func TestCreateProduct(t *testing.T) {
	store, cache, svc := newCatalogFixture()

	product, err := svc.CreateProduct(context.Background(), electronicsInput(store))
	require.NoError(t, err)
	assert.Equal(t, "Webcam", product.Name)
	assert.Equal(t, 12, product.Stock)
	require.NotNil(t, product.Category)
	assert.Equal(t, "Electronics", product.Category.Name)
	assert.Equal(t, 1, cache.invalidated, "catalog writes must invalidate the cache")
}

func TestCreateProduct_UnknownCategory(t *testing.T) {
	_, _, svc := newCatalogFixture()

	_, err := svc.CreateProduct(context.Background(), ProductInput{
		Name:       "Webcam",
		Price:      decimal.RequireFromString("49.90"),
		CategoryID: "missing",
	})
	var notFound *entity.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestCreateProduct_RejectsBadInput(t *testing.T) {
	store, _, svc := newCatalogFixture()

	for name, input := range map[string]ProductInput{
		"missing name":   {Price: decimal.New(1, 0), CategoryID: "cat-1"},
		"negative price": {Name: "X", Price: decimal.RequireFromString("-1"), CategoryID: "cat-1"},
		"negative stock": {Name: "X", Price: decimal.New(1, 0), Stock: -1, CategoryID: "cat-1"},
		"no category":    {Name: "X", Price: decimal.New(1, 0)},
	} {
		t.Run(name, func(t *testing.T) {
			store.categories["cat-1"] = &entity.Category{ID: "cat-1", Name: "Electronics"}
			_, err := svc.CreateProduct(context.Background(), input)
			var badReq *entity.BadRequestError
			require.ErrorAs(t, err, &badReq)
		})
	}
}

func TestListProducts_UsesCache(t *testing.T) {
	store, cache, svc := newCatalogFixture()

	_, err := svc.CreateProduct(context.Background(), electronicsInput(store))
	require.NoError(t, err)

	first, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 0, cache.hits, "first read is a miss")

	second, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, cache.hits, "second read is served from cache")
}

func TestUpdateProduct_ChecksNewCategory(t *testing.T) {
	store, _, svc := newCatalogFixture()

	product, err := svc.CreateProduct(context.Background(), electronicsInput(store))
	require.NoError(t, err)

	input := electronicsInput(store)
	input.CategoryID = "missing"
	_, err = svc.UpdateProduct(context.Background(), product.ID, input)
	var notFound *entity.NotFoundError
	require.ErrorAs(t, err, &notFound)

	input.CategoryID = "cat-1"
	input.Stock = 99
	updated, err := svc.UpdateProduct(context.Background(), product.ID, input)
	require.NoError(t, err)
	assert.Equal(t, 99, updated.Stock)
}

func TestDeleteProduct(t *testing.T) {
	store, cache, svc := newCatalogFixture()

	product, err := svc.CreateProduct(context.Background(), electronicsInput(store))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(context.Background(), product.ID))
	assert.Equal(t, 2, cache.invalidated)

	err = svc.DeleteProduct(context.Background(), product.ID)
	var notFound *entity.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
