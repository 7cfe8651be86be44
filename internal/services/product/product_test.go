package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/marketplace-backend/internal/models"
	services "github.com/magabrotheeeer/marketplace-backend/internal/services/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ProductRepoMock struct {
	mock.Mock
}

func (m *ProductRepoMock) CreateProduct(ctx context.Context, product models.Product) (int, error) {
	args := m.Called(ctx, product)
	return args.Int(0), args.Error(1)
}

func (m *ProductRepoMock) ReadProduct(ctx context.Context, id int) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *ProductRepoMock) ListProductsByOwner(ctx context.Context, ownerUID string, limit, offset int) ([]*models.Product, error) {
	args := m.Called(ctx, ownerUID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *ProductRepoMock) ListAllProducts(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *ProductRepoMock) UpdateProduct(ctx context.Context, product models.Product, id int, ownerUID string) (int, error) {
	args := m.Called(ctx, product, id, ownerUID)
	return args.Int(0), args.Error(1)
}

func (m *ProductRepoMock) RemoveProduct(ctx context.Context, id int, ownerUID string) (int, error) {
	args := m.Called(ctx, id, ownerUID)
	return args.Int(0), args.Error(1)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProductService_Create(t *testing.T) {
	repo := new(ProductRepoMock)
	cache := new(CacheMock)
	repo.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p models.Product) bool {
		return p.OwnerUID == "uid-1" && p.Name == "Widget" && p.Price == 100
	})).Return(5, nil).Once()
	cache.On("Set", "product:5", mock.Anything, time.Hour).Return(nil).Once()

	svc := services.NewProductService(repo, cache, testLogger())
	id, err := svc.Create(context.Background(), "uid-1", models.DummyProduct{Name: "Widget", Price: 100})
	require.NoError(t, err)
	assert.Equal(t, 5, id)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestProductService_Read(t *testing.T) {
	t.Run("cache miss falls back to repository", func(t *testing.T) {
		repo := new(ProductRepoMock)
		cache := new(CacheMock)
		product := &models.Product{ID: 5, Name: "Widget"}
		cache.On("Get", "product:5", mock.Anything).Return(false, nil).Once()
		repo.On("ReadProduct", mock.Anything, 5).Return(product, nil).Once()
		cache.On("Set", "product:5", product, time.Hour).Return(nil).Once()

		svc := services.NewProductService(repo, cache, testLogger())
		got, err := svc.Read(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, "Widget", got.Name)
		repo.AssertExpectations(t)
	})

	t.Run("cache hit skips repository", func(t *testing.T) {
		repo := new(ProductRepoMock)
		cache := new(CacheMock)
		cache.On("Get", "product:5", mock.Anything).Return(true, nil).Once()

		svc := services.NewProductService(repo, cache, testLogger())
		_, err := svc.Read(context.Background(), 5)
		require.NoError(t, err)
		repo.AssertNotCalled(t, "ReadProduct", mock.Anything, mock.Anything)
	})
}

func TestProductService_Update(t *testing.T) {
	repo := new(ProductRepoMock)
	cache := new(CacheMock)
	repo.On("UpdateProduct", mock.Anything, mock.Anything, 5, "uid-1").Return(1, nil).Once()
	cache.On("Invalidate", "product:5").Return(nil).Once()

	svc := services.NewProductService(repo, cache, testLogger())
	count, err := svc.Update(context.Background(), "uid-1", 5, models.DummyProduct{Name: "Widget v2", Price: 150})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	cache.AssertExpectations(t)
}

func TestProductService_Remove(t *testing.T) {
	repo := new(ProductRepoMock)
	cache := new(CacheMock)
	cache.On("Invalidate", "product:5").Return(nil).Once()
	repo.On("RemoveProduct", mock.Anything, 5, "uid-1").Return(1, nil).Once()

	svc := services.NewProductService(repo, cache, testLogger())
	count, err := svc.Remove(context.Background(), "uid-1", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	repo.AssertExpectations(t)
}
