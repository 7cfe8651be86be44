// Package services содержит бизнес-логику каталога товаров,
// включая кеширование карточек товара.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// ProductRepository определяет методы для работы с товарами в хранилище.
type ProductRepository interface {
	// CreateProduct добавляет новый товар и возвращает его ID.
	CreateProduct(ctx context.Context, product models.Product) (int, error)
	// ReadProduct возвращает товар по ID.
	ReadProduct(ctx context.Context, id int) (*models.Product, error)
	// ListProductsByOwner возвращает товары магазина с пагинацией.
	ListProductsByOwner(ctx context.Context, ownerUID string, limit, offset int) ([]*models.Product, error)
	// ListAllProducts возвращает список всех товаров с пагинацией.
	ListAllProducts(ctx context.Context, limit, offset int) ([]*models.Product, error)
	// UpdateProduct обновляет товар владельца и возвращает число изменённых строк.
	UpdateProduct(ctx context.Context, product models.Product, id int, ownerUID string) (int, error)
	// RemoveProduct удаляет товар владельца и возвращает число удалённых строк.
	RemoveProduct(ctx context.Context, id int, ownerUID string) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// ProductService реализует бизнес-логику каталога, включая кеширование карточек.
type ProductService struct {
	repo  ProductRepository
	cache Cache
	log   *slog.Logger
}

// NewProductService создает новый экземпляр ProductService.
func NewProductService(repo ProductRepository, cache Cache, log *slog.Logger) *ProductService {
	return &ProductService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create создает новый товар магазина, кеширует его и возвращает ID.
func (s *ProductService) Create(ctx context.Context, ownerUID string, req models.DummyProduct) (int, error) {
	product := models.Product{
		OwnerUID:    ownerUID,
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
	}

	id, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return 0, err
	}
	product.ID = id

	s.log.Info("created new product", slog.Int("id", id))

	cacheKey := fmt.Sprintf("product:%d", id)
	if err := s.cache.Set(cacheKey, product, time.Hour); err != nil {
		s.log.Warn("failed to cache product", slog.String("key", cacheKey), slog.Any("err", err))
	}

	return id, nil
}

// Read возвращает товар по ID, используя кеш или репозиторий.
func (s *ProductService) Read(ctx context.Context, id int) (*models.Product, error) {
	var result *models.Product
	cacheKey := fmt.Sprintf("product:%d", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}

	result, err = s.repo.ReadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache product", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}

// List возвращает товары магазина с пагинацией.
func (s *ProductService) List(ctx context.Context, ownerUID string, limit, offset int) ([]*models.Product, error) {
	return s.repo.ListProductsByOwner(ctx, ownerUID, limit, offset)
}

// ListAll возвращает каталог с пагинацией.
func (s *ProductService) ListAll(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	return s.repo.ListAllProducts(ctx, limit, offset)
}

// Update обновляет товар владельца, инвалидирует кеш и возвращает
// число изменённых строк.
func (s *ProductService) Update(ctx context.Context, ownerUID string, id int, req models.DummyProduct) (int, error) {
	product := models.Product{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
	}

	count, err := s.repo.UpdateProduct(ctx, product, id, ownerUID)
	if err != nil {
		return 0, err
	}

	cacheKey := fmt.Sprintf("product:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate product cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return count, nil
}

// Remove удаляет товар владельца и инвалидирует кеш.
func (s *ProductService) Remove(ctx context.Context, ownerUID string, id int) (int, error) {
	cacheKey := fmt.Sprintf("product:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate product cache", slog.String("key", cacheKey), slog.Any("err", err))
	}

	return s.repo.RemoveProduct(ctx, id, ownerUID)
}
