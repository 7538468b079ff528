package service

import (
	"context"

	"catalog-api/internal/domain"
	"catalog-api/internal/repository"

	"github.com/google/uuid"
)

// ProductService defines the interface for product business logic
type ProductService interface {
	CreateProduct(ctx context.Context, name, description, categoryTitle string, price float64, brand string, quantity int) (*domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context, page, pageSize int) ([]*domain.Product, int, error)
	GetProductsByCategory(ctx context.Context, categoryTitle string) ([]*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) CreateProduct(ctx context.Context, name, description, categoryTitle string, price float64, brand string, quantity int) (*domain.Product, error) {
	return s.productRepo.Create(ctx, name, description, categoryTitle, price, brand, quantity)
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *productService) ListProducts(ctx context.Context, page, pageSize int) ([]*domain.Product, int, error) {
	return s.productRepo.List(ctx, page, pageSize)
}

func (s *productService) GetProductsByCategory(ctx context.Context, categoryTitle string) ([]*domain.Product, error) {
	return s.productRepo.ListByCategory(ctx, categoryTitle)
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error) {
	return s.productRepo.Update(ctx, id, patch)
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}
