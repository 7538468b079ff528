package service

import (
	"context"

	"catalog-api/internal/domain"
	"catalog-api/internal/repository"

	"github.com/google/uuid"
)

// CategoryService defines the interface for category business logic.
// Each method forwards to the repository; the layer exists so the HTTP
// transport never depends on the store directly and future cross-store
// orchestration has a home.
type CategoryService interface {
	CreateCategory(ctx context.Context, title, description string) (*domain.Category, error)
	GetCategory(ctx context.Context, title string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetProductsByCategory(ctx context.Context, title string) ([]*domain.Product, error)
	AddProductToCategory(ctx context.Context, productID uuid.UUID, categoryTitle string) (*domain.Product, error)
	RemoveProductFromCategory(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	UpdateCategory(ctx context.Context, title string, patch domain.CategoryPatch) (*domain.Category, error)
	DeleteCategory(ctx context.Context, title string) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, title, description string) (*domain.Category, error) {
	return s.categoryRepo.Create(ctx, title, description)
}

func (s *categoryService) GetCategory(ctx context.Context, title string) (*domain.Category, error) {
	return s.categoryRepo.FindByTitle(ctx, title)
}

func (s *categoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *categoryService) GetProductsByCategory(ctx context.Context, title string) ([]*domain.Product, error) {
	return s.productRepo.ListByCategory(ctx, title)
}

func (s *categoryService) AddProductToCategory(ctx context.Context, productID uuid.UUID, categoryTitle string) (*domain.Product, error) {
	return s.productRepo.AddToCategory(ctx, productID, categoryTitle)
}

func (s *categoryService) RemoveProductFromCategory(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	return s.productRepo.RemoveFromCategory(ctx, productID)
}

func (s *categoryService) UpdateCategory(ctx context.Context, title string, patch domain.CategoryPatch) (*domain.Category, error) {
	return s.categoryRepo.Update(ctx, title, patch)
}

func (s *categoryService) DeleteCategory(ctx context.Context, title string) error {
	return s.categoryRepo.Delete(ctx, title)
}
