package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"catalog-api/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidReference = errors.New("invalid product or category")
)

// ProductRepository defines the interface for product data access.
// Category references are addressed by title at this boundary and
// resolved to ids before any write.
type ProductRepository interface {
	Create(ctx context.Context, name, description, categoryTitle string, price float64, brand string, quantity int) (*domain.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Product, int, error)
	ListByCategory(ctx context.Context, categoryTitle string) ([]*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddToCategory(ctx context.Context, productID uuid.UUID, categoryTitle string) (*domain.Product, error)
	RemoveFromCategory(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// isCategoryFKViolation reports whether err is the foreign key violation
// on products.category_id (SQLSTATE 23503), i.e. the referenced category
// disappeared between the resolve and the write.
func isCategoryFKViolation(err error) bool {
	return err != nil &&
		strings.Contains(err.Error(), "23503") &&
		strings.Contains(err.Error(), "fk_products_category")
}

// productColumns is the SELECT list shared by every product read. The
// LEFT JOIN keeps products without a category visible; their title
// renders as the empty string.
const productColumns = `
	p.id, p.name, p.description, p.category_id, COALESCE(c.title, ''),
	p.price, p.brand, p.quantity, p.created_at, p.updated_at
`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.CategoryID,
		&product.CategoryTitle,
		&product.Price,
		&product.Brand,
		&product.Quantity,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Create resolves the category title and inserts a new product. Fails
// with ErrCategoryNotFound if the title does not resolve; nothing is
// persisted on any validation failure.
func (r *productRepository) Create(ctx context.Context, name, description, categoryTitle string, price float64, brand string, quantity int) (*domain.Product, error) {
	category, err := r.findCategoryByTitle(ctx, categoryTitle)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		ID:            uuid.New(),
		Name:          name,
		Description:   description,
		CategoryID:    &category.ID,
		CategoryTitle: category.Title,
		Price:         price,
		Brand:         brand,
		Quantity:      quantity,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO products (id, name, description, category_id, price, brand, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.CategoryID,
		product.Price,
		product.Brand,
		product.Quantity,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		if isCategoryFKViolation(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// FindByID retrieves a product by ID with its category title resolved
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves a page of products plus the total count
func (r *productRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Product, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		ORDER BY p.created_at DESC, p.id
		LIMIT $1 OFFSET $2
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

// ListByCategory retrieves all products in the category addressed by
// title, failing with ErrCategoryNotFound if the title does not resolve
func (r *productRepository) ListByCategory(ctx context.Context, categoryTitle string) ([]*domain.Product, error) {
	category, err := r.findCategoryByTitle(ctx, categoryTitle)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.category_id = $1
		ORDER BY p.created_at DESC, p.id
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, query, category.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by category: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Update applies only the supplied patch fields to the product, leaving
// it unmodified on any failure. A supplied category title that does not
// resolve fails with ErrCategoryNotFound; invariants are revalidated
// after the patch and updated_at is always refreshed.
func (r *productRepository) Update(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error) {
	product, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// An empty patch is a no-op: the stored row, updated_at included,
	// stays untouched
	if patch.IsEmpty() {
		return product, nil
	}

	if patch.CategoryTitle != nil {
		category, err := r.findCategoryByTitle(ctx, *patch.CategoryTitle)
		if err != nil {
			return nil, err
		}
		product.CategoryID = &category.ID
		product.CategoryTitle = category.Title
	}

	patch.Apply(product)
	product.UpdatedAt = time.Now()

	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := r.save(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Delete removes a product by ID
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// AddToCategory reassigns a product to the category addressed by title.
// Either side failing to resolve fails with ErrInvalidReference and
// leaves the product unchanged.
func (r *productRepository) AddToCategory(ctx context.Context, productID uuid.UUID, categoryTitle string) (*domain.Product, error) {
	product, err := r.FindByID(ctx, productID)
	if err != nil {
		if err == ErrProductNotFound {
			return nil, ErrInvalidReference
		}
		return nil, err
	}

	category, err := r.findCategoryByTitle(ctx, categoryTitle)
	if err != nil {
		if err == ErrCategoryNotFound {
			return nil, ErrInvalidReference
		}
		return nil, err
	}

	product.CategoryID = &category.ID
	product.CategoryTitle = category.Title
	product.UpdatedAt = time.Now()

	if err := r.save(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// RemoveFromCategory clears the product's category reference
func (r *productRepository) RemoveFromCategory(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	product, err := r.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	product.CategoryID = nil
	product.CategoryTitle = ""
	product.UpdatedAt = time.Now()

	if err := r.save(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// save writes the full product row back using parameterized queries
func (r *productRepository) save(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, category_id = $4,
		    price = $5, brand = $6, quantity = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.CategoryID,
		product.Price,
		product.Brand,
		product.Quantity,
		product.UpdatedAt,
	)

	if err != nil {
		if isCategoryFKViolation(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// findCategoryByTitle resolves a category reference for product writes
func (r *productRepository) findCategoryByTitle(ctx context.Context, title string) (*domain.Category, error) {
	query := `
		SELECT id, title, description, created_at, updated_at
		FROM categories
		WHERE title = $1
	`

	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, title).Scan(
		&category.ID,
		&category.Title,
		&category.Description,
		&category.CreatedAt,
		&category.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}

	return category, nil
}
