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
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this title already exists")
)

// CategoryRepository defines the interface for category data access.
// Categories are addressed by title everywhere except the primary key;
// titles are matched exactly, case-sensitive.
type CategoryRepository interface {
	Create(ctx context.Context, title, description string) (*domain.Category, error)
	FindByTitle(ctx context.Context, title string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	Update(ctx context.Context, title string, patch domain.CategoryPatch) (*domain.Category, error)
	Delete(ctx context.Context, title string) error
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// isUniqueTitleViolation reports whether err is the unique constraint
// violation on categories.title (SQLSTATE 23505)
func isUniqueTitleViolation(err error) bool {
	return err != nil &&
		strings.Contains(err.Error(), "23505") &&
		strings.Contains(err.Error(), "categories_title_key")
}

// Create inserts a new category, failing if the title is already taken.
// The pre-check gives a clean error in the common case; the unique
// constraint closes the race between concurrent creators.
func (r *categoryRepository) Create(ctx context.Context, title, description string) (*domain.Category, error) {
	now := time.Now()
	category := &domain.Category{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := category.Validate(); err != nil {
		return nil, err
	}

	existing, err := r.FindByTitle(ctx, title)
	if err != nil && err != ErrCategoryNotFound {
		return nil, fmt.Errorf("failed to check existing category: %w", err)
	}
	if existing != nil {
		return nil, ErrCategoryAlreadyExists
	}

	query := `
		INSERT INTO categories (id, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		category.ID,
		category.Title,
		category.Description,
		category.CreatedAt,
		category.UpdatedAt,
	)

	if err != nil {
		if isUniqueTitleViolation(err) {
			return nil, ErrCategoryAlreadyExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

// FindByTitle retrieves a category by exact title match
func (r *categoryRepository) FindByTitle(ctx context.Context, title string) (*domain.Category, error) {
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
		return nil, fmt.Errorf("failed to find category by title: %w", err)
	}

	return category, nil
}

// List retrieves all categories ordered by title
func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query := `
		SELECT id, title, description, created_at, updated_at
		FROM categories
		ORDER BY title ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category := &domain.Category{}
		err := rows.Scan(
			&category.ID,
			&category.Title,
			&category.Description,
			&category.CreatedAt,
			&category.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// Update applies the supplied patch fields to the category addressed by
// title. A new title colliding with a different category fails with
// ErrCategoryAlreadyExists. updated_at is always refreshed.
func (r *categoryRepository) Update(ctx context.Context, title string, patch domain.CategoryPatch) (*domain.Category, error) {
	category, err := r.FindByTitle(ctx, title)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil && *patch.Title != category.Title {
		existing, err := r.FindByTitle(ctx, *patch.Title)
		if err != nil && err != ErrCategoryNotFound {
			return nil, fmt.Errorf("failed to check new title: %w", err)
		}
		if existing != nil {
			return nil, ErrCategoryAlreadyExists
		}
		category.Title = *patch.Title
	}
	if patch.Description != nil {
		category.Description = *patch.Description
	}
	category.UpdatedAt = time.Now()

	if err := category.Validate(); err != nil {
		return nil, err
	}

	query := `
		UPDATE categories
		SET title = $2, description = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		category.ID,
		category.Title,
		category.Description,
		category.UpdatedAt,
	)

	if err != nil {
		if isUniqueTitleViolation(err) {
			return nil, ErrCategoryAlreadyExists
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrCategoryNotFound
	}

	return category, nil
}

// Delete removes the category addressed by title. The foreign key on
// products.category_id is declared ON DELETE CASCADE, so referencing
// products are removed in the same statement.
func (r *categoryRepository) Delete(ctx context.Context, title string) error {
	query := `DELETE FROM categories WHERE title = $1`

	result, err := r.db.ExecContext(ctx, query, title)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
