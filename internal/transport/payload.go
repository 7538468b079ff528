package transport

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"catalog-api/internal/domain"
	"catalog-api/internal/repository"
)

// CategoryRefs is the inbound shape of a product's category field.
// Clients send either a single title string or a list of titles; both
// decode to a list. All referenced titles must resolve, and every
// unresolved title is reported together in one validation error.
type CategoryRefs []string

func (c *CategoryRefs) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*c = CategoryRefs{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*c = CategoryRefs(many)
	return nil
}

// categoryResolver is the slice of the category service needed to check
// inbound references
type categoryResolver interface {
	GetCategory(ctx context.Context, title string) (*domain.Category, error)
}

// resolveCategoryRefs validates that every referenced title resolves to
// an existing category, collecting all unresolved titles instead of
// failing on the first. Returns the title the product is assigned to
// (the first reference; the domain model holds exactly one category).
func resolveCategoryRefs(ctx context.Context, resolver categoryResolver, refs CategoryRefs) (string, error) {
	if len(refs) == 0 {
		return "", domain.FieldErrors{"category": "Category is required."}
	}

	unresolved := []string{}
	for _, title := range refs {
		_, err := resolver.GetCategory(ctx, title)
		if err == repository.ErrCategoryNotFound {
			unresolved = append(unresolved, title)
			continue
		}
		if err != nil {
			return "", err
		}
	}

	if len(unresolved) > 0 {
		return "", domain.FieldErrors{
			"category": "Some categories are invalid: " + strings.Join(unresolved, ", "),
		}
	}

	return refs[0], nil
}

// CreateProductRequest represents the product creation payload. The
// category may arrive as `category_title` (single title) or `category`
// (title string or list of titles); `category_title` wins when both are
// present.
type CreateProductRequest struct {
	Name          string       `json:"name" validate:"required"`
	Description   string       `json:"description"`
	CategoryTitle string       `json:"category_title"`
	Category      CategoryRefs `json:"category"`
	Price         *float64     `json:"price" validate:"required,gte=0"`
	Brand         string       `json:"brand" validate:"required"`
	Quantity      int          `json:"quantity" validate:"gte=0"`
}

// categoryRefs normalizes the two accepted category field shapes
func (req *CreateProductRequest) categoryRefs() CategoryRefs {
	if req.CategoryTitle != "" {
		return CategoryRefs{req.CategoryTitle}
	}
	return req.Category
}

// UpdateProductRequest represents a partial product update. Absent
// fields are nil and leave the stored value untouched.
type UpdateProductRequest struct {
	Name          *string      `json:"name"`
	Description   *string      `json:"description"`
	CategoryTitle *string      `json:"category_title"`
	Category      CategoryRefs `json:"category"`
	Price         *float64     `json:"price"`
	Brand         *string      `json:"brand"`
	Quantity      *int         `json:"quantity"`
}

// patch converts the request into a domain patch, resolving a supplied
// category reference first so an invalid title rejects the whole update
func (req *UpdateProductRequest) patch(ctx context.Context, resolver categoryResolver) (domain.ProductPatch, error) {
	patch := domain.ProductPatch{
		Name:          req.Name,
		Description:   req.Description,
		CategoryTitle: req.CategoryTitle,
		Price:         req.Price,
		Brand:         req.Brand,
		Quantity:      req.Quantity,
	}

	if patch.CategoryTitle == nil && len(req.Category) > 0 {
		title, err := resolveCategoryRefs(ctx, resolver, req.Category)
		if err != nil {
			return domain.ProductPatch{}, err
		}
		patch.CategoryTitle = &title
	}

	return patch, nil
}

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// UpdateCategoryRequest represents a partial category update
type UpdateCategoryRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// AddProductToCategoryRequest represents the reassignment payload
type AddProductToCategoryRequest struct {
	ProductID     string `json:"product_id" validate:"required,uuid"`
	CategoryTitle string `json:"category_title" validate:"required"`
}

// RemoveProductFromCategoryRequest represents the disassociation payload
type RemoveProductFromCategoryRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// ProductResponse is the outbound representation of a product. The
// category reference renders as its human-readable title, never the
// internal id.
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Brand       string    `json:"brand"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RenderProduct converts a domain product into its response payload
func RenderProduct(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		Brand:       product.Brand,
		Category:    product.CategoryTitle,
		Price:       product.Price,
		Quantity:    product.Quantity,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// RenderProducts converts a list of domain products
func RenderProducts(products []*domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		out = append(out, RenderProduct(product))
	}
	return out
}

// CategoryResponse is the outbound representation of a category
type CategoryResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RenderCategory converts a domain category into its response payload
func RenderCategory(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID.String(),
		Title:       category.Title,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

// RenderCategories converts a list of domain categories
func RenderCategories(categories []*domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, RenderCategory(category))
	}
	return out
}

// PaginatedResponse wraps a page of results with pagination metadata
type PaginatedResponse struct {
	Count    int `json:"count"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Results  any `json:"results"`
}
