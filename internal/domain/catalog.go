package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category represents a named grouping that products reference
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Product represents a sellable item belonging to a category.
// CategoryID is nil only after the product has been explicitly removed
// from its category; creation always requires a resolvable category.
type Product struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Description   string     `json:"description" db:"description"`
	CategoryID    *uuid.UUID `json:"category_id" db:"category_id"`
	CategoryTitle string     `json:"category" db:"category_title"`
	Price         float64    `json:"price" db:"price"`
	Brand         string     `json:"brand" db:"brand"`
	Quantity      int        `json:"quantity" db:"quantity"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// CategoryPatch carries the fields of a partial category update.
// Nil pointers mean "leave unchanged".
type CategoryPatch struct {
	Title       *string
	Description *string
}

// ProductPatch carries the fields of a partial product update.
// Nil pointers mean "leave unchanged".
type ProductPatch struct {
	Name          *string
	Description   *string
	CategoryTitle *string
	Price         *float64
	Brand         *string
	Quantity      *int
}

// IsEmpty reports whether the patch carries no fields at all
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.CategoryTitle == nil &&
		p.Price == nil && p.Brand == nil && p.Quantity == nil
}

// Apply copies the supplied fields onto the product. The category
// reference is resolved by the caller; only the title is carried here.
func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Brand != nil {
		product.Brand = *p.Brand
	}
	if p.Quantity != nil {
		product.Quantity = *p.Quantity
	}
}

// FieldErrors maps field names to human-readable validation messages.
// It is the error type returned by domain-level validation.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks the product invariants that must hold on every write
func (p *Product) Validate() error {
	errs := FieldErrors{}

	if strings.TrimSpace(p.Name) == "" {
		errs["name"] = "Product name cannot be empty."
	}
	if strings.TrimSpace(p.Brand) == "" {
		errs["brand"] = "Brand cannot be empty."
	}
	if p.Price < 0 {
		errs["price"] = "Price cannot be negative."
	}
	if p.Quantity < 0 {
		errs["quantity"] = "Quantity cannot be negative."
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Validate checks the category invariants that must hold on every write
func (c *Category) Validate() error {
	errs := FieldErrors{}

	if strings.TrimSpace(c.Title) == "" {
		errs["title"] = "Category title cannot be empty."
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
