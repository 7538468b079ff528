package transport

import (
	"errors"
	"net/http"

	"catalog-api/internal/domain"
	"catalog-api/internal/middleware"
	"catalog-api/internal/repository"
	"catalog-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router, writeLimiter func(http.Handler) http.Handler) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{title}/products/", h.ProductsByCategory)

		r.Group(func(r chi.Router) {
			if writeLimiter != nil {
				r.Use(writeLimiter)
			}
			r.Post("/create/", h.Create)
			r.Post("/add-product/", h.AddProduct)
			r.Post("/remove-product/", h.RemoveProduct)
			r.Put("/{title}/update/", h.Update)
			r.Patch("/{title}/update/", h.Update)
			r.Delete("/{title}/delete/", h.Delete)
		})
	})
}

// List handles listing all categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, RenderCategories(categories))
}

// Create handles category creation
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Category create validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.CreateCategory(r.Context(), req.Title, req.Description)
	if err != nil {
		h.logger.Debug("Category creation failed", zap.Error(err))
		h.respondCategoryError(w, err)
		return
	}

	h.logger.Info("Category created", zap.String("title", category.Title))
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Category created successfully",
		"data":    RenderCategory(category),
	})
}

// ProductsByCategory handles listing the products in a category
func (h *CategoryHandler) ProductsByCategory(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	products, err := h.categoryService.GetProductsByCategory(r.Context(), title)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Category not found")
			return
		}
		h.logger.Error("Failed to list products by category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, RenderProducts(products))
}

// AddProduct handles reassigning a product to a category
func (h *CategoryHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req AddProductToCategoryRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Add product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.categoryService.AddProductToCategory(r.Context(), productID, req.CategoryTitle)
	if err != nil {
		h.logger.Debug("Add product to category failed", zap.Error(err))
		h.respondCategoryError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Product added to category",
		"product": RenderProduct(product),
	})
}

// RemoveProduct handles clearing a product's category reference
func (h *CategoryHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	var req RemoveProductFromCategoryRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Remove product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.categoryService.RemoveProductFromCategory(r.Context(), productID)
	if err != nil {
		h.logger.Debug("Remove product from category failed", zap.Error(err))
		h.respondCategoryError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Product removed from category",
		"product": RenderProduct(product),
	})
}

// Update handles renaming or re-describing a category
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	var req UpdateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Category update decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.UpdateCategory(r.Context(), title, domain.CategoryPatch{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.logger.Debug("Category update failed", zap.Error(err))
		h.respondCategoryError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message":  "Category updated successfully",
		"category": RenderCategory(category),
	})
}

// Delete handles category deletion; referencing products are removed by
// the store-level cascade
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	if err := h.categoryService.DeleteCategory(r.Context(), title); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Category not found")
			return
		}
		h.logger.Error("Failed to delete category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	h.logger.Info("Category deleted", zap.String("title", title))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Category deleted successfully",
	})
}

// respondCategoryError maps category write failures onto the error
// envelope
func (h *CategoryHandler) respondCategoryError(w http.ResponseWriter, err error) {
	var fieldErrs domain.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		middleware.RespondWithFieldErrors(w, fieldErrs)
	case errors.Is(err, repository.ErrCategoryAlreadyExists):
		middleware.RespondWithError(w, http.StatusBadRequest, "Category with this title already exists")
	case errors.Is(err, repository.ErrCategoryNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "Category not found")
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, repository.ErrInvalidReference):
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid product or category")
	default:
		h.logger.Error("Unexpected store failure", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
