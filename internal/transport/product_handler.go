package transport

import (
	"errors"
	"net/http"
	"strconv"

	"catalog-api/internal/config"
	"catalog-api/internal/domain"
	"catalog-api/internal/middleware"
	"catalog-api/internal/repository"
	"catalog-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService  service.ProductService
	categoryService service.CategoryService
	pagination      config.PaginationConfig
	logger          *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(
	productService service.ProductService,
	categoryService service.CategoryService,
	pagination config.PaginationConfig,
	logger *zap.Logger,
) *ProductHandler {
	return &ProductHandler{
		productService:  productService,
		categoryService: categoryService,
		pagination:      pagination,
		logger:          logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, writeLimiter func(http.Handler) http.Handler) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}/", h.Get)

		r.Group(func(r chi.Router) {
			if writeLimiter != nil {
				r.Use(writeLimiter)
			}
			r.Post("/create/", h.Create)
			r.Put("/{id}/update/", h.Update)
			r.Patch("/{id}/update/", h.Update)
			r.Delete("/{id}/delete/", h.Delete)
		})
	})
}

// List handles the paginated product listing
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid page parameter")
			return
		}
		page = parsed
	}

	pageSize := h.pagination.DefaultPageSize
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid page_size parameter")
			return
		}
		pageSize = parsed
	}
	if pageSize > h.pagination.MaxPageSize {
		pageSize = h.pagination.MaxPageSize
	}

	products, total, err := h.productService.ListProducts(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PaginatedResponse{
		Count:    total,
		Page:     page,
		PageSize: pageSize,
		Results:  RenderProducts(products),
	})
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product create validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	categoryTitle, err := resolveCategoryRefs(r.Context(), h.categoryService, req.categoryRefs())
	if err != nil {
		h.respondCatalogError(w, err, http.StatusBadRequest)
		return
	}

	product, err := h.productService.CreateProduct(
		r.Context(), req.Name, req.Description, categoryTitle, *req.Price, req.Brand, req.Quantity,
	)
	if err != nil {
		h.logger.Debug("Product creation failed", zap.Error(err))
		h.respondCatalogError(w, err, http.StatusBadRequest)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Product created successfully",
		"data":    RenderProduct(product),
	})
}

// Get handles fetching a single product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseProductID(w, r)
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, RenderProduct(product))
}

// Update handles partial product updates (PUT and PATCH)
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseProductID(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product update decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch, err := req.patch(r.Context(), h.categoryService)
	if err != nil {
		h.respondCatalogError(w, err, http.StatusBadRequest)
		return
	}

	product, err := h.productService.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		h.logger.Debug("Product update failed", zap.Error(err))
		h.respondCatalogError(w, err, http.StatusBadRequest)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Product updated successfully",
		"product": RenderProduct(product),
	})
}

// Delete handles product deletion
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseProductID(w, r)
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Product deleted successfully",
	})
}

// parseProductID extracts and parses the {id} path parameter
func (h *ProductHandler) parseProductID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondCatalogError maps catalog write failures onto the error
// envelope: validation and reference problems are 400, missing entities
// 404, anything else a logged 500.
func (h *ProductHandler) respondCatalogError(w http.ResponseWriter, err error, refStatus int) {
	var fieldErrs domain.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		middleware.RespondWithFieldErrors(w, fieldErrs)
	case errors.Is(err, repository.ErrCategoryNotFound):
		middleware.RespondWithError(w, refStatus, "Category not found")
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, repository.ErrInvalidReference):
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid product or category")
	case errors.Is(err, repository.ErrCategoryAlreadyExists):
		middleware.RespondWithError(w, http.StatusBadRequest, "Category with this title already exists")
	default:
		h.logger.Error("Unexpected store failure", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
