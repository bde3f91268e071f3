package transport

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductLister is the query side of the catalog engine
type ProductLister interface {
	ListProducts(ctx context.Context, filter catalog.Filter) ([]domain.Product, error)
}

// CategoryDirectory is the read side of the category resolver
type CategoryDirectory interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	Categories() []domain.Category
	Loaded() bool
	Lookup(id *int64) (domain.Category, bool)
	CategoryName(id *int64) string
}

// ProductGetter reads a single product
type ProductGetter interface {
	Get(ctx context.Context, id int64) (*domain.Product, error)
}

// ProductResponse is a product with its category display name
type ProductResponse struct {
	domain.Product
	CategoryName string `json:"category_name"`
}

// ProductListResponse is the storefront listing
type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	CategoryID *int64            `json:"category_id"`
}

// CategoryListResponse carries the categories and, when the latest read
// failed, the stale list with the notice that explains it.
type CategoryListResponse struct {
	Categories []domain.Category `json:"categories"`
	Stale      bool              `json:"stale"`
	Notice     *catalog.Notice   `json:"notice,omitempty"`
}

// CatalogHandler serves the public storefront catalog
type CatalogHandler struct {
	products   ProductLister
	categories CategoryDirectory
	getter     ProductGetter
	logger     *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(products ProductLister, categories CategoryDirectory, getter ProductGetter, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		products:   products,
		categories: categories,
		getter:     getter,
		logger:     logger,
	}
}

// RegisterRoutes registers the storefront routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/products", h.ListProducts)
	r.Get("/api/products/{id}", h.GetProduct)
	r.Get("/api/categories", h.ListCategories)
}

// ListProducts handles GET /api/products?category_id=N
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := catalog.Filter{}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
				{Field: "category_id", Message: "Invalid value"},
			})
			return
		}
		filter.CategoryID = &id
	}

	products, err := h.products.ListProducts(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, h.logger, err, catalog.ProductsNotice(err))
		return
	}

	h.ensureCategories(r.Context(), products...)

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products:   h.withCategoryNames(products),
		CategoryID: filter.CategoryID,
	})
}

// GetProduct handles GET /api/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	product, err := h.getter.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, nil)
		return
	}

	h.ensureCategories(r.Context(), *product)

	middleware.RespondWithJSON(w, http.StatusOK, ProductResponse{
		Product:      *product,
		CategoryName: h.categories.CategoryName(product.CategoryID),
	})
}

// ListCategories handles GET /api/categories. A failed read still answers
// with the last good list when there is one.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ListCategories(r.Context())
	if err == nil {
		middleware.RespondWithJSON(w, http.StatusOK, CategoryListResponse{Categories: categories})
		return
	}

	notice := catalog.CategoriesNotice(err)
	if !h.categories.Loaded() {
		respondWithServiceError(w, h.logger, err, notice)
		return
	}

	h.logger.Warn("Serving stale categories", zap.Error(err))
	middleware.RespondWithJSON(w, http.StatusOK, CategoryListResponse{
		Categories: h.categories.Categories(),
		Stale:      true,
		Notice:     notice,
	})
}

func (h *CatalogHandler) ensureCategories(ctx context.Context, products ...domain.Product) {
	ensureCategories(ctx, h.categories, h.logger, products...)
}

type categoryLoader interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	Loaded() bool
	Lookup(id *int64) (domain.Category, bool)
}

// ensureCategories makes sure the category names for products can be
// resolved. The list is read when it was never loaded, or when a product
// points at a category the cache does not know, which happens after a
// category is created by another instance.
func ensureCategories(ctx context.Context, categories categoryLoader, logger *zap.Logger, products ...domain.Product) {
	if categories.Loaded() && !missingCategory(categories, products) {
		return
	}
	if _, err := categories.ListCategories(ctx); err != nil {
		logger.Warn("Category names unavailable", zap.Error(err))
	}
}

func missingCategory(categories categoryLoader, products []domain.Product) bool {
	for _, p := range products {
		if p.CategoryID == nil {
			continue
		}
		if _, ok := categories.Lookup(p.CategoryID); !ok {
			return true
		}
	}
	return false
}

func (h *CatalogHandler) withCategoryNames(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ProductResponse{Product: p, CategoryName: h.categories.CategoryName(p.CategoryID)})
	}
	return out
}

var errBadID = errors.New("invalid id")

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}
