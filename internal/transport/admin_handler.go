package transport

import (
	"context"
	"encoding/json"
	"net/http"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CategoryResolver finds or creates a category by name
type CategoryResolver interface {
	ResolveOrCreate(ctx context.Context, name string) (domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	Loaded() bool
	Lookup(id *int64) (domain.Category, bool)
	CategoryName(id *int64) string
}

// CategoryRequest represents the inline category creation payload
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Name         string           `json:"name" validate:"required,max=255"`
	Price        *decimal.Decimal `json:"price" validate:"required"`
	Description  *string          `json:"description"`
	ImageURL     *string          `json:"image_url"`
	CategoryID   *int64           `json:"category_id" validate:"omitempty,gt=0"`
	PurchaseLink *string          `json:"purchase_link"`
}

// UpdateProductRequest represents a partial product update. An explicit
// null category_id removes the category.
type UpdateProductRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Price        *decimal.Decimal `json:"price"`
	Description  *string          `json:"description"`
	ImageURL     *string          `json:"image_url"`
	CategoryID   nullableID       `json:"category_id"`
	PurchaseLink *string          `json:"purchase_link"`
}

// nullableID tells an absent field apart from an explicit null
type nullableID struct {
	Set   bool
	Value *int64
}

func (n *nullableID) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	n.Value = &id
	return nil
}

// AdminHandler serves the administration panel
type AdminHandler struct {
	resolver  CategoryResolver
	products  service.ProductService
	profiles  service.ProfileService
	analytics service.AnalyticsService
	logger    *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	resolver CategoryResolver,
	products service.ProductService,
	profiles service.ProfileService,
	analytics service.AnalyticsService,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		resolver:  resolver,
		products:  products,
		profiles:  profiles,
		analytics: analytics,
		logger:    logger,
	}
}

// RegisterRoutes registers the admin routes behind the given middleware
func (h *AdminHandler) RegisterRoutes(r chi.Router, guards ...func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(guards...)

		r.Post("/categories", h.ResolveCategory)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
			r.Get("/{id}", h.GetProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})

		r.Get("/users", h.ListUsers)
		r.Get("/dashboard", h.Dashboard)
	})
}

// ResolveCategory handles inline category creation. An existing category
// with the same name in any letter case is returned instead of a new one.
func (h *AdminHandler) ResolveCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Category validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	category, err := h.resolver.ResolveOrCreate(r.Context(), req.Name)
	if err != nil {
		respondWithServiceError(w, h.logger, err, catalog.CategoryCreateNotice(err))
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// ListProducts handles GET /api/admin/products
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, catalog.ProductsNotice(err))
		return
	}

	ensureCategories(r.Context(), h.resolver, h.logger, products...)

	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, h.productResponse(p))
	}
	middleware.RespondWithJSON(w, http.StatusOK, out)
}

// GetProduct handles GET /api/admin/products/{id}
func (h *AdminHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, nil)
		return
	}

	ensureCategories(r.Context(), h.resolver, h.logger, *product)
	middleware.RespondWithJSON(w, http.StatusOK, h.productResponse(*product))
}

// CreateProduct handles POST /api/admin/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}
	if errs := checkURLs(map[string]*string{"image_url": req.ImageURL, "purchase_link": req.PurchaseLink}); len(errs) > 0 {
		middleware.RespondWithValidationErrors(w, errs)
		return
	}

	product, err := h.products.Create(r.Context(), service.ProductInput{
		Name:         req.Name,
		Price:        *req.Price,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		CategoryID:   req.CategoryID,
		PurchaseLink: req.PurchaseLink,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, nil)
		return
	}

	ensureCategories(r.Context(), h.resolver, h.logger, *product)
	middleware.RespondWithJSON(w, http.StatusCreated, h.productResponse(*product))
}

// UpdateProduct handles PUT /api/admin/products/{id}
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}
	if errs := checkURLs(map[string]*string{"image_url": req.ImageURL, "purchase_link": req.PurchaseLink}); len(errs) > 0 {
		middleware.RespondWithValidationErrors(w, errs)
		return
	}

	patch := service.ProductPatch{
		Name:         req.Name,
		Price:        req.Price,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		PurchaseLink: req.PurchaseLink,
	}
	if req.CategoryID.Set {
		patch.CategoryID = req.CategoryID.Value
		patch.ClearCategory = req.CategoryID.Value == nil
	}

	product, err := h.products.Update(r.Context(), id, patch)
	if err != nil {
		respondWithServiceError(w, h.logger, err, nil)
		return
	}

	ensureCategories(r.Context(), h.resolver, h.logger, *product)
	middleware.RespondWithJSON(w, http.StatusOK, h.productResponse(*product))
}

// DeleteProduct handles DELETE /api/admin/products/{id}
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, err, nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.List(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, nil)
		return
	}
	if profiles == nil {
		profiles = []domain.Profile{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, profiles)
}

// Dashboard handles GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.analytics.Dashboard(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, nil)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, dashboard)
}

func (h *AdminHandler) productResponse(p domain.Product) ProductResponse {
	return ProductResponse{Product: p, CategoryName: h.resolver.CategoryName(p.CategoryID)}
}
