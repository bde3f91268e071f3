package transport

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PageViewRequest represents a storefront page visit
type PageViewRequest struct {
	PagePath string  `json:"page_path" validate:"required,max=2048"`
	Referrer *string `json:"referrer"`
}

// ProductViewRequest represents a product detail visit
type ProductViewRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Referrer  *string `json:"referrer"`
}

// AnalyticsHandler collects storefront visits
type AnalyticsHandler struct {
	analytics service.AnalyticsService
	logger    *zap.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analytics service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

// RegisterRoutes registers the tracking routes
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/analytics", func(r chi.Router) {
		r.Post("/page-views", h.TrackPageView)
		r.Post("/product-views", h.TrackProductView)
	})
}

// TrackPageView accepts a page visit. Recording failures never reach the
// visitor.
func (h *AnalyticsHandler) TrackPageView(w http.ResponseWriter, r *http.Request) {
	var req PageViewRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	h.analytics.TrackPageView(r.Context(), domain.PageView{
		PagePath:  req.PagePath,
		UserAgent: userAgent(r),
		Referrer:  referrer(r, req.Referrer),
	})

	w.WriteHeader(http.StatusAccepted)
}

// TrackProductView accepts a product visit
func (h *AnalyticsHandler) TrackProductView(w http.ResponseWriter, r *http.Request) {
	var req ProductViewRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	h.analytics.TrackProductView(r.Context(), domain.ProductView{
		ProductID: req.ProductID,
		UserAgent: userAgent(r),
		Referrer:  referrer(r, req.Referrer),
	})

	w.WriteHeader(http.StatusAccepted)
}

func userAgent(r *http.Request) *string {
	if ua := r.UserAgent(); ua != "" {
		return &ua
	}
	return nil
}

func referrer(r *http.Request, given *string) *string {
	if given != nil && *given != "" {
		return given
	}
	if ref := r.Referer(); ref != "" {
		return &ref
	}
	return nil
}
