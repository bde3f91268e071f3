package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	topProductsWindow = 7 * 24 * time.Hour
	topProductsLimit  = 5
	recentLimit       = 10

	// UnknownProductName labels views of products that no longer exist
	UnknownProductName = "Unknown product"
)

// Dashboard is the admin analytics overview
type Dashboard struct {
	Stats          domain.DashboardStats `json:"stats"`
	TopProducts    []domain.TopProduct   `json:"top_products"`
	RecentActivity []domain.Activity     `json:"recent_activity"`
}

// AnalyticsService records storefront visits and builds the dashboard
type AnalyticsService interface {
	TrackPageView(ctx context.Context, view domain.PageView)
	TrackProductView(ctx context.Context, view domain.ProductView)
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type analyticsService struct {
	repo   repository.AnalyticsRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewAnalyticsService creates a new instance of AnalyticsService
func NewAnalyticsService(repo repository.AnalyticsRepository, logger *zap.Logger) AnalyticsService {
	return &analyticsService{repo: repo, logger: logger, now: time.Now}
}

// TrackPageView records a visit. Tracking never fails the caller; errors
// are only logged.
func (s *analyticsService) TrackPageView(ctx context.Context, view domain.PageView) {
	if view.PagePath == "" {
		return
	}
	if err := s.repo.RecordPageView(ctx, &view); err != nil {
		s.logger.Warn("Failed to track page view",
			zap.String("page_path", view.PagePath),
			zap.Error(err),
		)
	}
}

// TrackProductView records a product visit, logging failures
func (s *analyticsService) TrackProductView(ctx context.Context, view domain.ProductView) {
	if err := s.repo.RecordProductView(ctx, &view); err != nil {
		s.logger.Warn("Failed to track product view",
			zap.Int64("product_id", view.ProductID),
			zap.Error(err),
		)
	}
}

// Dashboard reads the aggregates concurrently. Any failed read fails the
// whole dashboard.
func (s *analyticsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		stats    *domain.DashboardStats
		top      []domain.TopProduct
		pages    []domain.Activity
		products []domain.Activity
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = s.repo.Stats(gctx)
		return err
	})
	g.Go(func() (err error) {
		top, err = s.repo.TopProducts(gctx, s.now().Add(-topProductsWindow), topProductsLimit)
		return err
	})
	g.Go(func() (err error) {
		pages, err = s.repo.RecentPageActivity(gctx, recentLimit)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.repo.RecentProductActivity(gctx, recentLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	for i := range top {
		if top[i].ProductName == "" {
			top[i].ProductName = UnknownProductName
		}
	}

	return &Dashboard{
		Stats:          *stats,
		TopProducts:    top,
		RecentActivity: mergeActivity(pages, products, recentLimit),
	}, nil
}

// mergeActivity interleaves both feeds newest first and keeps limit entries
func mergeActivity(pages, products []domain.Activity, limit int) []domain.Activity {
	merged := make([]domain.Activity, 0, len(pages)+len(products))
	merged = append(merged, pages...)
	merged = append(merged, products...)

	for i := range merged {
		if merged[i].Type == domain.ActivityProduct && (merged[i].ProductName == nil || *merged[i].ProductName == "") {
			name := UnknownProductName
			merged[i].ProductName = &name
		}
	}

	slices.SortStableFunc(merged, func(a, b domain.Activity) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
