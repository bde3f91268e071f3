package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAnalyticsService_TrackingSwallowsFailures(t *testing.T) {
	repo := &mockAnalyticsRepository{recordErr: &repository.GatewayError{Op: "record page view", Err: errors.New("down")}}
	svc := NewAnalyticsService(repo, zap.NewNop())

	assert.NotPanics(t, func() {
		svc.TrackPageView(context.Background(), domain.PageView{PagePath: "/"})
		svc.TrackProductView(context.Background(), domain.ProductView{ProductID: 1})
	})
}

func TestAnalyticsService_TrackPageView(t *testing.T) {
	repo := &mockAnalyticsRepository{}
	svc := NewAnalyticsService(repo, zap.NewNop())

	svc.TrackPageView(context.Background(), domain.PageView{PagePath: "/products"})
	svc.TrackPageView(context.Background(), domain.PageView{})
	svc.TrackProductView(context.Background(), domain.ProductView{ProductID: 3})

	require.Len(t, repo.pageViews, 1)
	assert.Equal(t, "/products", repo.pageViews[0].PagePath)
	require.Len(t, repo.productViews, 1)
}

func TestAnalyticsService_Dashboard(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lamp := "Desk lamp"
	repo := &mockAnalyticsRepository{
		stats: &domain.DashboardStats{TotalProducts: 4, TodayPageViews: 9},
		top: []domain.TopProduct{
			{ProductID: 1, ProductName: "Desk lamp", Views: 12},
			{ProductID: 9, ProductName: "", Views: 3},
		},
		pages: []domain.Activity{
			{Type: domain.ActivityPage, Path: "/", CreatedAt: now.Add(-time.Minute)},
			{Type: domain.ActivityPage, Path: "/about", CreatedAt: now.Add(-3 * time.Minute)},
		},
		products: []domain.Activity{
			{Type: domain.ActivityProduct, Path: "/products/1", ProductName: &lamp, CreatedAt: now.Add(-2 * time.Minute)},
			{Type: domain.ActivityProduct, Path: "/products/9", CreatedAt: now},
		},
	}
	svc := &analyticsService{repo: repo, logger: zap.NewNop(), now: func() time.Time { return now }}

	dashboard, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), dashboard.Stats.TotalProducts)
	assert.Equal(t, now.Add(-7*24*time.Hour), repo.topSince)
	assert.Equal(t, 5, repo.topLimit)
	assert.Equal(t, UnknownProductName, dashboard.TopProducts[1].ProductName)

	paths := make([]string, 0, len(dashboard.RecentActivity))
	for _, a := range dashboard.RecentActivity {
		paths = append(paths, a.Path)
	}
	assert.Equal(t, []string{"/products/9", "/", "/products/1", "/about"}, paths)
	assert.Equal(t, UnknownProductName, *dashboard.RecentActivity[0].ProductName)
}

func TestAnalyticsService_DashboardFailsAsAWhole(t *testing.T) {
	repo := &mockAnalyticsRepository{
		statsErr: &repository.GatewayError{Op: "dashboard stats", Err: errors.New("down")},
	}
	svc := NewAnalyticsService(repo, zap.NewNop())

	_, err := svc.Dashboard(context.Background())

	assert.ErrorIs(t, err, repository.ErrGatewayUnavailable)
}

func TestMergeActivityKeepsNewestWithinLimit(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var pages []domain.Activity
	for i := 0; i < 8; i++ {
		pages = append(pages, domain.Activity{Type: domain.ActivityPage, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
	}

	merged := mergeActivity(pages, pages, 10)

	require.Len(t, merged, 10)
	for i := 1; i < len(merged); i++ {
		assert.False(t, merged[i].CreatedAt.After(merged[i-1].CreatedAt))
	}
	assert.Equal(t, base.Add(7*time.Hour), merged[0].CreatedAt)
}
