package repository

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"storefront/internal/domain"
)

// AnalyticsRepository stores storefront visits and reads the dashboard aggregates
type AnalyticsRepository interface {
	RecordPageView(ctx context.Context, view *domain.PageView) error
	RecordProductView(ctx context.Context, view *domain.ProductView) error
	Stats(ctx context.Context) (*domain.DashboardStats, error)
	TopProducts(ctx context.Context, since time.Time, limit int) ([]domain.TopProduct, error)
	RecentPageActivity(ctx context.Context, limit int) ([]domain.Activity, error)
	RecentProductActivity(ctx context.Context, limit int) ([]domain.Activity, error)
}

type analyticsRepository struct {
	db *sql.DB
}

// NewAnalyticsRepository creates a new instance of AnalyticsRepository
func NewAnalyticsRepository(db *sql.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) RecordPageView(ctx context.Context, view *domain.PageView) error {
	query := `
		INSERT INTO page_views (page_path, user_agent, referrer)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, view.PagePath, view.UserAgent, view.Referrer).
		Scan(&view.ID, &view.CreatedAt)
	if err != nil {
		return unavailable("record page view", err)
	}
	return nil
}

func (r *analyticsRepository) RecordProductView(ctx context.Context, view *domain.ProductView) error {
	query := `
		INSERT INTO product_views (product_id, user_agent, referrer)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, view.ProductID, view.UserAgent, view.Referrer).
		Scan(&view.ID, &view.CreatedAt)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return ErrProductNotFound
		}
		return unavailable("record product view", err)
	}
	return nil
}

// Stats reads the single row of the dashboard_stats view
func (r *analyticsRepository) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	query := `
		SELECT total_products, today_page_views, week_page_views, month_page_views,
		       today_product_views, week_product_views, month_product_views
		FROM dashboard_stats
	`

	stats := &domain.DashboardStats{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalProducts,
		&stats.TodayPageViews,
		&stats.WeekPageViews,
		&stats.MonthPageViews,
		&stats.TodayProductViews,
		&stats.WeekProductViews,
		&stats.MonthProductViews,
	)
	if err != nil {
		return nil, unavailable("read dashboard stats", err)
	}
	return stats, nil
}

// TopProducts ranks products by views since the given instant. Views of
// products that no longer exist keep an empty ProductName.
func (r *analyticsRepository) TopProducts(ctx context.Context, since time.Time, limit int) ([]domain.TopProduct, error) {
	query := `
		SELECT v.product_id, p.name, COUNT(*) AS views
		FROM product_views v
		LEFT JOIN products p ON p.id = v.product_id
		WHERE v.created_at >= $1
		GROUP BY v.product_id, p.name
		ORDER BY views DESC, v.product_id ASC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, unavailable("top products", err)
	}
	defer rows.Close()

	top := []domain.TopProduct{}
	for rows.Next() {
		var (
			item domain.TopProduct
			name sql.NullString
		)
		if err := rows.Scan(&item.ProductID, &name, &item.Views); err != nil {
			return nil, unavailable("scan top product", err)
		}
		item.ProductName = name.String
		top = append(top, item)
	}

	if err = rows.Err(); err != nil {
		return nil, unavailable("iterate top products", err)
	}
	return top, nil
}

func (r *analyticsRepository) RecentPageActivity(ctx context.Context, limit int) ([]domain.Activity, error) {
	query := `
		SELECT page_path, created_at
		FROM page_views
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, unavailable("recent page views", err)
	}
	defer rows.Close()

	activity := []domain.Activity{}
	for rows.Next() {
		item := domain.Activity{Type: domain.ActivityPage}
		if err := rows.Scan(&item.Path, &item.CreatedAt); err != nil {
			return nil, unavailable("scan page view", err)
		}
		activity = append(activity, item)
	}

	if err = rows.Err(); err != nil {
		return nil, unavailable("iterate page views", err)
	}
	return activity, nil
}

func (r *analyticsRepository) RecentProductActivity(ctx context.Context, limit int) ([]domain.Activity, error) {
	query := `
		SELECT v.product_id, p.name, v.created_at
		FROM product_views v
		LEFT JOIN products p ON p.id = v.product_id
		ORDER BY v.created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, unavailable("recent product views", err)
	}
	defer rows.Close()

	activity := []domain.Activity{}
	for rows.Next() {
		var (
			productID int64
			item      = domain.Activity{Type: domain.ActivityProduct}
		)
		if err := rows.Scan(&productID, &item.ProductName, &item.CreatedAt); err != nil {
			return nil, unavailable("scan product view", err)
		}
		item.Path = productPath(productID)
		activity = append(activity, item)
	}

	if err = rows.Err(); err != nil {
		return nil, unavailable("iterate product views", err)
	}
	return activity, nil
}

func productPath(id int64) string {
	return "/products/" + strconv.FormatInt(id, 10)
}
