package domain

import "time"

// PageView is a single storefront page visit
type PageView struct {
	ID        int64     `json:"id" db:"id"`
	PagePath  string    `json:"page_path" db:"page_path"`
	UserAgent *string   `json:"user_agent" db:"user_agent"`
	Referrer  *string   `json:"referrer" db:"referrer"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ProductView is a single product detail visit
type ProductView struct {
	ID        int64     `json:"id" db:"id"`
	ProductID int64     `json:"product_id" db:"product_id"`
	UserAgent *string   `json:"user_agent" db:"user_agent"`
	Referrer  *string   `json:"referrer" db:"referrer"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DashboardStats mirrors the dashboard_stats view
type DashboardStats struct {
	TotalProducts     int64 `json:"total_products" db:"total_products"`
	TodayPageViews    int64 `json:"today_page_views" db:"today_page_views"`
	WeekPageViews     int64 `json:"week_page_views" db:"week_page_views"`
	MonthPageViews    int64 `json:"month_page_views" db:"month_page_views"`
	TodayProductViews int64 `json:"today_product_views" db:"today_product_views"`
	WeekProductViews  int64 `json:"week_product_views" db:"week_product_views"`
	MonthProductViews int64 `json:"month_product_views" db:"month_product_views"`
}

// TopProduct is a product ranked by view count
type TopProduct struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Views       int64  `json:"views"`
}

// ActivityType distinguishes page visits from product visits
type ActivityType string

const (
	ActivityPage    ActivityType = "page"
	ActivityProduct ActivityType = "product"
)

// Activity is one entry of the recent activity feed
type Activity struct {
	Type        ActivityType `json:"type"`
	Path        string       `json:"path"`
	ProductName *string      `json:"product_name,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
