package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
type Product struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Description  *string         `json:"description" db:"description"`
	ImageURL     *string         `json:"image_url" db:"image_url"`
	CategoryID   *int64          `json:"category_id" db:"category_id"`
	PurchaseLink *string         `json:"purchase_link" db:"purchase_link"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// InCategory reports whether the product belongs to the given category.
// A nil categoryID never matches.
func (p Product) InCategory(categoryID int64) bool {
	return p.CategoryID != nil && *p.CategoryID == categoryID
}

// Category represents a product category
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// UncategorizedName is shown for products without a resolvable category
const UncategorizedName = "Uncategorized"
