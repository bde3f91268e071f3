package catalog

import "storefront/internal/domain"

// FilterByCategory narrows products to one category without touching the
// gateway. A nil categoryID returns products itself, unchanged. Otherwise a
// new slice holds the matching products in their original relative order;
// the input is never modified.
func FilterByCategory(products []domain.Product, categoryID *int64) []domain.Product {
	if categoryID == nil {
		return products
	}

	filtered := make([]domain.Product, 0, len(products))
	for _, product := range products {
		if product.InCategory(*categoryID) {
			filtered = append(filtered, product)
		}
	}
	return filtered
}
