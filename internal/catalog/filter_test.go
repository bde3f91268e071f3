package catalog

import (
	"slices"
	"testing"

	"storefront/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genProducts builds product lists over a small category space so that
// matches, misses and uncategorized products all show up.
func genProducts() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, 4)).Map(func(cats []int) []domain.Product {
		products := make([]domain.Product, 0, len(cats))
		for i, c := range cats {
			var categoryID *int64
			if c > 0 {
				categoryID = ptr(int64(c))
			}
			products = append(products, product(int64(i+1), categoryID))
		}
		return products
	})
}

func TestProperty_FilterKeepsOnlyMatchingCategoryInOrder(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("filtered products all carry the category, in input order", prop.ForAll(
		func(products []domain.Product, categoryID int64) bool {
			filtered := FilterByCategory(products, &categoryID)

			expected := []int64{}
			for _, p := range products {
				if p.CategoryID != nil && *p.CategoryID == categoryID {
					expected = append(expected, p.ID)
				}
			}
			return slices.Equal(ids(filtered), expected)
		},
		genProducts(),
		gen.Int64Range(1, 4),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_FilterWithoutCategoryIsIdentity(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("nil category returns the input unchanged", prop.ForAll(
		func(products []domain.Product) bool {
			filtered := FilterByCategory(products, nil)
			return slices.EqualFunc(filtered, products, func(a, b domain.Product) bool {
				return a.ID == b.ID && a.CategoryID == b.CategoryID
			})
		},
		genProducts(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_FilterIsIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("filtering twice equals filtering once", prop.ForAll(
		func(products []domain.Product, categoryID int64) bool {
			once := FilterByCategory(products, &categoryID)
			twice := FilterByCategory(once, &categoryID)
			return slices.Equal(ids(once), ids(twice))
		},
		genProducts(),
		gen.Int64Range(1, 4),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_FilterDoesNotMutateInput(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("the unfiltered collection is restorable", prop.ForAll(
		func(products []domain.Product, categoryID int64) bool {
			before := ids(products)
			_ = FilterByCategory(products, &categoryID)
			return slices.Equal(before, ids(products))
		},
		genProducts(),
		gen.Int64Range(1, 4),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFilterByCategory_UncategorizedNeverMatches(t *testing.T) {
	products := []domain.Product{product(1, nil), product(2, ptr(int64(0)))}

	filtered := FilterByCategory(products, ptr(int64(0)))

	if !slices.Equal(ids(filtered), []int64{2}) {
		t.Errorf("expected only product 2, got %v", ids(filtered))
	}
}
