package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

var errBoom = &repository.GatewayError{Op: "test", Err: errors.New("connection refused")}

func ptr[T any](v T) *T {
	return &v
}

func product(id int64, categoryID *int64) domain.Product {
	return domain.Product{ID: id, Name: "product", CategoryID: categoryID}
}

func ids(products []domain.Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

// fakeProductStore answers from an in-memory table, applying the category
// predicate the way the gateway would but leaving the rows in insertion order.
type fakeProductStore struct {
	mu      sync.Mutex
	rows    []domain.Product
	err     error
	calls   int
	queries []repository.ProductQuery

	// gate, when set, is consulted per call and blocks until released
	gate func(call int) <-chan struct{}
}

func (f *fakeProductStore) List(ctx context.Context, q repository.ProductQuery) ([]domain.Product, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.queries = append(f.queries, q)
	gate := f.gate
	err := f.err
	rows := slices.Clone(f.rows)
	f.mu.Unlock()

	if gate != nil {
		<-gate(call)
	}

	if err != nil {
		return nil, err
	}
	if q.CategoryID != nil {
		return FilterByCategory(rows, q.CategoryID), nil
	}
	return rows, nil
}

func (f *fakeProductStore) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeProductStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCategoryStore struct {
	mu          sync.Mutex
	rows        []domain.Category
	nextID      int64
	listErr     error
	createErr   error
	listCalls   int
	createCalls int
	// remote holds rows other clients created that a Create collides with
	remote []domain.Category
}

func (f *fakeCategoryStore) List(ctx context.Context) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	rows := slices.Clone(f.rows)
	slices.SortFunc(rows, func(a, b domain.Category) int { return strings.Compare(a.Name, b.Name) })
	return rows, nil
}

func (f *fakeCategoryStore) Create(ctx context.Context, category *domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	for _, c := range append(slices.Clone(f.rows), f.remote...) {
		if strings.EqualFold(c.Name, category.Name) {
			return repository.ErrCategoryAlreadyExists
		}
	}
	f.nextID++
	category.ID = f.nextID
	f.rows = append(f.rows, *category)
	return nil
}

func (f *fakeCategoryStore) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range append(slices.Clone(f.rows), f.remote...) {
		if strings.EqualFold(c.Name, name) {
			found := c
			return &found, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}
