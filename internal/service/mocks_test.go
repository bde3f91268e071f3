package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// Mock repositories for testing
type mockProductRepository struct {
	mu         sync.Mutex
	products   map[int64]*domain.Product
	categories map[int64]bool
	nextID     int64
	err        error
}

func newMockProductRepository(categoryIDs ...int64) *mockProductRepository {
	m := &mockProductRepository{
		products:   make(map[int64]*domain.Product),
		categories: make(map[int64]bool),
	}
	for _, id := range categoryIDs {
		m.categories[id] = true
	}
	return m
}

func (m *mockProductRepository) List(ctx context.Context, q repository.ProductQuery) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Product
	for _, p := range m.products {
		if q.CategoryID == nil || p.InCategory(*q.CategoryID) {
			out = append(out, *p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Product) int { return int(b.ID - a.ID) })
	return out, nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if product.CategoryID != nil && !m.categories[*product.CategoryID] {
		return repository.ErrCategoryNotFound
	}
	m.nextID++
	product.ID = m.nextID
	product.CreatedAt = time.Now()
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	if product.CategoryID != nil && !m.categories[*product.CategoryID] {
		return repository.ErrCategoryNotFound
	}
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

type countingInvalidator struct {
	mu    sync.Mutex
	count int
}

func (c *countingInvalidator) Invalidate() {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
}

func (c *countingInvalidator) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

type mockAnalyticsRepository struct {
	mu           sync.Mutex
	pageViews    []domain.PageView
	productViews []domain.ProductView
	recordErr    error

	stats    *domain.DashboardStats
	top      []domain.TopProduct
	pages    []domain.Activity
	products []domain.Activity
	statsErr error
	topSince time.Time
	topLimit int
}

func (m *mockAnalyticsRepository) RecordPageView(ctx context.Context, view *domain.PageView) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.pageViews = append(m.pageViews, *view)
	return nil
}

func (m *mockAnalyticsRepository) RecordProductView(ctx context.Context, view *domain.ProductView) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.productViews = append(m.productViews, *view)
	return nil
}

func (m *mockAnalyticsRepository) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	stats := *m.stats
	return &stats, nil
}

func (m *mockAnalyticsRepository) TopProducts(ctx context.Context, since time.Time, limit int) ([]domain.TopProduct, error) {
	m.mu.Lock()
	m.topSince = since
	m.topLimit = limit
	m.mu.Unlock()
	return slices.Clone(m.top), nil
}

func (m *mockAnalyticsRepository) RecentPageActivity(ctx context.Context, limit int) ([]domain.Activity, error) {
	return slices.Clone(m.pages), nil
}

func (m *mockAnalyticsRepository) RecentProductActivity(ctx context.Context, limit int) ([]domain.Activity, error) {
	return slices.Clone(m.products), nil
}
