package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errDown = &repository.GatewayError{Op: "test", Err: errors.New("connection refused")}

// memStore is an in-memory gateway covering products, categories,
// profiles and analytics.
type memStore struct {
	mu          sync.Mutex
	products    []domain.Product
	categories  []domain.Category
	profiles    []domain.Profile
	pageViews   []domain.PageView
	nextProduct int64
	nextCat     int64
	failing     bool
	createCalls int
}

func newMemStore() *memStore {
	return &memStore{
		categories: []domain.Category{{ID: 1, Name: "Electronics"}, {ID: 2, Name: "Books"}},
		products: []domain.Product{
			{ID: 10, Name: "Phone", Price: decimal.NewFromInt(500), CategoryID: ptr(int64(1))},
			{ID: 11, Name: "Novel", Price: decimal.NewFromInt(12), CategoryID: ptr(int64(2))},
			{ID: 12, Name: "Mystery box", Price: decimal.NewFromInt(5)},
		},
		nextProduct: 12,
		nextCat:     2,
	}
}

func (m *memStore) setFailing(v bool) {
	m.mu.Lock()
	m.failing = v
	m.mu.Unlock()
}

// products

func (m *memStore) List(ctx context.Context, q repository.ProductQuery) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errDown
	}
	var out []domain.Product
	for _, p := range m.products {
		if q.CategoryID == nil || p.InCategory(*q.CategoryID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errDown
	}
	for _, p := range m.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *memStore) Create(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.CategoryID != nil && !m.hasCategory(*p.CategoryID) {
		return repository.ErrCategoryNotFound
	}
	m.nextProduct++
	p.ID = m.nextProduct
	p.CreatedAt = time.Now()
	m.products = append(m.products, *p)
	return nil
}

func (m *memStore) Update(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == p.ID {
			m.products[i] = *p
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (m *memStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == id {
			m.products = slices.Delete(m.products, i, i+1)
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (m *memStore) hasCategory(id int64) bool {
	for _, c := range m.categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// categories

type memCategories struct{ *memStore }

func (c memCategories) List(ctx context.Context) ([]domain.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return nil, errDown
	}
	out := slices.Clone(c.categories)
	slices.SortFunc(out, func(a, b domain.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (c memCategories) Create(ctx context.Context, category *domain.Category) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.createCalls++
	if c.failing {
		return errDown
	}
	for _, existing := range c.categories {
		if strings.EqualFold(existing.Name, category.Name) {
			return repository.ErrCategoryAlreadyExists
		}
	}
	c.nextCat++
	category.ID = c.nextCat
	c.categories = append(c.categories, *category)
	return nil
}

func (c memCategories) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.categories {
		if strings.EqualFold(existing.Name, name) {
			found := existing
			return &found, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

// profiles

type memProfiles struct{ *memStore }

func (p memProfiles) List(ctx context.Context) ([]domain.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.profiles), nil
}

func (p memProfiles) FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, profile := range p.profiles {
		if profile.ID == id {
			found := profile
			return &found, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

// analytics

type memAnalytics struct{ *memStore }

func (a memAnalytics) RecordPageView(ctx context.Context, view *domain.PageView) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failing {
		return errDown
	}
	a.pageViews = append(a.pageViews, *view)
	return nil
}

func (a memAnalytics) RecordProductView(ctx context.Context, view *domain.ProductView) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failing {
		return errDown
	}
	return nil
}

func (a memAnalytics) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return &domain.DashboardStats{TotalProducts: int64(len(a.products))}, nil
}

func (a memAnalytics) TopProducts(ctx context.Context, since time.Time, limit int) ([]domain.TopProduct, error) {
	return []domain.TopProduct{{ProductID: 99, Views: 4}}, nil
}

func (a memAnalytics) RecentPageActivity(ctx context.Context, limit int) ([]domain.Activity, error) {
	return nil, nil
}

func (a memAnalytics) RecentProductActivity(ctx context.Context, limit int) ([]domain.Activity, error) {
	return nil, nil
}

type testApp struct {
	store    *memStore
	engine   *catalog.Engine
	resolver *catalog.Resolver
	router   chi.Router
}

// newTestApp wires the handlers the way the server does, without auth
func newTestApp(t *testing.T, strategy catalog.Strategy) *testApp {
	t.Helper()
	logger := zap.NewNop()
	store := newMemStore()

	engine := catalog.NewEngine(store, strategy, logger)
	resolver := catalog.NewResolver(memCategories{store}, logger)
	products := service.NewProductService(store, engine, logger)
	profiles := service.NewProfileService(memProfiles{store})
	analytics := service.NewAnalyticsService(memAnalytics{store}, logger)

	router := chi.NewRouter()
	NewCatalogHandler(engine, resolver, products, logger).RegisterRoutes(router)
	NewAdminHandler(resolver, products, profiles, analytics, logger).RegisterRoutes(router)
	NewAnalyticsHandler(analytics, logger).RegisterRoutes(router)

	return &testApp{store: store, engine: engine, resolver: resolver, router: router}
}

func (a *testApp) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func ptr[T any](v T) *T {
	return &v
}

func productIDs(products []ProductResponse) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

