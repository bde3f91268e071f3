package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

// CategoryStore is the slice of the gateway the resolver reads and writes
type CategoryStore interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, category *domain.Category) error
	FindByName(ctx context.Context, name string) (*domain.Category, error)
}

// Resolver owns the in-memory category list. It answers id lookups from the
// cache and implements get-or-create by case-insensitive name.
type Resolver struct {
	store  CategoryStore
	logger *zap.Logger

	// opMu serializes gateway round trips so a slow read can never
	// overwrite a category created after it was issued.
	opMu sync.Mutex

	mu         sync.RWMutex
	categories []domain.Category
	loaded     bool
}

// NewResolver creates a Resolver with an empty cache
func NewResolver(store CategoryStore, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger,
	}
}

// ListCategories reads the categories from the gateway, ordered by name
// ignoring case.
// On failure the previously loaded list stays in place and remains
// available through Categories.
func (r *Resolver) ListCategories(ctx context.Context) ([]domain.Category, error) {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	return r.refresh(ctx)
}

func (r *Resolver) refresh(ctx context.Context) ([]domain.Category, error) {
	categories, err := r.store.List(ctx)
	if err != nil {
		r.logger.Error("Failed to fetch categories", zap.Error(err))
		return nil, fmt.Errorf("list categories: %w", err)
	}

	slices.SortStableFunc(categories, compareCategoryNames)

	r.mu.Lock()
	r.categories = categories
	r.loaded = true
	r.mu.Unlock()

	r.logger.Debug("Categories fetched", zap.Int("count", len(categories)))
	return slices.Clone(categories), nil
}

// ResolveOrCreate returns the category whose name matches name ignoring
// case, creating it when no such category exists. A match in the cache costs
// no gateway call; a created category is added to the cache and is visible
// to the next call straight away.
func (r *Resolver) ResolveOrCreate(ctx context.Context, name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, &ValidationError{Field: "name", Message: "category name must not be empty"}
	}

	r.opMu.Lock()
	defer r.opMu.Unlock()

	if !r.isLoaded() {
		// Matching against an unknown list could create a duplicate
		if _, err := r.refresh(ctx); err != nil {
			return domain.Category{}, err
		}
	}

	if category, ok := r.match(name); ok {
		return category, nil
	}

	created := domain.Category{Name: name}
	err := r.store.Create(ctx, &created)
	if errors.Is(err, repository.ErrCategoryAlreadyExists) {
		// Another client created it since our last read
		existing, ferr := r.store.FindByName(ctx, name)
		if ferr != nil {
			r.logger.Error("Failed to read existing category", zap.String("name", name), zap.Error(ferr))
			return domain.Category{}, fmt.Errorf("find category %q: %w", name, ferr)
		}
		created = *existing
	} else if err != nil {
		r.logger.Error("Failed to create category", zap.String("name", name), zap.Error(err))
		return domain.Category{}, fmt.Errorf("create category %q: %w", name, err)
	}

	r.insert(created)
	r.logger.Info("Category created", zap.Int64("category_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// Categories returns the cached list without touching the gateway
func (r *Resolver) Categories() []domain.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.categories)
}

// Loaded reports whether a list has ever been read successfully
func (r *Resolver) Loaded() bool {
	return r.isLoaded()
}

// Lookup finds a cached category by id. A nil id or an id missing from
// the cache (a dangling reference) reports false.
func (r *Resolver) Lookup(id *int64) (domain.Category, bool) {
	if id == nil {
		return domain.Category{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, category := range r.categories {
		if category.ID == *id {
			return category, true
		}
	}
	return domain.Category{}, false
}

// CategoryName is the display name for a product's category
func (r *Resolver) CategoryName(id *int64) string {
	if category, ok := r.Lookup(id); ok {
		return category.Name
	}
	return domain.UncategorizedName
}

func (r *Resolver) isLoaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

func (r *Resolver) match(name string) (domain.Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, category := range r.categories {
		if strings.EqualFold(category.Name, name) {
			return category, true
		}
	}
	return domain.Category{}, false
}

// insert keeps the cache in name order
func (r *Resolver) insert(category domain.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.categories {
		if existing.ID == category.ID {
			return
		}
	}

	i, _ := slices.BinarySearchFunc(r.categories, category, compareCategoryNames)
	r.categories = slices.Insert(r.categories, i, category)
}

// compareCategoryNames orders by lower-cased name, then by the exact name.
// The gateway sorts with ORDER BY lower(name), name but its collation may
// disagree, so the cache is always re-sorted with this key.
func compareCategoryNames(a, b domain.Category) int {
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}
