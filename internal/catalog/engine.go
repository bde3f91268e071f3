package catalog

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

// Strategy selects where category filtering happens. A deployment uses one.
type Strategy string

const (
	// StrategyServer re-queries the gateway with a category predicate on
	// every filter change.
	StrategyServer Strategy = "server"
	// StrategyClient reads the unfiltered set once and filters in memory.
	StrategyClient Strategy = "client"
)

// ParseStrategy maps a configuration value onto a Strategy
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyServer, StrategyClient:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown catalog filter strategy %q", s)
	}
}

// State is the loading state of the product listing
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Filter is the category selection of a listing. A nil CategoryID means
// every product.
type Filter struct {
	CategoryID *int64
}

// View is a snapshot of the engine's listing state
type View struct {
	State    State
	Loading  bool
	Filter   Filter
	Products []domain.Product
	Notice   *Notice
}

// ProductStore is the slice of the gateway the engine reads
type ProductStore interface {
	List(ctx context.Context, q repository.ProductQuery) ([]domain.Product, error)
}

var errFetchAborted = errors.New("product fetch aborted")

// Engine lists products newest first, filtered by category with the
// configured strategy. Every fetch carries a sequence token and only the
// response to the latest token is written into the engine's state; older
// responses still reach their own caller.
type Engine struct {
	store    ProductStore
	strategy Strategy
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu        sync.Mutex
	seq       uint64
	state     State
	filter    Filter
	all       []domain.Product
	view      []domain.Product
	fetchedAt time.Time
	stale     bool
	// generation counts Invalidate calls; a fetch started before the
	// latest one cannot mark the cache fresh
	generation uint64
	notice    *Notice
}

// EngineOption customizes an Engine
type EngineOption func(*Engine)

// WithCacheTTL bounds how long the client strategy reuses its unfiltered
// set. Zero keeps it until Invalidate or Refresh.
func WithCacheTTL(ttl time.Duration) EngineOption {
	return func(e *Engine) {
		e.cacheTTL = ttl
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an idle Engine
func NewEngine(store ProductStore, strategy Strategy, logger *zap.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    store,
		strategy: strategy,
		logger:   logger,
		now:      time.Now,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Strategy reports the filtering strategy in use
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// ListProducts returns the products matching filter ordered by id
// descending. With the client strategy a filter change is served from
// memory once the unfiltered set is loaded. A failed fetch leaves the
// engine in StateFailed with an empty listing and returns an empty slice.
func (e *Engine) ListProducts(ctx context.Context, filter Filter) ([]domain.Product, error) {
	if e.strategy == StrategyClient {
		e.mu.Lock()
		if e.cacheUsable() {
			e.filter = filter
			e.view = FilterByCategory(e.all, filter.CategoryID)
			products := slices.Clone(e.view)
			e.mu.Unlock()
			return products, nil
		}
		e.mu.Unlock()

		return e.fetch(ctx, filter, repository.ProductQuery{})
	}

	return e.fetch(ctx, filter, repository.ProductQuery{CategoryID: filter.CategoryID})
}

// Refresh re-reads the products for the current filter
func (e *Engine) Refresh(ctx context.Context) ([]domain.Product, error) {
	e.mu.Lock()
	filter := e.filter
	e.mu.Unlock()

	q := repository.ProductQuery{}
	if e.strategy == StrategyServer {
		q.CategoryID = filter.CategoryID
	}
	return e.fetch(ctx, filter, q)
}

// Invalidate makes the next listing go back to the gateway
func (e *Engine) Invalidate() {
	e.mu.Lock()
	e.stale = true
	e.generation++
	e.mu.Unlock()
}

// Loading reports whether the latest fetch is still in flight
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateLoading
}

// Snapshot returns a copy of the current listing state
func (e *Engine) Snapshot() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	return View{
		State:    e.state,
		Loading:  e.state == StateLoading,
		Filter:   e.filter,
		Products: slices.Clone(e.view),
		Notice:   e.notice,
	}
}

func (e *Engine) cacheUsable() bool {
	if e.state != StateLoaded || e.stale {
		return false
	}
	return e.cacheTTL <= 0 || e.now().Sub(e.fetchedAt) < e.cacheTTL
}

func (e *Engine) fetch(ctx context.Context, filter Filter, q repository.ProductQuery) ([]domain.Product, error) {
	e.mu.Lock()
	e.seq++
	token := e.seq
	generation := e.generation
	e.state = StateLoading
	e.filter = filter
	e.mu.Unlock()

	var (
		rows []domain.Product
		err  = errFetchAborted
	)
	// settle runs on every exit path so the loading state is always released
	defer func() { e.settle(token, generation, filter, rows, err) }()

	rows, err = e.store.List(ctx, q)
	if err != nil {
		e.logger.Error("Failed to fetch products",
			zap.Uint64("request", token),
			zap.String("strategy", string(e.strategy)),
			zap.Error(err),
		)
		return []domain.Product{}, fmt.Errorf("list products: %w", err)
	}

	slices.SortStableFunc(rows, func(a, b domain.Product) int {
		return cmp.Compare(b.ID, a.ID)
	})

	if e.strategy == StrategyClient {
		return slices.Clone(FilterByCategory(rows, filter.CategoryID)), nil
	}
	return slices.Clone(rows), nil
}

func (e *Engine) settle(token, generation uint64, filter Filter, rows []domain.Product, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if token != e.seq {
		e.logger.Debug("Discarding out-of-order product response",
			zap.Uint64("request", token),
			zap.Uint64("latest", e.seq),
		)
		return
	}

	if err != nil {
		e.state = StateFailed
		e.all = nil
		e.view = nil
		e.notice = ProductsNotice(err)
		return
	}

	e.state = StateLoaded
	e.notice = nil
	e.stale = generation != e.generation
	e.fetchedAt = e.now()

	if e.strategy == StrategyClient {
		e.all = rows
		e.view = FilterByCategory(rows, filter.CategoryID)
	} else {
		e.all = nil
		e.view = rows
	}
}
