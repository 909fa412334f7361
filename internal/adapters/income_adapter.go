package adapters

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/query"
	"fintrack/internal/services"
	"fintrack/internal/stats"
	"fintrack/internal/storage"
)

// IncomeAdapter joins the repository (reads), the income service (writes)
// and the stats service into one backend. The category list is cached for
// the configured TTL and purged by every successful write. Stats are never
// cached: their windows depend on the instant of each call.
type IncomeAdapter struct {
	storage *storage.Repository
	service *services.IncomeService
	stats   *stats.Service

	categories     *cache.LRUCache[[]string]
	loadCategories func(context.Context) ([]string, error)
	generation     atomic.Uint64
}

const categoriesKey = "all"

func NewIncomeAdapter(storage *storage.Repository, service *services.IncomeService, stats *stats.Service, cacheTTL time.Duration) *IncomeAdapter {
	a := &IncomeAdapter{
		storage:        storage,
		service:        service,
		stats:          stats,
		loadCategories: storage.Categories,
	}
	if cacheTTL > 0 {
		a.categories = cache.NewLRUCache[[]string](1, cacheTTL)
	}
	return a
}

// Caches returns the adapter's caches for periodic expiry; nil when caching
// is disabled.
func (a *IncomeAdapter) Caches() []cache.Cleaner {
	if a.categories == nil {
		return nil
	}
	return []cache.Cleaner{a.categories}
}

func (a *IncomeAdapter) GetIncome(ctx context.Context, id string) (core.Income, error) {
	return a.storage.GetIncome(ctx, id)
}

func (a *IncomeAdapter) QueryIncomes(ctx context.Context, p query.Params) (query.Connection[core.Income], error) {
	return a.storage.QueryIncomes(ctx, p)
}

func (a *IncomeAdapter) TotalAmount(ctx context.Context, currency *string) (decimal.Decimal, error) {
	return a.storage.TotalAmount(ctx, currency)
}

// Categories serves the distinct category list from the cache when it is
// enabled. A load that overlaps a write is returned but not stored, and
// callers always get their own copy.
func (a *IncomeAdapter) Categories(ctx context.Context) ([]string, error) {
	if a.categories == nil {
		return a.loadCategories(ctx)
	}
	if v, ok := a.categories.Get(categoriesKey); ok {
		return slices.Clone(v), nil
	}

	gen := a.generation.Load()
	v, err := a.loadCategories(ctx)
	if err != nil {
		return nil, err
	}
	if a.generation.Load() == gen {
		a.categories.Set(categoriesKey, slices.Clone(v))
	}
	return v, nil
}

func (a *IncomeAdapter) GetStats(ctx context.Context, includeNonRecurring bool) (core.IncomeStats, error) {
	return a.stats.GetStats(ctx, includeNonRecurring)
}

func (a *IncomeAdapter) GetMonthlyStatsBack(ctx context.Context, monthsBack int) ([]core.MonthlyIncomeStats, error) {
	return a.stats.GetMonthlyStatsBack(ctx, monthsBack)
}

func (a *IncomeAdapter) GetMonthlyStatsForYear(ctx context.Context, year int) ([]core.MonthlyIncomeStats, error) {
	return a.stats.GetMonthlyStatsForYear(ctx, year)
}

func (a *IncomeAdapter) AddIncome(ctx context.Context, n core.NewIncome) (core.Income, error) {
	in, err := a.service.AddIncome(ctx, n)
	if err == nil {
		a.invalidate()
	}
	return in, err
}

func (a *IncomeAdapter) EditIncome(ctx context.Context, id string, changes core.IncomeChanges) (core.Income, error) {
	in, err := a.service.EditIncome(ctx, id, changes)
	if err == nil {
		a.invalidate()
	}
	return in, err
}

func (a *IncomeAdapter) Ping(ctx context.Context) error {
	return a.storage.Ping(ctx)
}

func (a *IncomeAdapter) invalidate() {
	a.generation.Add(1)
	if a.categories != nil {
		a.categories.Purge()
	}
}
