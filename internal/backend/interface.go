package backend

import (
	"context"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/query"
)

// IncomeReader serves the read side of the incomes API.
type IncomeReader interface {
	GetIncome(ctx context.Context, id string) (core.Income, error)
	QueryIncomes(ctx context.Context, p query.Params) (query.Connection[core.Income], error)
	TotalAmount(ctx context.Context, currency *string) (decimal.Decimal, error)
	Categories(ctx context.Context) ([]string, error)
}

// IncomeWriter adds and edits incomes.
type IncomeWriter interface {
	AddIncome(ctx context.Context, n core.NewIncome) (core.Income, error)
	EditIncome(ctx context.Context, id string, changes core.IncomeChanges) (core.Income, error)
}

// StatsReader serves the dashboard statistics.
type StatsReader interface {
	GetStats(ctx context.Context, includeNonRecurring bool) (core.IncomeStats, error)
	GetMonthlyStatsBack(ctx context.Context, monthsBack int) ([]core.MonthlyIncomeStats, error)
	GetMonthlyStatsForYear(ctx context.Context, year int) ([]core.MonthlyIncomeStats, error)
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Backend represents a unified backend interface that provides all necessary operations
type Backend interface {
	IncomeReader
	IncomeWriter
	StatsReader
	HealthChecker
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
