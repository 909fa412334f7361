// Package stats computes windowed income summaries on top of the store's
// sum aggregations.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/period"
	"fintrack/internal/query"
)

// DefaultMonthsBack is the monthly breakdown length when none is given.
const DefaultMonthsBack = 12

var three = decimal.NewFromInt(3)

// Totals is the aggregation surface the service reads from.
type Totals interface {
	SumIncomesForPeriod(ctx context.Context, base query.Filter, start, end time.Time) (decimal.Decimal, error)
	IncomeMonthlyTotals(ctx context.Context, start, end time.Time) ([]core.MonthBucket, error)
}

type Service struct {
	totals Totals
	now    func() time.Time
}

type Option func(*Service)

// WithClock overrides the reference instant source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(totals Totals, opts ...Option) *Service {
	s := &Service{totals: totals, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetStats computes the recurring-income summary. With includeNonRecurring
// every income is summed. All windows derive from one captured instant and
// the sums run concurrently; any failed sum fails the call.
func (s *Service) GetStats(ctx context.Context, includeNonRecurring bool) (core.IncomeStats, error) {
	w := period.At(s.now())
	base := query.RecurringOnly()
	if includeNonRecurring {
		base = query.Filter{}
	}

	var year, thisMonth, lastMonth, twoMonthsAgo, lastThree decimal.Decimal
	sums := []struct {
		dst        *decimal.Decimal
		start, end time.Time
	}{
		{&year, w.StartOfThisYear, w.Now},
		{&thisMonth, w.StartOfThisMonth, w.Now},
		{&lastMonth, w.StartOfLastMonth, w.StartOfThisMonth},
		{&twoMonthsAgo, w.StartOfTwoMonthsAgo, w.StartOfLastMonth},
		{&lastThree, w.StartOfThreeMonthsAgo, w.StartOfThisMonth},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, sum := range sums {
		g.Go(func() error {
			total, err := s.totals.SumIncomesForPeriod(gctx, base, sum.start, sum.end)
			if err != nil {
				return fmt.Errorf("sum [%s, %s): %w",
					sum.start.Format(time.RFC3339), sum.end.Format(time.RFC3339), err)
			}
			*sum.dst = total
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.IncomeStats{}, err
	}

	return core.IncomeStats{
		YearRecurringTotal:          year,
		LastMonthRecurringTotal:     lastMonth,
		LastMonthRecurringChangePct: ChangePercent(lastMonth, twoMonthsAgo),
		ThisMonthRecurringTotal:     thisMonth,
		ThisMonthRecurringChangePct: ChangePercent(thisMonth, lastMonth),
		Last3MonthsRecurringAverage: lastThree.Div(three),
	}, nil
}

// GetMonthlyStatsBack returns the breakdown for the monthsBack months
// ending with the current month. monthsBack < 1 yields an empty result.
func (s *Service) GetMonthlyStatsBack(ctx context.Context, monthsBack int) ([]core.MonthlyIncomeStats, error) {
	return s.GetMonthlyStats(ctx, period.LastMonths(s.now(), monthsBack))
}

// GetMonthlyStatsForYear returns the January to December breakdown of year.
func (s *Service) GetMonthlyStatsForYear(ctx context.Context, year int) ([]core.MonthlyIncomeStats, error) {
	return s.GetMonthlyStats(ctx, period.CalendarYear(year))
}

// GetMonthlyStats returns one entry per calendar month of span in ascending
// order. Months without incomes are zero-filled.
func (s *Service) GetMonthlyStats(ctx context.Context, span period.Span) ([]core.MonthlyIncomeStats, error) {
	out := make([]core.MonthlyIncomeStats, 0, span.Len())
	if span.IsEmpty() {
		return out, nil
	}

	buckets, err := s.totals.IncomeMonthlyTotals(ctx, span.Start, span.End)
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}

	type split struct{ recurring, nonRecurring decimal.Decimal }
	byMonth := make(map[period.Key]*split, len(buckets))
	for _, b := range buckets {
		k := period.Key{Year: b.Year, Month: b.Month}
		sp, ok := byMonth[k]
		if !ok {
			sp = &split{}
			byMonth[k] = sp
		}
		if b.Recurring {
			sp.recurring = sp.recurring.Add(b.Total)
		} else {
			sp.nonRecurring = sp.nonRecurring.Add(b.Total)
		}
	}

	for m := range span.Months() {
		row := core.MonthlyIncomeStats{
			Year:              m.Year,
			Month:             int(m.Month),
			RecurringTotal:    decimal.Zero,
			NonRecurringTotal: decimal.Zero,
		}
		if sp, ok := byMonth[m.Key()]; ok {
			row.RecurringTotal = sp.recurring
			row.NonRecurringTotal = sp.nonRecurring
		}
		row.Total = row.RecurringTotal.Add(row.NonRecurringTotal)
		out = append(out, row)
	}
	return out, nil
}
