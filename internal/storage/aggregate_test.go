package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/query"
)

func TestSumForPeriodHalfOpenWindow(t *testing.T) {
	repo := newTestRepository(t)
	start := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	insertAll(t, repo,
		income("a", start, "100.00", true),                        // on start: included
		income("b", day(2024, time.February, 14), "50.25", true),  // inside
		income("c", end, "999.00", true),                          // on end: excluded
		income("d", start.Add(-time.Millisecond), "7.00", true),   // before start
		income("e", day(2024, time.February, 20), "30.00", false), // non-recurring
	)

	got, err := repo.SumIncomesForPeriod(context.Background(), query.Filter{}, start, end)
	if err != nil {
		t.Fatalf("SumIncomesForPeriod() error = %v", err)
	}
	assertDecimal(t, "all", got, "180.25")

	got, err = repo.SumIncomesForPeriod(context.Background(), query.RecurringOnly(), start, end)
	if err != nil {
		t.Fatalf("SumIncomesForPeriod() error = %v", err)
	}
	assertDecimal(t, "recurring", got, "150.25")
}

func TestSumForPeriodEmptyIsZero(t *testing.T) {
	repo := newTestRepository(t)
	insertAll(t, repo, income("a", day(2024, time.January, 10), "10.00", true))

	got, err := repo.SumIncomesForPeriod(context.Background(), query.Filter{},
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("SumIncomesForPeriod() error = %v", err)
	}
	if !got.IsZero() {
		t.Errorf("sum of empty window = %s, want 0", got)
	}
}

func TestAggregatorSumWithFilter(t *testing.T) {
	repo := newTestRepository(t)
	usd := income("b", day(2024, time.January, 2), "5.50", false)
	usd.Currency = "USD"
	insertAll(t, repo, income("a", day(2024, time.January, 1), "10.00", true), usd)

	c := repo.incomes
	got, err := repo.Aggregator().Sum(context.Background(), c, query.CurrencyIs("USD"), c.Amount)
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	assertDecimal(t, "usd", got, "5.50")
}

func TestMonthlyTotals(t *testing.T) {
	repo := newTestRepository(t)
	insertAll(t, repo,
		income("a", day(2024, time.January, 15), "1000", true),
		income("b", day(2024, time.February, 15), "1000", true),
		income("c", day(2024, time.March, 15), "500", false),
		income("d", day(2024, time.March, 20), "25", true),
		income("e", day(2024, time.March, 31), "75", false),
		income("f", day(2024, time.April, 1), "1", true), // outside
	)
	setRecurringNull(t, repo, "e")

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	buckets, err := repo.IncomeMonthlyTotals(context.Background(), start, end)
	if err != nil {
		t.Fatalf("IncomeMonthlyTotals() error = %v", err)
	}

	want := []struct {
		year, month int
		recurring   bool
		total       string
	}{
		{2024, 1, true, "1000"},
		{2024, 2, true, "1000"},
		{2024, 3, false, "575"},
		{2024, 3, true, "25"},
	}
	if len(buckets) != len(want) {
		t.Fatalf("got %d buckets %+v, want %d", len(buckets), buckets, len(want))
	}
	for i, w := range want {
		b := buckets[i]
		if b.Year != w.year || b.Month != w.month || b.Recurring != w.recurring {
			t.Errorf("bucket %d = %+v, want %+v", i, b, w)
		}
		assertDecimal(t, "bucket total", b.Total, w.total)
	}
}

func TestAggregatorCancelled(t *testing.T) {
	repo := newTestRepository(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.SumIncomesForPeriod(ctx, query.Filter{}, time.Time{}, time.Now())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var se *core.StoreError
	if !errors.As(err, &se) {
		t.Errorf("expected StoreError, got %T", err)
	}
}
