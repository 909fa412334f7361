package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/query"
)

// Aggregator runs sum aggregations over any Collection. Each call is one
// round-trip; nothing is cached.
type Aggregator struct {
	db      *sql.DB
	dialect Dialect
	sb      sq.StatementBuilderType
}

// Sum totals amount over the records matching base. An empty match sums to
// zero.
func (a *Aggregator) Sum(ctx context.Context, c Collection, base query.Filter, amount AmountField) (decimal.Decimal, error) {
	q := a.sb.Select(sumExpr(c, amount)).From(c.Table)
	if w := whereClause(a.dialect, c, base); w != nil {
		q = q.Where(w)
	}
	return a.scanSum(ctx, "sum", q)
}

// SumForPeriod totals amount over the records matching base whose date lies
// in [start, end).
func (a *Aggregator) SumForPeriod(ctx context.Context, c Collection, base query.Filter, date TimeField, amount AmountField, start, end time.Time) (decimal.Decimal, error) {
	q := a.sb.Select(sumExpr(c, amount)).
		From(c.Table).
		Where(window(c, date, start, end))
	if w := whereClause(a.dialect, c, base); w != nil {
		q = q.Where(w)
	}
	return a.scanSum(ctx, "sum for period", q)
}

// MonthlyTotals groups the records matching base with date in [start, end)
// by UTC calendar month and recurring flag in a single query. Months
// without records are absent from the result.
func (a *Aggregator) MonthlyTotals(ctx context.Context, c Collection, base query.Filter, date TimeField, amount AmountField, recurring BoolField, start, end time.Time) ([]core.MonthBucket, error) {
	dateCol := c.Col(date.Column)
	q := a.sb.Select(
		a.dialect.Year(dateCol),
		a.dialect.Month(dateCol),
		fmt.Sprintf("CASE WHEN COALESCE(%s, FALSE) THEN 1 ELSE 0 END", c.Col(recurring.Column)),
		sumExpr(c, amount),
	).
		From(c.Table).
		Where(window(c, date, start, end)).
		GroupBy("1", "2", "3").
		OrderBy("1", "2", "3")
	if w := whereClause(a.dialect, c, base); w != nil {
		q = q.Where(w)
	}

	stmt, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build monthly totals query: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, core.WrapStore("monthly totals", err)
	}
	defer rows.Close()

	var buckets []core.MonthBucket
	for rows.Next() {
		var (
			year, month, rec int
			cents            int64
		)
		if err := rows.Scan(&year, &month, &rec, &cents); err != nil {
			return nil, core.WrapStore("scan monthly totals", err)
		}
		buckets = append(buckets, core.MonthBucket{
			Year:      year,
			Month:     month,
			Recurring: rec == 1,
			Total:     core.FromMinorUnits(cents),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapStore("monthly totals", err)
	}
	return buckets, nil
}

func (a *Aggregator) scanSum(ctx context.Context, op string, q sq.SelectBuilder) (decimal.Decimal, error) {
	stmt, args, err := q.ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("build %s query: %w", op, err)
	}

	var cents int64
	if err := a.db.QueryRowContext(ctx, stmt, args...).Scan(&cents); err != nil {
		return decimal.Zero, core.WrapStore(op, err)
	}
	return core.FromMinorUnits(cents), nil
}

func sumExpr(c Collection, amount AmountField) string {
	return fmt.Sprintf("CAST(COALESCE(SUM(%s), 0) AS BIGINT)", c.Col(amount.Column))
}
