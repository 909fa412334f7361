package storage

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"fintrack/internal/query"
)

var (
	matchAll  = sq.Expr("1=1")
	matchNone = sq.Expr("1=0")
)

// whereClause translates a filter into a predicate over c. It returns nil
// for an empty filter.
func whereClause(d Dialect, c Collection, f query.Filter) sq.Sqlizer {
	var parts sq.And

	if f.Date != nil {
		col := c.Col(c.Date.Column)
		if f.Date.Gte != nil {
			parts = append(parts, sq.GtOrEq{col: toMillis(*f.Date.Gte)})
		}
		if f.Date.Lte != nil {
			parts = append(parts, sq.LtOrEq{col: toMillis(*f.Date.Lte)})
		}
	}
	if f.Description != nil {
		col := c.Col(c.Description.Column)
		if f.Description.Eq != nil {
			parts = append(parts, sq.Eq{col: *f.Description.Eq})
		}
		if f.Description.Contains != nil {
			parts = append(parts, sq.Expr(d.Contains(col), *f.Description.Contains))
		}
	}
	if f.Currency != nil && f.Currency.Eq != nil {
		parts = append(parts, sq.Eq{c.Col(c.Currency.Column): *f.Currency.Eq})
	}
	if f.Recurring != nil && f.Recurring.Eq != nil {
		parts = append(parts, recurringIs(c, *f.Recurring.Eq))
	}
	if f.Categories != nil && f.Categories.Some != nil {
		parts = append(parts, anyTagIn(c, f.Categories.Some.In))
	}
	for _, sub := range f.And {
		if w := whereClause(d, c, sub); w != nil {
			parts = append(parts, w)
		}
	}
	if len(f.Or) > 0 {
		parts = append(parts, orClause(d, c, f.Or))
	}

	if len(parts) == 0 {
		return nil
	}
	return parts
}

func orClause(d Dialect, c Collection, filters []query.Filter) sq.Sqlizer {
	var or sq.Or
	for _, sub := range filters {
		w := whereClause(d, c, sub)
		if w == nil {
			return matchAll
		}
		or = append(or, w)
	}
	return or
}

func recurringIs(c Collection, want bool) sq.Sqlizer {
	expr := fmt.Sprintf("COALESCE(%s, FALSE)", c.Col(c.Recurring.Column))
	if !want {
		expr = "NOT " + expr
	}
	return sq.Expr(expr)
}

func anyTagIn(c Collection, values []string) sq.Sqlizer {
	if len(values) == 0 {
		return matchNone
	}
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	t := c.Categories
	return sq.Expr(fmt.Sprintf(
		"EXISTS (SELECT 1 FROM %s t WHERE t.%s = %s AND t.%s IN (%s))",
		t.Table, t.ParentID, c.Col(c.ID.Column), t.Value, sq.Placeholders(len(values)),
	), args...)
}

// window restricts a time column to [start, end).
func window(c Collection, f TimeField, start, end time.Time) sq.Sqlizer {
	col := c.Col(f.Column)
	return sq.And{
		sq.GtOrEq{col: toMillis(start)},
		sq.Lt{col: toMillis(end)},
	}
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
