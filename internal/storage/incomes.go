package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/query"
)

func (r *Repository) incomeColumns() []string {
	c := r.incomes
	return []string{
		c.Col(c.ID.Column),
		c.Col(c.Date.Column),
		c.Col(c.Description.Column),
		c.Col(c.Amount.Column),
		c.Col(c.Currency.Column),
		c.Col(c.Recurring.Column),
		c.Col(c.CreatedAt.Column),
		c.Col(c.UpdatedAt.Column),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncome(s rowScanner) (core.Income, error) {
	var (
		in                   core.Income
		date, created, cents int64
		recurring            sql.NullBool
		updated              sql.NullInt64
	)
	if err := s.Scan(&in.ID, &date, &in.Description, &cents, &in.Currency, &recurring, &created, &updated); err != nil {
		return core.Income{}, err
	}
	in.Date = fromMillis(date)
	in.Amount = core.FromMinorUnits(cents)
	in.Recurring = recurring.Valid && recurring.Bool
	in.CreatedAt = fromMillis(created)
	if updated.Valid {
		t := fromMillis(updated.Int64)
		in.UpdatedAt = &t
	}
	in.Categories = []string{}
	return in, nil
}

// InsertIncome stores a new income and its categories in one transaction.
func (r *Repository) InsertIncome(ctx context.Context, in core.Income) error {
	cents, err := core.ToMinorUnits(in.Amount)
	if err != nil {
		return fmt.Errorf("convert amount: %w", err)
	}

	c := r.incomes
	insert := r.sb.Insert(c.Table).
		Columns(c.ID.Column, c.Date.Column, c.Description.Column, c.Amount.Column,
			c.Currency.Column, c.Recurring.Column, c.CreatedAt.Column).
		Values(in.ID, toMillis(in.Date), in.Description, cents,
			in.Currency, in.Recurring, toMillis(in.CreatedAt))

	err = r.inTx(ctx, func(tx *sql.Tx) error {
		if err := r.exec(ctx, tx, insert); err != nil {
			return core.WrapStore("insert income", err)
		}
		return r.writeCategories(ctx, tx, in.ID, in.Categories)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Income saved",
		"id", in.ID,
		"description", in.Description,
		"amount_cents", cents,
		"currency", in.Currency,
		"dialect", r.dialect.Name())
	return nil
}

// UpdateIncome replaces the stored fields and categories of an existing
// income. It returns core.ErrNotFound when the id is unknown.
func (r *Repository) UpdateIncome(ctx context.Context, in core.Income) error {
	cents, err := core.ToMinorUnits(in.Amount)
	if err != nil {
		return fmt.Errorf("convert amount: %w", err)
	}

	var updatedAt any
	if in.UpdatedAt != nil {
		updatedAt = toMillis(*in.UpdatedAt)
	}

	c := r.incomes
	update := r.sb.Update(c.Table).
		Set(c.Date.Column, toMillis(in.Date)).
		Set(c.Description.Column, in.Description).
		Set(c.Amount.Column, cents).
		Set(c.Currency.Column, in.Currency).
		Set(c.Recurring.Column, in.Recurring).
		Set(c.UpdatedAt.Column, updatedAt).
		Where(sq.Eq{c.ID.Column: in.ID})

	return r.inTx(ctx, func(tx *sql.Tx) error {
		stmt, args, err := update.ToSql()
		if err != nil {
			return fmt.Errorf("build update: %w", err)
		}
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return core.WrapStore("update income", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return core.WrapStore("update income", err)
		}
		if n == 0 {
			return fmt.Errorf("income %s: %w", in.ID, core.ErrNotFound)
		}

		del := r.sb.Delete(c.Categories.Table).Where(sq.Eq{c.Categories.ParentID: in.ID})
		if err := r.exec(ctx, tx, del); err != nil {
			return core.WrapStore("clear categories", err)
		}
		return r.writeCategories(ctx, tx, in.ID, in.Categories)
	})
}

func (r *Repository) writeCategories(ctx context.Context, tx *sql.Tx, id string, categories []string) error {
	if len(categories) == 0 {
		return nil
	}
	t := r.incomes.Categories
	insert := r.sb.Insert(t.Table).Columns(t.ParentID, t.Position, t.Value)
	for i, name := range categories {
		insert = insert.Values(id, i, name)
	}
	if err := r.exec(ctx, tx, insert); err != nil {
		return core.WrapStore("insert categories", err)
	}
	return nil
}

// GetIncome loads one income by id.
func (r *Repository) GetIncome(ctx context.Context, id string) (core.Income, error) {
	c := r.incomes
	stmt, args, err := r.sb.Select(r.incomeColumns()...).
		From(c.Table).
		Where(sq.Eq{c.Col(c.ID.Column): id}).
		ToSql()
	if err != nil {
		return core.Income{}, fmt.Errorf("build select: %w", err)
	}

	in, err := scanIncome(r.db.QueryRowContext(ctx, stmt, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, fmt.Errorf("income %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Income{}, core.WrapStore("get income", err)
	}

	incomes := []core.Income{in}
	if err := r.loadCategories(ctx, incomes); err != nil {
		return core.Income{}, err
	}
	return incomes[0], nil
}

// TotalAmount sums every income, optionally restricted to one currency.
func (r *Repository) TotalAmount(ctx context.Context, currency *string) (decimal.Decimal, error) {
	var f query.Filter
	if currency != nil {
		f = query.CurrencyIs(*currency)
	}
	return r.Aggregator().Sum(ctx, r.incomes, f, r.incomes.Amount)
}

// Categories lists every category in use, de-duplicated and sorted
// bytewise so the order does not depend on the database collation.
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	t := r.incomes.Categories
	stmt, args, err := r.sb.Select(t.Value).Distinct().From(t.Table).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build categories query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, core.WrapStore("list categories", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, core.WrapStore("scan category", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapStore("list categories", err)
	}
	slices.Sort(names)
	return names, nil
}

// SumIncomesForPeriod totals incomes matching base dated in [start, end).
func (r *Repository) SumIncomesForPeriod(ctx context.Context, base query.Filter, start, end time.Time) (decimal.Decimal, error) {
	c := r.incomes
	return r.Aggregator().SumForPeriod(ctx, c, base, c.Date, c.Amount, start, end)
}

// IncomeMonthlyTotals groups incomes dated in [start, end) by month and
// recurring flag.
func (r *Repository) IncomeMonthlyTotals(ctx context.Context, start, end time.Time) ([]core.MonthBucket, error) {
	c := r.incomes
	return r.Aggregator().MonthlyTotals(ctx, c, query.Filter{}, c.Date, c.Amount, c.Recurring, start, end)
}

// QueryIncomes returns one page of incomes for p using keyset pagination
// over the sort keys and id.
func (r *Repository) QueryIncomes(ctx context.Context, p query.Params) (query.Connection[core.Income], error) {
	c := r.incomes
	cols, err := sortColumns(c, p.Sort)
	if err != nil {
		return query.Connection[core.Income]{}, err
	}
	where := whereClause(r.dialect, c, p.Filter)

	total, err := r.count(ctx, where)
	if err != nil {
		return query.Connection[core.Income]{}, err
	}

	fetch := r.sb.Select(r.incomeColumns()...).
		From(c.Table).
		OrderBy(orderBy(cols, p.Backward())...).
		Limit(uint64(p.Size + 1))
	if where != nil {
		fetch = fetch.Where(where)
	}
	if p.Cursor != nil {
		fetch = fetch.Where(seek(cols, p.Cursor, p.Backward()))
	}

	incomes, err := r.queryIncomes(ctx, fetch)
	if err != nil {
		return query.Connection[core.Income]{}, err
	}
	if err := r.loadCategories(ctx, incomes); err != nil {
		return query.Connection[core.Income]{}, err
	}

	beyond := false
	if p.Cursor != nil {
		// Rows on the far side of the cursor, the cursor row included.
		far, err := negate(seek(cols, p.Cursor, p.Backward()))
		if err != nil {
			return query.Connection[core.Income]{}, fmt.Errorf("build probe: %w", err)
		}
		if beyond, err = r.exists(ctx, where, far); err != nil {
			return query.Connection[core.Income]{}, err
		}
	}

	page := query.Page[core.Income]{Rows: incomes, Beyond: beyond, TotalCount: total}
	return query.NewConnection(p, page, cursorOf(p.Sort, cols)), nil
}

func (r *Repository) count(ctx context.Context, where sq.Sqlizer) (int, error) {
	q := r.sb.Select("COUNT(*)").From(r.incomes.Table)
	if where != nil {
		q = q.Where(where)
	}
	stmt, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, core.WrapStore("count incomes", err)
	}
	return n, nil
}

func (r *Repository) exists(ctx context.Context, preds ...sq.Sqlizer) (bool, error) {
	q := r.sb.Select("1").From(r.incomes.Table).Limit(1)
	for _, p := range preds {
		if p != nil {
			q = q.Where(p)
		}
	}
	stmt, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build probe: %w", err)
	}
	var one int
	err = r.db.QueryRowContext(ctx, stmt, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, core.WrapStore("probe incomes", err)
	}
	return true, nil
}

func (r *Repository) queryIncomes(ctx context.Context, q sq.SelectBuilder) ([]core.Income, error) {
	stmt, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, core.WrapStore("query incomes", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, core.WrapStore("scan income", err)
		}
		incomes = append(incomes, in)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapStore("query incomes", err)
	}
	return incomes, nil
}

// loadCategories fills the categories of incomes with one query.
func (r *Repository) loadCategories(ctx context.Context, incomes []core.Income) error {
	if len(incomes) == 0 {
		return nil
	}
	index := make(map[string]int, len(incomes))
	ids := make([]string, len(incomes))
	for i, in := range incomes {
		index[in.ID] = i
		ids[i] = in.ID
	}

	t := r.incomes.Categories
	stmt, args, err := r.sb.Select(t.ParentID, t.Value).
		From(t.Table).
		Where(sq.Eq{t.ParentID: ids}).
		OrderBy(t.ParentID, t.Position).
		ToSql()
	if err != nil {
		return fmt.Errorf("build categories query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return core.WrapStore("load categories", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return core.WrapStore("scan category", err)
		}
		if i, ok := index[id]; ok {
			incomes[i].Categories = append(incomes[i].Categories, name)
		}
	}
	if err := rows.Err(); err != nil {
		return core.WrapStore("load categories", err)
	}
	return nil
}

func (r *Repository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.WrapStore("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return core.WrapStore("commit transaction", err)
	}
	return nil
}

func (r *Repository) exec(ctx context.Context, tx *sql.Tx, q sq.Sqlizer) error {
	stmt, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build statement: %w", err)
	}
	_, err = tx.ExecContext(ctx, stmt, args...)
	return err
}
