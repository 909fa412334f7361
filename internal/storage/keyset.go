package storage

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"fintrack/internal/core"
	"fintrack/internal/query"
)

// sortColumn is one ORDER BY key with the cursor value it reads from a row.
type sortColumn struct {
	column string
	desc   bool
	value  func(core.Income) any
}

// sortColumns resolves the requested sort against c and appends the id
// tie-break. With no sort the id order alone applies.
func sortColumns(c Collection, s query.Sort) ([]sortColumn, error) {
	cols := make([]sortColumn, 0, len(s)+1)
	for _, k := range s {
		sc := sortColumn{desc: k.Direction == query.Desc}
		switch k.Field {
		case query.SortDate:
			sc.column = c.Col(c.Date.Column)
			sc.value = func(in core.Income) any { return toMillis(in.Date) }
		case query.SortAmount:
			sc.column = c.Col(c.Amount.Column)
			sc.value = func(in core.Income) any {
				cents, _ := core.ToMinorUnits(in.Amount)
				return cents
			}
		case query.SortDescription:
			sc.column = c.Col(c.Description.Column)
			sc.value = func(in core.Income) any { return in.Description }
		case query.SortCreatedAt:
			sc.column = c.Col(c.CreatedAt.Column)
			sc.value = func(in core.Income) any { return toMillis(in.CreatedAt) }
		default:
			return nil, core.Validationf("order", "unknown sort field %q", k.Field)
		}
		cols = append(cols, sc)
	}
	cols = append(cols, sortColumn{
		column: c.Col(c.ID.Column),
		value:  func(in core.Income) any { return in.ID },
	})
	return cols, nil
}

// orderBy renders the ORDER BY terms, inverted for backward fetches.
func orderBy(cols []sortColumn, backward bool) []string {
	terms := make([]string, len(cols))
	for i, sc := range cols {
		dir := "ASC"
		if sc.desc != backward {
			dir = "DESC"
		}
		terms[i] = sc.column + " " + dir
	}
	return terms
}

// seek matches rows strictly after (or, when backward, strictly before) the
// cursor position in sort order:
//
//	k1 > v1 OR (k1 = v1 AND k2 > v2) OR ... OR (k1 = v1 AND ... AND id > cid)
func seek(cols []sortColumn, cur *query.Cursor, backward bool) sq.Sqlizer {
	values := append(append([]any{}, cur.Values...), cur.ID)

	var or sq.Or
	for i, sc := range cols {
		var and sq.And
		for j := 0; j < i; j++ {
			and = append(and, sq.Eq{cols[j].column: values[j]})
		}
		if sc.desc != backward {
			and = append(and, sq.Lt{sc.column: values[i]})
		} else {
			and = append(and, sq.Gt{sc.column: values[i]})
		}
		or = append(or, and)
	}
	return or
}

func negate(pred sq.Sqlizer) (sq.Sqlizer, error) {
	stmt, args, err := pred.ToSql()
	if err != nil {
		return nil, err
	}
	return sq.Expr(fmt.Sprintf("NOT (%s)", stmt), args...), nil
}

func cursorOf(sort query.Sort, cols []sortColumn) func(core.Income) query.Cursor {
	sig := sort.Signature()
	return func(in core.Income) query.Cursor {
		values := make([]any, len(cols)-1)
		for i := range values {
			values[i] = cols[i].value(in)
		}
		return query.Cursor{Sort: sig, Values: values, ID: in.ID}
	}
}
