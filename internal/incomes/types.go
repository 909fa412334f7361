package incomes

import (
	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/gql"
	"fintrack/internal/query"
)

// field resolves a field of a Go value of type S. Sources of any other
// type resolve to null.
func field[S any](typ graphql.Output, get func(S) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			src, ok := p.Source.(S)
			if !ok {
				return nil, nil
			}
			return get(src), nil
		},
	}
}

func nonNull(t graphql.Type) graphql.Output {
	return graphql.NewNonNull(t)
}

// optionalDecimal keeps a nil pointer a nil interface so the field is null.
func optionalDecimal(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return *d
}

func optionalString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

var incomeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "IncomeDocument",
	Fields: graphql.Fields{
		"id":          field(nonNull(graphql.String), func(in core.Income) interface{} { return in.ID }),
		"date":        field(nonNull(gql.DateTime), func(in core.Income) interface{} { return in.Date }),
		"description": field(nonNull(graphql.String), func(in core.Income) interface{} { return in.Description }),
		"categories": field(nonNull(graphql.NewList(nonNull(graphql.String))), func(in core.Income) interface{} {
			if in.Categories == nil {
				return []string{}
			}
			return in.Categories
		}),
		"amount":    field(nonNull(gql.Decimal), func(in core.Income) interface{} { return in.Amount }),
		"currency":  field(nonNull(graphql.String), func(in core.Income) interface{} { return in.Currency }),
		"recurring": field(nonNull(graphql.Boolean), func(in core.Income) interface{} { return in.Recurring }),
		"createdAt": field(nonNull(gql.DateTime), func(in core.Income) interface{} { return in.CreatedAt }),
		"updatedAt": field(gql.DateTime, func(in core.Income) interface{} {
			if in.UpdatedAt == nil {
				return nil
			}
			return *in.UpdatedAt
		}),
	},
})

var pageInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "PageInfo",
	Description: "Information about pagination in a connection.",
	Fields: graphql.Fields{
		"hasNextPage": field(nonNull(graphql.Boolean), func(pi query.PageInfo) interface{} { return pi.HasNextPage }),
		"hasPreviousPage": field(nonNull(graphql.Boolean), func(pi query.PageInfo) interface{} {
			return pi.HasPreviousPage
		}),
		"startCursor": field(graphql.String, func(pi query.PageInfo) interface{} { return optionalString(pi.StartCursor) }),
		"endCursor":   field(graphql.String, func(pi query.PageInfo) interface{} { return optionalString(pi.EndCursor) }),
	},
})

type incomeEdge = query.Edge[core.Income]

type incomeConnection = query.Connection[core.Income]

var edgeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "IncomesEdge",
	Fields: graphql.Fields{
		"cursor": field(nonNull(graphql.String), func(e incomeEdge) interface{} { return e.Cursor }),
		"node":   field(nonNull(incomeType), func(e incomeEdge) interface{} { return e.Node }),
	},
})

var connectionType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "IncomesConnection",
	Description: "A connection to a list of items.",
	Fields: graphql.Fields{
		"edges":      field(graphql.NewList(nonNull(edgeType)), func(c incomeConnection) interface{} { return c.Edges }),
		"nodes":      field(graphql.NewList(nonNull(incomeType)), func(c incomeConnection) interface{} { return c.Nodes() }),
		"pageInfo":   field(nonNull(pageInfoType), func(c incomeConnection) interface{} { return c.PageInfo }),
		"totalCount": field(nonNull(graphql.Int), func(c incomeConnection) interface{} { return c.TotalCount }),
	},
})

var statsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "IncomeStats",
	Fields: graphql.Fields{
		"yearRecurringTotal": field(nonNull(gql.Decimal), func(s core.IncomeStats) interface{} {
			return s.YearRecurringTotal
		}),
		"lastMonthRecurringTotal": field(nonNull(gql.Decimal), func(s core.IncomeStats) interface{} {
			return s.LastMonthRecurringTotal
		}),
		"lastMonthRecurringChangePct": field(gql.Decimal, func(s core.IncomeStats) interface{} {
			return optionalDecimal(s.LastMonthRecurringChangePct)
		}),
		"thisMonthRecurringTotal": field(nonNull(gql.Decimal), func(s core.IncomeStats) interface{} {
			return s.ThisMonthRecurringTotal
		}),
		"thisMonthRecurringChangePct": field(gql.Decimal, func(s core.IncomeStats) interface{} {
			return optionalDecimal(s.ThisMonthRecurringChangePct)
		}),
		"last3MonthsRecurringAverage": field(nonNull(gql.Decimal), func(s core.IncomeStats) interface{} {
			return s.Last3MonthsRecurringAverage
		}),
	},
})

var monthlyStatsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MonthlyIncomeStats",
	Fields: graphql.Fields{
		"year":  field(nonNull(graphql.Int), func(s core.MonthlyIncomeStats) interface{} { return s.Year }),
		"month": field(nonNull(graphql.Int), func(s core.MonthlyIncomeStats) interface{} { return s.Month }),
		"recurringTotal": field(nonNull(gql.Decimal), func(s core.MonthlyIncomeStats) interface{} {
			return s.RecurringTotal
		}),
		"nonRecurringTotal": field(nonNull(gql.Decimal), func(s core.MonthlyIncomeStats) interface{} {
			return s.NonRecurringTotal
		}),
		"total": field(nonNull(gql.Decimal), func(s core.MonthlyIncomeStats) interface{} { return s.Total }),
	},
})
