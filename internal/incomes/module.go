// Package incomes exposes income records and their statistics through the
// GraphQL schema.
package incomes

import (
	"errors"
	"strings"

	"github.com/graphql-go/graphql"

	"fintrack/internal/backend"
	"fintrack/internal/core"
	"fintrack/internal/gql"
	applog "fintrack/internal/log"
	"fintrack/internal/query"
)

const (
	defaultMonthsBack = 12
	maxMonthsBack     = 240
	minYear           = 1
	maxYear           = 9999
)

// Module contributes the incomes query and mutation fields.
type Module struct {
	backend    backend.Backend
	limits     query.Limits
	structured *applog.StructuredLogger
}

var _ gql.Module = (*Module)(nil)

func New(b backend.Backend, limits query.Limits, logger *applog.Logger) *Module {
	return &Module{
		backend:    b,
		limits:     limits,
		structured: applog.NewStructuredLogger(logger.WithComponent(applog.ComponentIncome)),
	}
}

// resolver classifies errors so every failure carries an extensions code.
func resolver(fn graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		v, err := fn(p)
		if err != nil {
			return nil, gql.Classify(p.Context, err)
		}
		return v, nil
	}
}

func (m *Module) QueryFields() graphql.Fields {
	return graphql.Fields{
		"incomes": &graphql.Field{
			Type: connectionType,
			Args: graphql.FieldConfigArgument{
				"first":  &graphql.ArgumentConfig{Type: graphql.Int},
				"after":  &graphql.ArgumentConfig{Type: graphql.String},
				"last":   &graphql.ArgumentConfig{Type: graphql.Int},
				"before": &graphql.ArgumentConfig{Type: graphql.String},
				"where":  &graphql.ArgumentConfig{Type: filterInput},
				"order":  &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(sortInput))},
			},
			Resolve: resolver(m.incomes),
		},
		"incomeById": &graphql.Field{
			Type: incomeType,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: resolver(m.incomeByID),
		},
		"totalAmount": &graphql.Field{
			Type: graphql.NewNonNull(gql.Decimal),
			Args: graphql.FieldConfigArgument{
				"currency": &graphql.ArgumentConfig{Type: graphql.String},
			},
			Resolve: resolver(m.totalAmount),
		},
		"categories": &graphql.Field{
			Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String))),
			Resolve: resolver(m.categories),
		},
		"incomeStats": &graphql.Field{
			Type: graphql.NewNonNull(statsType),
			Args: graphql.FieldConfigArgument{
				"includeNonRecurring": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
			},
			Resolve: resolver(m.incomeStats),
		},
		"incomeMonthlyStats": &graphql.Field{
			Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(monthlyStatsType))),
			Args: graphql.FieldConfigArgument{
				"monthsBack": &graphql.ArgumentConfig{
					Type:        graphql.Int,
					Description: "Months ending with the current one. Defaults to 12 when year is not given.",
				},
				"year": &graphql.ArgumentConfig{
					Type:        graphql.Int,
					Description: "Calendar year to break down, January to December.",
				},
			},
			Resolve: resolver(m.incomeMonthlyStats),
		},
	}
}

func (m *Module) MutationFields() graphql.Fields {
	return graphql.Fields{
		"addIncome": &graphql.Field{
			Type: graphql.NewNonNull(incomeType),
			Args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(addIncomeInput)},
			},
			Resolve: resolver(m.addIncome),
		},
		"editIncome": &graphql.Field{
			Type: graphql.NewNonNull(incomeType),
			Args: graphql.FieldConfigArgument{
				"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(editIncomeInput)},
			},
			Resolve: resolver(m.editIncome),
		},
	}
}

func (m *Module) incomes(p graphql.ResolveParams) (interface{}, error) {
	args, err := decodeConnectionArgs(p.Args)
	if err != nil {
		return nil, err
	}
	params, err := query.BuildParams(args, m.limits)
	if err != nil {
		return nil, err
	}
	return m.backend.QueryIncomes(p.Context, params)
}

// incomeByID resolves to null for unknown ids.
func (m *Module) incomeByID(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	in, err := m.backend.GetIncome(p.Context, id)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return in, nil
}

// totalAmount sums every record, or those in one currency. An empty
// currency is the same as none.
func (m *Module) totalAmount(p graphql.ResolveParams) (interface{}, error) {
	currency := optString(p.Args, "currency")
	if currency != nil && strings.TrimSpace(*currency) == "" {
		currency = nil
	}
	return m.backend.TotalAmount(p.Context, currency)
}

func (m *Module) categories(p graphql.ResolveParams) (interface{}, error) {
	cats, err := m.backend.Categories(p.Context)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

func (m *Module) incomeStats(p graphql.ResolveParams) (interface{}, error) {
	include, _ := p.Args["includeNonRecurring"].(bool)
	return m.backend.GetStats(p.Context, include)
}

func (m *Module) incomeMonthlyStats(p graphql.ResolveParams) (interface{}, error) {
	var (
		rows []core.MonthlyIncomeStats
		err  error
	)
	year, back := optInt(p.Args, "year"), optInt(p.Args, "monthsBack")
	switch {
	case year != nil && back != nil:
		return nil, core.Validationf("year", "cannot be combined with monthsBack")
	case year != nil:
		if *year < minYear || *year > maxYear {
			return nil, core.Validationf("year", "must be between %d and %d", minYear, maxYear)
		}
		rows, err = m.backend.GetMonthlyStatsForYear(p.Context, *year)
	default:
		monthsBack := defaultMonthsBack
		if back != nil {
			monthsBack = *back
		}
		if monthsBack > maxMonthsBack {
			return nil, core.Validationf("monthsBack", "must be at most %d", maxMonthsBack)
		}
		rows, err = m.backend.GetMonthlyStatsBack(p.Context, monthsBack)
	}
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []core.MonthlyIncomeStats{}
	}
	return rows, nil
}

func (m *Module) addIncome(p graphql.ResolveParams) (interface{}, error) {
	in, err := m.backend.AddIncome(p.Context, decodeNewIncome(object(p.Args["input"])))
	if err != nil {
		return nil, err
	}
	m.structured.LogIncomeWritten(p.Context, applog.OpCreate, in.ID, in.Description, in.Amount.String(), in.Currency, in.Recurring)
	return in, nil
}

func (m *Module) editIncome(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	in, err := m.backend.EditIncome(p.Context, id, decodeIncomeChanges(object(p.Args["input"])))
	if err != nil {
		return nil, err
	}
	m.structured.LogIncomeWritten(p.Context, applog.OpUpdate, in.ID, in.Description, in.Amount.String(), in.Currency, in.Recurring)
	return in, nil
}
