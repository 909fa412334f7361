package incomes

import (
	"time"

	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/gql"
	"fintrack/internal/query"
)

var sortEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "SortEnumType",
	Values: graphql.EnumValueConfigMap{
		"ASC":  &graphql.EnumValueConfig{Value: string(query.Asc)},
		"DESC": &graphql.EnumValueConfig{Value: string(query.Desc)},
	},
})

var dateFilterInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "DateTimeOperationFilterInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"gte": &graphql.InputObjectFieldConfig{Type: gql.DateTime},
		"lte": &graphql.InputObjectFieldConfig{Type: gql.DateTime},
	},
})

var stringFilterInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "StringOperationFilterInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"eq":       &graphql.InputObjectFieldConfig{Type: graphql.String},
		"contains": &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var stringInFilterInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "StringInOperationFilterInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"in": &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
	},
})

var listFilterInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ListStringOperationFilterInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"some": &graphql.InputObjectFieldConfig{Type: stringInFilterInput},
	},
})

var boolFilterInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "BooleanOperationFilterInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"eq": &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
	},
})

var filterInput *graphql.InputObject

func init() {
	filterInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "IncomeDocumentFilterInput",
		Fields: graphql.InputObjectConfigFieldMapThunk(func() graphql.InputObjectConfigFieldMap {
			return graphql.InputObjectConfigFieldMap{
				"and":         &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(filterInput))},
				"or":          &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(filterInput))},
				"date":        &graphql.InputObjectFieldConfig{Type: dateFilterInput},
				"description": &graphql.InputObjectFieldConfig{Type: stringFilterInput},
				"currency":    &graphql.InputObjectFieldConfig{Type: stringFilterInput},
				"categories":  &graphql.InputObjectFieldConfig{Type: listFilterInput},
				"recurring":   &graphql.InputObjectFieldConfig{Type: boolFilterInput},
			}
		}),
	})
}

var sortInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name:   "IncomeDocumentSortInput",
	Fields: sortInputFields(),
})

func sortInputFields() graphql.InputObjectConfigFieldMap {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, f := range query.SortFields() {
		fields[string(f)] = &graphql.InputObjectFieldConfig{Type: sortEnum}
	}
	return fields
}

var addIncomeInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "AddIncomeInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"date":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(gql.DateTime)},
		"description": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"categories":  &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
		"amount":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(gql.Decimal)},
		"currency":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"recurring":   &graphql.InputObjectFieldConfig{Type: graphql.Boolean, DefaultValue: false},
	},
})

var editIncomeInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "EditIncomeInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"date":        &graphql.InputObjectFieldConfig{Type: gql.DateTime},
		"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"categories":  &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
		"amount":      &graphql.InputObjectFieldConfig{Type: gql.Decimal},
		"currency":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"recurring":   &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
	},
})

// Argument decoding. graphql-go has already coerced every value to its
// declared type, so the assertions below only fail for absent fields.

func object(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func optString(m map[string]interface{}, key string) *string {
	if s, ok := m[key].(string); ok {
		return &s
	}
	return nil
}

func optInt(m map[string]interface{}, key string) *int {
	if n, ok := m[key].(int); ok {
		return &n
	}
	return nil
}

func optBool(m map[string]interface{}, key string) *bool {
	if b, ok := m[key].(bool); ok {
		return &b
	}
	return nil
}

func optTime(m map[string]interface{}, key string) *time.Time {
	if t, ok := m[key].(time.Time); ok {
		return &t
	}
	return nil
}

func optDecimal(m map[string]interface{}, key string) *decimal.Decimal {
	if d, ok := m[key].(decimal.Decimal); ok {
		return &d
	}
	return nil
}

func stringList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func decodeFilter(m map[string]interface{}) query.Filter {
	var f query.Filter
	if v, ok := m["and"]; ok {
		f.And = decodeFilters(v)
	}
	if v, ok := m["or"]; ok {
		f.Or = decodeFilters(v)
	}
	if d := object(m["date"]); d != nil {
		f.Date = &query.DateRange{Gte: optTime(d, "gte"), Lte: optTime(d, "lte")}
	}
	if s := object(m["description"]); s != nil {
		f.Description = decodeStringFilter(s)
	}
	if s := object(m["currency"]); s != nil {
		f.Currency = decodeStringFilter(s)
	}
	if c := object(m["categories"]); c != nil {
		f.Categories = &query.ListFilter{}
		if some := object(c["some"]); some != nil {
			f.Categories.Some = &query.ListMatch{In: stringList(some["in"])}
		}
	}
	if b := object(m["recurring"]); b != nil {
		f.Recurring = &query.BoolFilter{Eq: optBool(b, "eq")}
	}
	return f
}

func decodeFilters(v interface{}) []query.Filter {
	items, _ := v.([]interface{})
	out := make([]query.Filter, 0, len(items))
	for _, item := range items {
		out = append(out, decodeFilter(object(item)))
	}
	return out
}

func decodeStringFilter(m map[string]interface{}) *query.StringFilter {
	return &query.StringFilter{Eq: optString(m, "eq"), Contains: optString(m, "contains")}
}

// decodeSort flattens the order list. Fields set on the same entry apply in
// SortFields order.
func decodeSort(v interface{}) (query.Sort, error) {
	items, _ := v.([]interface{})
	var s query.Sort
	for _, item := range items {
		entry := object(item)
		for _, f := range query.SortFields() {
			raw, ok := entry[string(f)].(string)
			if !ok {
				continue
			}
			dir, err := query.ParseSortDirection(raw)
			if err != nil {
				return nil, err
			}
			s = append(s, query.SortKey{Field: f, Direction: dir})
		}
	}
	return s, nil
}

func decodeConnectionArgs(args map[string]interface{}) (query.ConnectionArgs, error) {
	order, err := decodeSort(args["order"])
	if err != nil {
		return query.ConnectionArgs{}, err
	}
	ca := query.ConnectionArgs{
		First:  optInt(args, "first"),
		After:  optString(args, "after"),
		Last:   optInt(args, "last"),
		Before: optString(args, "before"),
		Order:  order,
	}
	if w := object(args["where"]); w != nil {
		f := decodeFilter(w)
		ca.Where = &f
	}
	return ca, nil
}

func decodeNewIncome(m map[string]interface{}) core.NewIncome {
	n := core.NewIncome{
		Categories: stringList(m["categories"]),
	}
	if t := optTime(m, "date"); t != nil {
		n.Date = *t
	}
	if s := optString(m, "description"); s != nil {
		n.Description = *s
	}
	if d := optDecimal(m, "amount"); d != nil {
		n.Amount = *d
	}
	if s := optString(m, "currency"); s != nil {
		n.Currency = *s
	}
	if b := optBool(m, "recurring"); b != nil {
		n.Recurring = *b
	}
	return n
}

func decodeIncomeChanges(m map[string]interface{}) core.IncomeChanges {
	c := core.IncomeChanges{
		Date:        optTime(m, "date"),
		Description: optString(m, "description"),
		Amount:      optDecimal(m, "amount"),
		Currency:    optString(m, "currency"),
		Recurring:   optBool(m, "recurring"),
	}
	if raw, ok := m["categories"]; ok && raw != nil {
		c.Categories = stringList(raw)
	}
	return c
}
