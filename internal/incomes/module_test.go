package incomes

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/graphql-go/graphql"

	"fintrack/internal/backend"
	"fintrack/internal/gql"
	applog "fintrack/internal/log"
	"fintrack/internal/query"
)

func newSchema(t *testing.T, limits query.Limits) graphql.Schema {
	t.Helper()
	logger := applog.New(applog.Config{Output: io.Discard})
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backend.Config{
		Type:         backend.SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "fintrack.db"),
	})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	t.Cleanup(func() { _ = result.Cleanup() })

	schema, err := gql.NewSchema(New(result.Backend, limits, logger))
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}
	return schema
}

func run(t *testing.T, schema graphql.Schema, q string, vars map[string]interface{}) *graphql.Result {
	t.Helper()
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  q,
		VariableValues: vars,
		Context:        context.Background(),
	})
}

// mustRun fails the test on any GraphQL error and decodes data into out.
func mustRun(t *testing.T, schema graphql.Schema, q string, vars map[string]interface{}, out interface{}) {
	t.Helper()
	res := run(t, schema, q, vars)
	if res.HasErrors() {
		t.Fatalf("query failed: %v", res.Errors)
	}
	raw, err := json.Marshal(res.Data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("unmarshal data %s: %v", raw, err)
	}
}

func errorCode(t *testing.T, res *graphql.Result) string {
	t.Helper()
	if len(res.Errors) == 0 {
		t.Fatal("expected an error")
	}
	code, _ := res.Errors[0].Extensions["code"].(string)
	return code
}

const addMutation = `mutation($input: AddIncomeInput!) {
	addIncome(input: $input) { id description amount currency recurring categories date createdAt updatedAt }
}`

type incomeJSON struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	Currency    string   `json:"currency"`
	Recurring   bool     `json:"recurring"`
	Categories  []string `json:"categories"`
	Date        string   `json:"date"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   *string  `json:"updatedAt"`
}

func addIncome(t *testing.T, schema graphql.Schema, input map[string]interface{}) incomeJSON {
	t.Helper()
	var out struct {
		AddIncome incomeJSON `json:"addIncome"`
	}
	mustRun(t, schema, addMutation, map[string]interface{}{"input": input}, &out)
	return out.AddIncome
}

func seed(t *testing.T, schema graphql.Schema) []incomeJSON {
	t.Helper()
	inputs := []map[string]interface{}{
		{"date": "2024-01-15T00:00:00Z", "description": "January salary", "amount": "1000", "currency": "EUR", "recurring": true, "categories": []interface{}{"work"}},
		{"date": "2024-02-15T00:00:00Z", "description": "February salary", "amount": "1000", "currency": "EUR", "recurring": true, "categories": []interface{}{"work"}},
		{"date": "2024-03-15T00:00:00Z", "description": "Sold bike", "amount": "500", "currency": "EUR", "categories": []interface{}{"sale", "misc"}},
		{"date": "2024-04-01", "description": "Refund", "amount": 25.5, "currency": "usd"},
	}
	out := make([]incomeJSON, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, addIncome(t, schema, in))
	}
	return out
}

func TestAddIncome(t *testing.T) {
	schema := newSchema(t, query.DefaultLimits())
	added := seed(t, schema)

	refund := added[3]
	if refund.ID == "" {
		t.Fatal("addIncome returned an empty id")
	}
	if refund.Currency != "USD" {
		t.Errorf("currency = %q, want normalized USD", refund.Currency)
	}
	if refund.Amount != 25.5 {
		t.Errorf("amount = %v, want 25.5", refund.Amount)
	}
	if refund.Date != "2024-04-01T00:00:00Z" {
		t.Errorf("date = %q, want bare date as midnight UTC", refund.Date)
	}
	if refund.Recurring {
		t.Error("recurring should default to false")
	}
	if refund.Categories == nil || len(refund.Categories) != 0 {
		t.Errorf("categories = %v, want empty list", refund.Categories)
	}
	if refund.UpdatedAt != nil {
		t.Errorf("updatedAt = %v, want null before any edit", *refund.UpdatedAt)
	}
}

func TestEditIncome(t *testing.T) {
	schema := newSchema(t, query.DefaultLimits())
	added := seed(t, schema)

	var out struct {
		EditIncome incomeJSON `json:"editIncome"`
	}
	mustRun(t, schema, `mutation($id: String!) {
		editIncome(id: $id, input: {amount: "1200.25", categories: ["work", "bonus"]}) {
			id description amount categories updatedAt
		}
	}`, map[string]interface{}{"id": added[0].ID}, &out)

	got := out.EditIncome
	if got.ID != added[0].ID || got.Description != "January salary" {
		t.Errorf("editIncome changed untouched fields: %+v", got)
	}
	if got.Amount != 1200.25 {
		t.Errorf("amount = %v, want 1200.25", got.Amount)
	}
	if len(got.Categories) != 2 || got.Categories[1] != "bonus" {
		t.Errorf("categories = %v", got.Categories)
	}
	if got.UpdatedAt == nil {
		t.Error("updatedAt should be set after an edit")
	}
}

type pageJSON struct {
	Incomes struct {
		Nodes []incomeJSON `json:"nodes"`
		Edges    []struct {
			Cursor string     `json:"cursor"`
			Node   incomeJSON `json:"node"`
		} `json:"edges"`
		PageInfo struct {
			HasNextPage     bool    `json:"hasNextPage"`
			HasPreviousPage bool    `json:"hasPreviousPage"`
			StartCursor     *string `json:"startCursor"`
			EndCursor       *string `json:"endCursor"`
		} `json:"pageInfo"`
		TotalCount int `json:"totalCount"`
	} `json:"incomes"`
}

const pageQuery = `query($first: Int, $after: String, $last: Int, $before: String, $where: IncomeDocumentFilterInput) {
	incomes(first: $first, after: $after, last: $last, before: $before, where: $where, order: [{date: ASC}]) {
		nodes { id description }
		edges { cursor node { id } }
		pageInfo { hasNextPage hasPreviousPage startCursor endCursor }
		totalCount
	}
}`

func descriptions(nodes []incomeJSON) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Description
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestIncomesPagination(t *testing.T) {
	schema := newSchema(t, query.DefaultLimits())
	seed(t, schema)

	var first pageJSON
	mustRun(t, schema, pageQuery, map[string]interface{}{"first": 2}, &first)
	want := []string{"January salary", "February salary"}
	if got := descriptions(first.Incomes.Nodes); !equal(got, want) {
		t.Fatalf("first page = %v, want %v", got, want)
	}
	if first.Incomes.TotalCount != 4 {
		t.Errorf("totalCount = %d, want 4", first.Incomes.TotalCount)
	}
	if !first.Incomes.PageInfo.HasNextPage || first.Incomes.PageInfo.HasPreviousPage {
		t.Errorf("first pageInfo = %+v", first.Incomes.PageInfo)
	}
	if len(first.Incomes.Edges) != 2 || first.Incomes.Edges[1].Cursor != *first.Incomes.PageInfo.EndCursor {
		t.Errorf("endCursor should be the last edge's cursor")
	}

	var second pageJSON
	mustRun(t, schema, pageQuery, map[string]interface{}{"first": 2, "after": *first.Incomes.PageInfo.EndCursor}, &second)
	want = []string{"Sold bike", "Refund"}
	if got := descriptions(second.Incomes.Nodes); !equal(got, want) {
		t.Fatalf("second page = %v, want %v", got, want)
	}
	if second.Incomes.PageInfo.HasNextPage || !second.Incomes.PageInfo.HasPreviousPage {
		t.Errorf("second pageInfo = %+v", second.Incomes.PageInfo)
	}

	var back pageJSON
	mustRun(t, schema, pageQuery, map[string]interface{}{"last": 2, "before": *second.Incomes.PageInfo.StartCursor}, &back)
	if got, want := descriptions(back.Incomes.Nodes), descriptions(first.Incomes.Nodes); !equal(got, want) {
		t.Errorf("previous page = %v, want first page %v", got, want)
	}
}

func TestIncomesFilter(t *testing.T) {
	schema := newSchema(t, query.DefaultLimits())
	seed(t, schema)

	tests := []struct {
		name  string
		where map[string]interface{}
		want  []string
	}{
		{"no filter", nil, []string{"January salary", "February salary", "Sold bike", "Refund"}},
		{"recurring", map[string]interface{}{"recurring": map[string]interface{}{"eq": true}}, []string{"January salary", "February salary"}},
		{"not recurring", map[string]interface{}{"recurring": map[string]interface{}{"eq": false}}, []string{"Sold bike", "Refund"}},
		{"category", map[string]interface{}{"categories": map[string]interface{}{"some": map[string]interface{}{"in": []interface{}{"misc", "none"}}}}, []string{"Sold bike"}},
		{"date range and category", map[string]interface{}{
			"date":       map[string]interface{}{"gte": "2024-02-01T00:00:00Z", "lte": "2024-03-31T00:00:00Z"},
			"categories": map[string]interface{}{"some": map[string]interface{}{"in": []interface{}{"work"}}},
		}, []string{"February salary"}},
		{"description contains", map[string]interface{}{"description": map[string]interface{}{"contains": "salary"}}, []string{"January salary", "February salary"}},
		{"or", map[string]interface{}{"or": []interface{}{
			map[string]interface{}{"currency": map[string]interface{}{"eq": "USD"}},
			map[string]interface{}{"description": map[string]interface{}{"eq": "Sold bike"}},
		}}, []string{"Sold bike", "Refund"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := map[string]interface{}{"first": 10}
			if tt.where != nil {
				vars["where"] = tt.where
			}
			var page pageJSON
			mustRun(t, schema, pageQuery, vars, &page)
			if got := descriptions(page.Incomes.Nodes); !equal(got, tt.want) {
				t.Errorf("incomes = %v, want %v", got, tt.want)
			}
			if page.Incomes.TotalCount != len(tt.want) {
				t.Errorf("totalCount = %d, want %d", page.Incomes.TotalCount, len(tt.want))
			}
		})
	}
}

func TestIncomesOrder(t *testing.T) {
	schema := newSchema(t, query.DefaultLimits())
	seed(t, schema)

	var page pageJSON
	mustRun(t, schema, `{ incomes(order: [{amount: DESC}, {description: ASC}]) { nodes { description } } }`, nil, &page)
	want := []string{"February salary", "January salary", "Sold bike", "Refund"}
	if got := descriptions(page.Incomes.Nodes); !equal(got, want) {
		t.Errorf("incomes = %v, want %v", got, want)
	}
}

func TestIncomeByID(t *testing.T) {
	schema := newSchema(t, query.DefaultLimits())
	added := seed(t, schema)

	var out struct {
		IncomeByID *incomeJSON `json:"incomeById"`
	}
	mustRun(t, schema, `query($id: String!) { incomeById(id: $id) { id description } }`,
		map[string]interface{}{"id": added[2].ID}, &out)
	if out.IncomeByID == nil || out.IncomeByID.Description != "Sold bike" {
		t.Errorf("incomeById = %+v", out.IncomeByID)
	}

	out.IncomeByID = nil
	mustRun(t, schema, `{ incomeById(id: "missing") { id } }`, nil, &out)
	if out.IncomeByID != nil {
		t.Errorf("incomeById(missing) = %+v, want null", out.IncomeByID)
	}
}

func TestTotalAmountAndCategories(t *testing.T) {
	schema := newSchema(t, query.DefaultLimits())
	seed(t, schema)

	var out struct {
		All        float64  `json:"all"`
		EUR        float64  `json:"eur"`
		Empty      float64  `json:"empty"`
		Categories []string `json:"categories"`
	}
	mustRun(t, schema, `{
		all: totalAmount
		eur: totalAmount(currency: "EUR")
		empty: totalAmount(currency: "")
		categories
	}`, nil, &out)

	if out.All != 2525.5 || out.Empty != 2525.5 {
		t.Errorf("totalAmount = %v / %v, want 2525.5", out.All, out.Empty)
	}
	if out.EUR != 2500 {
		t.Errorf("totalAmount(EUR) = %v, want 2500", out.EUR)
	}
	if want := []string{"misc", "sale", "work"}; !equal(out.Categories, want) {
		t.Errorf("categories = %v, want %v", out.Categories, want)
	}
}

func TestIncomeStatsAndMonthly(t *testing.T) {
	schema := newSchema(t, query.DefaultLimits())
	now := time.Now().UTC()
	addIncome(t, schema, map[string]interface{}{
		"date": now.Add(-time.Second).Format(time.RFC3339Nano), "description": "Salary",
		"amount": "300", "currency": "EUR", "recurring": true,
	})
	addIncome(t, schema, map[string]interface{}{
		"date": now.Add(-time.Second).Format(time.RFC3339Nano), "description": "Gift",
		"amount": "50", "currency": "EUR",
	})

	var out struct {
		Recurring struct {
			ThisMonth float64  `json:"thisMonthRecurringTotal"`
			Change    *float64 `json:"thisMonthRecurringChangePct"`
		} `json:"recurring"`
		All struct {
			ThisMonth float64 `json:"thisMonthRecurringTotal"`
		} `json:"all"`
		Monthly []struct {
			Year              int     `json:"year"`
			Month             int     `json:"month"`
			RecurringTotal    float64 `json:"recurringTotal"`
			NonRecurringTotal float64 `json:"nonRecurringTotal"`
			Total             float64 `json:"total"`
		} `json:"monthly"`
		Default []struct {
			Month int `json:"month"`
		} `json:"default"`
		None []struct {
			Month int `json:"month"`
		} `json:"none"`
	}
	mustRun(t, schema, `{
		recurring: incomeStats { thisMonthRecurringTotal thisMonthRecurringChangePct }
		all: incomeStats(includeNonRecurring: true) { thisMonthRecurringTotal }
		monthly: incomeMonthlyStats(monthsBack: 3) { year month recurringTotal nonRecurringTotal total }
		default: incomeMonthlyStats { month }
		none: incomeMonthlyStats(monthsBack: 0) { month }
	}`, nil, &out)

	if out.Recurring.ThisMonth != 300 {
		t.Errorf("recurring this month = %v, want 300", out.Recurring.ThisMonth)
	}
	if out.Recurring.Change != nil {
		t.Errorf("change pct = %v, want null for an empty previous month", *out.Recurring.Change)
	}
	if out.All.ThisMonth != 350 {
		t.Errorf("all this month = %v, want 350", out.All.ThisMonth)
	}
	if len(out.Monthly) != 3 {
		t.Fatalf("monthly rows = %d, want 3", len(out.Monthly))
	}
	last := out.Monthly[2]
	if last.Year != now.Year() || last.Month != int(now.Month()) {
		t.Errorf("last row = %d-%d, want current month", last.Year, last.Month)
	}
	if last.RecurringTotal != 300 || last.NonRecurringTotal != 50 || last.Total != 350 {
		t.Errorf("last row totals = %+v", last)
	}
	if out.Monthly[0].Total != 0 {
		t.Errorf("empty month should be zero-filled, got %+v", out.Monthly[0])
	}
	if len(out.Default) != defaultMonthsBack {
		t.Errorf("default rows = %d, want %d", len(out.Default), defaultMonthsBack)
	}
	if out.None == nil || len(out.None) != 0 {
		t.Errorf("monthsBack 0 = %v, want empty list", out.None)
	}
}

func TestIncomeMonthlyStatsForYear(t *testing.T) {
	schema := newSchema(t, query.DefaultLimits())
	seed(t, schema)

	type row struct {
		Year              int     `json:"year"`
		Month             int     `json:"month"`
		RecurringTotal    float64 `json:"recurringTotal"`
		NonRecurringTotal float64 `json:"nonRecurringTotal"`
		Total             float64 `json:"total"`
	}
	var out struct {
		Year  []row `json:"year"`
		Empty []row `json:"empty"`
	}
	mustRun(t, schema, `{
		year: incomeMonthlyStats(year: 2024) { year month recurringTotal nonRecurringTotal total }
		empty: incomeMonthlyStats(year: 2019) { year month total }
	}`, nil, &out)

	if len(out.Year) != 12 {
		t.Fatalf("2024 rows = %d, want 12", len(out.Year))
	}
	want := map[int]row{
		1: {Year: 2024, Month: 1, RecurringTotal: 1000, Total: 1000},
		2: {Year: 2024, Month: 2, RecurringTotal: 1000, Total: 1000},
		3: {Year: 2024, Month: 3, NonRecurringTotal: 500, Total: 500},
		4: {Year: 2024, Month: 4, NonRecurringTotal: 25.5, Total: 25.5},
	}
	for i, got := range out.Year {
		w, ok := want[i+1]
		if !ok {
			w = row{Year: 2024, Month: i + 1}
		}
		if got != w {
			t.Errorf("row %d = %+v, want %+v", i, got, w)
		}
	}

	if len(out.Empty) != 12 {
		t.Fatalf("2019 rows = %d, want 12", len(out.Empty))
	}
	for _, r := range out.Empty {
		if r.Year != 2019 || r.Total != 0 {
			t.Errorf("2019 row = %+v, want zero total", r)
		}
	}
}

func TestErrorCodes(t *testing.T) {
	schema := newSchema(t, query.Limits{DefaultPageSize: 2, MaxPageSize: 3})
	seed(t, schema)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"page size zero", `{ incomes(first: 0) { totalCount } }`, gql.CodeValidation},
		{"page size above max", `{ incomes(first: 4) { totalCount } }`, gql.CodeValidation},
		{"first with last", `{ incomes(first: 1, last: 1) { totalCount } }`, gql.CodeValidation},
		{"malformed cursor", `{ incomes(after: "garbage") { totalCount } }`, gql.CodeInvalidCursor},
		{"inverted date range", `{ incomes(where: {date: {gte: "2024-02-01", lte: "2024-01-01"}}) { totalCount } }`, gql.CodeValidation},
		{"currency contains", `{ incomes(where: {currency: {contains: "EU"}}) { totalCount } }`, gql.CodeValidation},
		{"categories without some", `{ incomes(where: {categories: {}}) { totalCount } }`, gql.CodeValidation},
		{"months back too large", `{ incomeMonthlyStats(monthsBack: 1000) { month } }`, gql.CodeValidation},
		{"year with months back", `{ incomeMonthlyStats(year: 2024, monthsBack: 3) { month } }`, gql.CodeValidation},
		{"year out of range", `{ incomeMonthlyStats(year: 0) { month } }`, gql.CodeValidation},
		{"negative amount", `mutation { addIncome(input: {date: "2024-01-01", description: "x", amount: "-1", currency: "EUR"}) { id } }`, gql.CodeValidation},
		{"blank description", `mutation { addIncome(input: {date: "2024-01-01", description: "  ", amount: "1", currency: "EUR"}) { id } }`, gql.CodeValidation},
		{"edit unknown id", `mutation { editIncome(id: "missing", input: {amount: "1"}) { id } }`, gql.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, schema, tt.query, nil)
			if got := errorCode(t, res); got != tt.want {
				t.Errorf("code = %q, want %q (errors: %v)", got, tt.want, res.Errors)
			}
		})
	}
}

func TestCursorFromOtherSortIsRejected(t *testing.T) {
	schema := newSchema(t, query.DefaultLimits())
	seed(t, schema)

	var page pageJSON
	mustRun(t, schema, pageQuery, map[string]interface{}{"first": 1}, &page)

	res := run(t, schema, `query($after: String) { incomes(after: $after, order: [{amount: DESC}]) { totalCount } }`,
		map[string]interface{}{"after": *page.Incomes.PageInfo.EndCursor})
	if got := errorCode(t, res); got != gql.CodeInvalidCursor {
		t.Errorf("code = %q, want %q", got, gql.CodeInvalidCursor)
	}
}

func TestDefaultPageSize(t *testing.T) {
	schema := newSchema(t, query.Limits{DefaultPageSize: 3, MaxPageSize: 5})
	seed(t, schema)

	var page pageJSON
	mustRun(t, schema, `{ incomes { nodes { id } pageInfo { hasNextPage } } }`, nil, &page)
	if len(page.Incomes.Nodes) != 3 || !page.Incomes.PageInfo.HasNextPage {
		t.Errorf("default page = %d nodes, hasNextPage %v", len(page.Incomes.Nodes), page.Incomes.PageInfo.HasNextPage)
	}
}
