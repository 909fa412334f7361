package gql

import (
	"encoding/json"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/shopspring/decimal"
)

// Decimal is an exact decimal number. It is written as a JSON number and
// accepts numbers or numeric strings as input.
var Decimal = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Decimal",
	Description: "The `Decimal` scalar type represents an exact decimal number.",
	Serialize:   serializeDecimal,
	ParseValue:  parseDecimal,
	ParseLiteral: func(valueAST ast.Value) interface{} {
		switch v := valueAST.(type) {
		case *ast.IntValue:
			return parseDecimal(v.Value)
		case *ast.FloatValue:
			return parseDecimal(v.Value)
		case *ast.StringValue:
			return parseDecimal(v.Value)
		}
		return nil
	},
})

func serializeDecimal(value interface{}) interface{} {
	switch v := value.(type) {
	case decimal.Decimal:
		return json.Number(v.String())
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		return json.Number(v.String())
	}
	return nil
}

func parseDecimal(value interface{}) interface{} {
	switch v := value.(type) {
	case decimal.Decimal:
		return v
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil
		}
		return d
	case json.Number:
		return parseDecimal(string(v))
	case float64:
		return decimal.NewFromFloat(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	}
	return nil
}

// DateTime is an RFC 3339 timestamp, written in UTC with the fractional
// seconds the value carries.
var DateTime = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "DateTime",
	Description: "The `DateTime` scalar represents an RFC 3339 date time.",
	Serialize:   serializeDateTime,
	ParseValue:  parseDateTime,
	ParseLiteral: func(valueAST ast.Value) interface{} {
		if v, ok := valueAST.(*ast.StringValue); ok {
			return parseDateTime(v.Value)
		}
		return nil
	},
})

func serializeDateTime(value interface{}) interface{} {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.UTC().Format(time.RFC3339Nano)
	}
	return nil
}

func parseDateTime(value interface{}) interface{} {
	switch v := value.(type) {
	case time.Time:
		return v.UTC()
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			// Bare dates are accepted as midnight UTC
			t, err = time.Parse(time.DateOnly, v)
			if err != nil {
				return nil
			}
		}
		return t.UTC()
	}
	return nil
}
