// Package gql assembles the GraphQL schema from feature modules and serves
// it over HTTP.
package gql

import (
	"fmt"
	"maps"
	"slices"

	"github.com/graphql-go/graphql"
)

// Module contributes root fields to the schema. Either map may be empty.
type Module interface {
	QueryFields() graphql.Fields
	MutationFields() graphql.Fields
}

// NewSchema merges the modules' root fields. Two modules defining the same
// root field is an error.
func NewSchema(modules ...Module) (graphql.Schema, error) {
	query := graphql.Fields{}
	mutation := graphql.Fields{}

	for _, m := range modules {
		if err := merge(query, m.QueryFields(), "Query"); err != nil {
			return graphql.Schema{}, err
		}
		if err := merge(mutation, m.MutationFields(), "Mutation"); err != nil {
			return graphql.Schema{}, err
		}
	}
	if len(query) == 0 {
		return graphql.Schema{}, fmt.Errorf("schema has no query fields")
	}

	cfg := graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: query}),
	}
	if len(mutation) > 0 {
		cfg.Mutation = graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: mutation})
	}
	return graphql.NewSchema(cfg)
}

func merge(dst, src graphql.Fields, root string) error {
	for _, name := range slices.Sorted(maps.Keys(src)) {
		if _, dup := dst[name]; dup {
			return fmt.Errorf("duplicate %s field %q", root, name)
		}
		dst[name] = src[name]
	}
	return nil
}
