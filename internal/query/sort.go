package query

import (
	"strings"

	"fintrack/internal/core"
)

type SortField string

const (
	SortDate        SortField = "date"
	SortAmount      SortField = "amount"
	SortDescription SortField = "description"
	SortCreatedAt   SortField = "createdAt"
)

type SortDirection string

const (
	Asc  SortDirection = "ASC"
	Desc SortDirection = "DESC"
)

// SortFields lists the sortable fields.
func SortFields() []SortField {
	return []SortField{SortDate, SortAmount, SortDescription, SortCreatedAt}
}

// ParseSortField maps a field name to its SortField.
func ParseSortField(s string) (SortField, error) {
	for _, f := range SortFields() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", core.Validationf("order", "unknown sort field %q", s)
}

// Numeric reports whether the field's cursor value is an integer.
func (f SortField) Numeric() bool {
	return f != SortDescription
}

func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(strings.ToUpper(s)) {
	case Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", core.Validationf("order", "unknown sort direction %q", s)
}

type SortKey struct {
	Field     SortField
	Direction SortDirection
}

// Sort is an ordered list of keys. The record id is always appended as a
// final ascending key by the store so equal values page deterministically.
type Sort []SortKey

func (s Sort) Validate() error {
	seen := make(map[SortField]bool, len(s))
	for _, k := range s {
		if _, err := ParseSortField(string(k.Field)); err != nil {
			return err
		}
		if k.Direction != Asc && k.Direction != Desc {
			return core.Validationf("order", "unknown sort direction %q", k.Direction)
		}
		if seen[k.Field] {
			return core.Validationf("order", "field %q sorted more than once", k.Field)
		}
		seen[k.Field] = true
	}
	return nil
}

// Signature identifies the sort so cursors minted under one order are
// rejected under another.
func (s Sort) Signature() string {
	parts := make([]string, 0, len(s))
	for _, k := range s {
		parts = append(parts, string(k.Field)+":"+string(k.Direction))
	}
	return strings.Join(parts, ",")
}
