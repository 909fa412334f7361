// Package query defines the filter, sort and paging parameters shared by
// listing and aggregation, independent of any storage engine.
package query

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

const maxFilterDepth = 8

type (
	// DateRange bounds are inclusive; either end may be omitted.
	DateRange struct {
		Gte *time.Time
		Lte *time.Time
	}

	StringFilter struct {
		Eq       *string
		Contains *string
	}

	BoolFilter struct {
		Eq *bool
	}

	// ListMatch matches when any element of the list is in In.
	ListMatch struct {
		In []string
	}

	ListFilter struct {
		Some *ListMatch
	}

	// Filter is a conjunction of the predicates that are set. And and Or
	// nest further filters.
	Filter struct {
		And         []Filter
		Or          []Filter
		Date        *DateRange
		Description *StringFilter
		Categories  *ListFilter
		Recurring   *BoolFilter
		Currency    *StringFilter
	}
)

// RecurringOnly matches records flagged as recurring.
func RecurringOnly() Filter {
	t := true
	return Filter{Recurring: &BoolFilter{Eq: &t}}
}

// CurrencyIs matches records in the given currency.
func CurrencyIs(code string) Filter {
	return Filter{Currency: &StringFilter{Eq: &code}}
}

// IsEmpty reports whether the filter constrains nothing.
func (f Filter) IsEmpty() bool {
	return len(f.And) == 0 && len(f.Or) == 0 &&
		f.Date == nil && f.Description == nil && f.Categories == nil &&
		f.Recurring == nil && f.Currency == nil
}

// Validate rejects structurally malformed filters.
func (f Filter) Validate() error {
	return f.validate(0)
}

func (f Filter) validate(depth int) error {
	if depth > maxFilterDepth {
		return core.Validationf("where", "filter nesting exceeds %d levels", maxFilterDepth)
	}
	if f.Date != nil && f.Date.Gte != nil && f.Date.Lte != nil && f.Date.Lte.Before(*f.Date.Gte) {
		return core.Validationf("where.date", "lte must not be before gte")
	}
	if f.Categories != nil && f.Categories.Some == nil {
		return core.Validationf("where.categories", "some is required")
	}
	if f.Currency != nil && f.Currency.Contains != nil {
		return core.Validationf("where.currency", "contains is not supported")
	}
	for i, sub := range f.And {
		if err := sub.validate(depth + 1); err != nil {
			return fmt.Errorf("and[%d]: %w", i, err)
		}
	}
	for i, sub := range f.Or {
		if err := sub.validate(depth + 1); err != nil {
			return fmt.Errorf("or[%d]: %w", i, err)
		}
	}
	return nil
}

// And combines filters into one conjunction, skipping empty ones.
func And(filters ...Filter) Filter {
	var parts []Filter
	for _, f := range filters {
		if !f.IsEmpty() {
			parts = append(parts, f)
		}
	}
	switch len(parts) {
	case 0:
		return Filter{}
	case 1:
		return parts[0]
	default:
		return Filter{And: parts}
	}
}
