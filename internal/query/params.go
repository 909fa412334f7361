package query

import (
	"fintrack/internal/core"
)

// Direction is the traversal requested for a page.
type Direction string

const (
	DirectionFirst    Direction = "first"
	DirectionNext     Direction = "next"
	DirectionPrevious Direction = "previous"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Limits bounds the page size.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

func DefaultLimits() Limits {
	return Limits{DefaultPageSize: DefaultPageSize, MaxPageSize: MaxPageSize}
}

// ConnectionArgs are the raw connection arguments as received by the API.
type ConnectionArgs struct {
	First  *int
	After  *string
	Last   *int
	Before *string
	Where  *Filter
	Order  Sort
}

// Params is a fully resolved, validated page request.
type Params struct {
	Direction Direction
	Cursor    *Cursor
	Size      int
	Filter    Filter
	Sort      Sort
}

// Backward reports whether rows are fetched in reverse sort order.
func (p Params) Backward() bool {
	return p.Direction == DirectionPrevious
}

// BuildParams applies defaults and validates args. previous without a
// cursor pages backwards from the end of the result.
func BuildParams(args ConnectionArgs, limits Limits) (Params, error) {
	if limits.DefaultPageSize <= 0 {
		limits.DefaultPageSize = DefaultPageSize
	}
	if limits.MaxPageSize <= 0 {
		limits.MaxPageSize = MaxPageSize
	}

	if args.First != nil && args.Last != nil {
		return Params{}, core.Validationf("first", "first and last cannot be combined")
	}
	if args.After != nil && args.Before != nil {
		return Params{}, core.Validationf("after", "after and before cannot be combined")
	}
	if args.First != nil && args.Before != nil {
		return Params{}, core.Validationf("first", "first cannot be combined with before")
	}
	if args.Last != nil && args.After != nil {
		return Params{}, core.Validationf("last", "last cannot be combined with after")
	}

	p := Params{
		Direction: DirectionFirst,
		Size:      limits.DefaultPageSize,
		Sort:      args.Order,
	}
	if args.Where != nil {
		p.Filter = *args.Where
	}
	if err := p.Sort.Validate(); err != nil {
		return Params{}, err
	}
	if err := p.Filter.Validate(); err != nil {
		return Params{}, err
	}

	var (
		size  *int
		field string
	)
	switch {
	case args.Last != nil || args.Before != nil:
		p.Direction = DirectionPrevious
		size, field = args.Last, "last"
	case args.After != nil:
		p.Direction = DirectionNext
		size, field = args.First, "first"
	default:
		size, field = args.First, "first"
	}

	if size != nil {
		if *size < 1 {
			return Params{}, core.Validationf(field, "must be at least 1")
		}
		if *size > limits.MaxPageSize {
			return Params{}, core.Validationf(field, "must be at most %d", limits.MaxPageSize)
		}
		p.Size = *size
	}

	token := args.After
	if p.Direction == DirectionPrevious {
		token = args.Before
	}
	if token != nil {
		c, err := DecodeCursor(*token, p.Sort)
		if err != nil {
			return Params{}, err
		}
		p.Cursor = c
	}
	return p, nil
}
