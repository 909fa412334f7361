package period

import (
	"iter"
	"time"
)

// Month is one calendar month with its half-open bounds.
type Month struct {
	Year  int
	Month time.Month
	Start time.Time
	End   time.Time
}

// Key identifies a calendar month.
type Key struct {
	Year  int
	Month int
}

func (m Month) Key() Key {
	return Key{Year: m.Year, Month: int(m.Month)}
}

// Span is a half-open range of whole calendar months [Start, End).
// The zero Span is empty.
type Span struct {
	Start time.Time
	End   time.Time
}

// LastMonths returns the span of monthsBack months ending with the month
// that contains now. It is empty when monthsBack < 1.
func LastMonths(now time.Time, monthsBack int) Span {
	if monthsBack < 1 {
		return Span{}
	}
	som := StartOfMonth(now)
	return Span{
		Start: AddMonths(som, -(monthsBack - 1)),
		End:   AddMonths(som, 1),
	}
}

// CalendarYear returns the span covering January through December of year.
func CalendarYear(year int) Span {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return Span{Start: start, End: AddMonths(start, 12)}
}

// IsEmpty reports whether the span contains no months.
func (s Span) IsEmpty() bool {
	return !s.Start.Before(s.End)
}

// Len returns the number of months in the span.
func (s Span) Len() int {
	if s.IsEmpty() {
		return 0
	}
	return (s.End.Year()-s.Start.Year())*12 + int(s.End.Month()-s.Start.Month())
}

// Months iterates the span month by month in ascending order.
func (s Span) Months() iter.Seq[Month] {
	return func(yield func(Month) bool) {
		if s.IsEmpty() {
			return
		}
		for cur := StartOfMonth(s.Start); cur.Before(s.End); {
			next := AddMonths(cur, 1)
			if !yield(Month{Year: cur.Year(), Month: cur.Month(), Start: cur, End: next}) {
				return
			}
			cur = next
		}
	}
}
