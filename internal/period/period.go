// Package period computes calendar-aligned UTC windows relative to a
// reference instant.
package period

import "time"

// Windows holds the boundaries derived from a single reference instant.
type Windows struct {
	Now                   time.Time
	StartOfThisYear       time.Time
	StartOfThisMonth      time.Time
	StartOfLastMonth      time.Time
	StartOfTwoMonthsAgo   time.Time
	StartOfThreeMonthsAgo time.Time
}

// At derives all windows from now, converted to UTC.
func At(now time.Time) Windows {
	now = now.UTC()
	som := StartOfMonth(now)
	return Windows{
		Now:                   now,
		StartOfThisYear:       StartOfYear(now),
		StartOfThisMonth:      som,
		StartOfLastMonth:      AddMonths(som, -1),
		StartOfTwoMonthsAgo:   AddMonths(som, -2),
		StartOfThreeMonthsAgo: AddMonths(som, -3),
	}
}

// StartOfYear returns Jan 1, 00:00 UTC of t's year.
func StartOfYear(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns the first day of t's month at 00:00 UTC.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths moves t by n calendar months. The day is clamped to the last
// day of the target month, so Mar 31 minus one month is Feb 28 (or 29).
func AddMonths(t time.Time, n int) time.Time {
	t = t.UTC()
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
