package core

import "github.com/shopspring/decimal"

// MonthBucket is one group of the monthly aggregation: the total of records
// in a calendar month sharing the same recurring flag.
type MonthBucket struct {
	Year      int
	Month     int // 1-12
	Recurring bool
	Total     decimal.Decimal
}

// IncomeStats is the recurring-income summary. Change percentages are nil
// when the previous window summed to zero.
type IncomeStats struct {
	YearRecurringTotal          decimal.Decimal
	LastMonthRecurringTotal     decimal.Decimal
	LastMonthRecurringChangePct *decimal.Decimal
	ThisMonthRecurringTotal     decimal.Decimal
	ThisMonthRecurringChangePct *decimal.Decimal
	Last3MonthsRecurringAverage decimal.Decimal
}

// MonthlyIncomeStats is one calendar month of the monthly breakdown.
type MonthlyIncomeStats struct {
	Year              int
	Month             int // 1-12
	RecurringTotal    decimal.Decimal
	NonRecurringTotal decimal.Decimal
	Total             decimal.Decimal
}
