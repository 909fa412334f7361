package stats

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ChangePercent returns (current - previous) / previous * 100, or nil when
// previous is zero.
func ChangePercent(current, previous decimal.Decimal) *decimal.Decimal {
	if previous.IsZero() {
		return nil
	}
	pct := current.Sub(previous).Div(previous).Mul(hundred)
	return &pct
}
