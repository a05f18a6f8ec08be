package common

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FormatMoney renders a dollar amount with two decimal places.
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// FormatPct renders a fractional weight as a percentage.
func FormatPct(w float64) string {
	return fmt.Sprintf("%.1f%%", w*100)
}

// FormatSignedPct renders a fractional change with an explicit sign.
func FormatSignedPct(w float64) string {
	return fmt.Sprintf("%+.1f%%", w*100)
}
