package models

import "github.com/shopspring/decimal"

// CashSymbol is the reserved key used in target-weight maps to allocate the
// uninvested remainder. It never names a tradable holding.
const CashSymbol = "CASH"

// Trade is a discrete integer-share order needed to move a holding from its
// current weight toward a target weight. Positive quantity buys, negative
// sells. Value is the signed cash amount the weight change represents.
// Ephemeral: produced by the trade calculator, consumed by execution.
type Trade struct {
	Symbol    string          `json:"symbol"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Value     decimal.Decimal `json:"value"`
	OldWeight float64         `json:"old_weight"`
	NewWeight float64         `json:"new_weight"`
}

// IsBuy reports whether the trade adds shares.
func (t Trade) IsBuy() bool {
	return t.Quantity > 0
}
