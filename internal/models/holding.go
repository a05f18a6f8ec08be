package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AssetClass categorizes a holding. Decided once at construction time —
// policy checks switch on the enum, never on raw strings.
type AssetClass string

const (
	AssetClassStock       AssetClass = "stock"
	AssetClassETF         AssetClass = "etf"
	AssetClassBond        AssetClass = "bond"
	AssetClassFixedIncome AssetClass = "fixed_income"
	AssetClassCash        AssetClass = "cash"
	AssetClassOther       AssetClass = "other"
)

// ParseAssetClass normalizes a free-text asset class label (lower-case,
// spaces to underscores) into the closed enumeration. Unrecognized labels
// map to AssetClassOther.
func ParseAssetClass(s string) AssetClass {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
	switch normalized {
	case "stock", "equity":
		return AssetClassStock
	case "etf":
		return AssetClassETF
	case "bond":
		return AssetClassBond
	case "fixed_income":
		return AssetClassFixedIncome
	case "cash":
		return AssetClassCash
	default:
		return AssetClassOther
	}
}

// IsFixedIncome reports whether the class counts toward the bond allocation.
func (a AssetClass) IsFixedIncome() bool {
	return a == AssetClassBond || a == AssetClassFixedIncome
}

// IsEquity reports whether the class counts as stock/ETF for risk trimming.
func (a AssetClass) IsEquity() bool {
	return a == AssetClassStock || a == AssetClassETF
}

// Holding represents a single position: identity, quantity, price, sector
// and the derived portfolio weight. Weight is owned by the Portfolio — it is
// recomputed from value whenever price, quantity or membership changes, and
// set directly only as a transient proposed value during simulation.
type Holding struct {
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Quantity     int64           `json:"quantity"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Sector       string          `json:"sector,omitempty"`
	AssetClass   AssetClass      `json:"asset_class"`
	Weight       float64         `json:"weight"`
	LastUpdated  time.Time       `json:"last_updated"`
}

// NewHolding creates a validated holding. Symbol is trimmed and upper-cased,
// name trimmed. Rejects empty symbol/name, negative quantity and
// non-positive price with a ValidationError.
func NewHolding(symbol, name string, quantity int64, price decimal.Decimal, sector string, class AssetClass) (*Holding, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, NewValidationError("symbol", "must be a non-empty string")
	}
	if symbol == CashSymbol {
		return nil, NewValidationError("symbol", "%s is reserved for the cash allocation", CashSymbol)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "must be a non-empty string")
	}

	if quantity < 0 {
		return nil, NewValidationError("quantity", "cannot be negative: %d", quantity)
	}

	if !price.IsPositive() {
		return nil, NewValidationError("current_price", "must be positive: %s", price)
	}

	sector = strings.TrimSpace(sector)

	if class == "" {
		class = AssetClassOther
	}

	return &Holding{
		Symbol:       symbol,
		Name:         name,
		Quantity:     quantity,
		CurrentPrice: price,
		Sector:       sector,
		AssetClass:   class,
		LastUpdated:  time.Now(),
	}, nil
}

// TotalValue returns current price × quantity. Always exact — both operands
// are fixed-point.
func (h *Holding) TotalValue() decimal.Decimal {
	return h.CurrentPrice.Mul(decimal.NewFromInt(h.Quantity))
}

// UpdatePrice sets a new price after validation.
func (h *Holding) UpdatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return NewValidationError("current_price", "must be positive: %s", price)
	}
	h.CurrentPrice = price
	h.LastUpdated = time.Now()
	return nil
}

// UpdateWeight sets the weight after range validation. Callers outside the
// Portfolio recompute path should only use this for proposed-state simulation.
func (h *Holding) UpdateWeight(weight float64) error {
	if weight < 0 || weight > 1 {
		return NewValidationError("weight", "must be between 0 and 1: %f", weight)
	}
	h.Weight = weight
	return nil
}
