package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PortfolioMetrics is the aggregate metrics bag recomputed after every
// structural mutation. EquityValue covers holdings only; PortfolioValue adds
// available cash — weights are fractions of PortfolioValue, so they sum to
// less than one whenever cash is held. Beta, volatility and sharpe are
// supplied externally by the market-data collaborator.
type PortfolioMetrics struct {
	EquityValue    decimal.Decimal       `json:"equity_value"`
	PortfolioValue decimal.Decimal       `json:"portfolio_value"`
	SectorWeights  map[string]float64    `json:"sector_weights"`
	AssetWeights   map[AssetClass]float64 `json:"asset_weights"`
	Beta           float64               `json:"beta"`
	Volatility     float64               `json:"volatility"`
	SharpeRatio    float64               `json:"sharpe_ratio"`
}

// Portfolio is an ordered collection of holdings unique by symbol, plus an
// explicit cash balance. All weight and metric recomputation happens in
// recompute(), invoked at the end of every mutating method — no holding ever
// carries a stale weight once a mutation returns.
//
// Portfolio is not safe for concurrent use; a service boundary must hold an
// exclusive lock for the duration of any multi-step operation.
type Portfolio struct {
	ID          string          `json:"id"`
	Currency    string          `json:"currency"`
	CashBalance decimal.Decimal `json:"cash_balance"`
	Constraints ConstraintSet   `json:"constraints"`
	Metrics     PortfolioMetrics `json:"metrics"`
	LastUpdated time.Time       `json:"last_updated"`

	order    []string
	holdings map[string]*Holding
}

// NewPortfolio creates a portfolio with zero or more holdings. An empty id
// gets a generated UUID. Duplicate symbols and nil holdings are rejected.
func NewPortfolio(id, currency string, cash decimal.Decimal, constraints ConstraintSet, holdings ...*Holding) (*Portfolio, error) {
	if id == "" {
		id = uuid.New().String()
	}
	if currency == "" {
		currency = "USD"
	}
	if cash.IsNegative() {
		return nil, NewValidationError("cash_balance", "cannot be negative: %s", cash)
	}

	p := &Portfolio{
		ID:          id,
		Currency:    currency,
		CashBalance: cash,
		Constraints: constraints,
		holdings:    make(map[string]*Holding),
	}

	for _, h := range holdings {
		if h == nil {
			return nil, NewValidationError("holding", "cannot be nil")
		}
		if _, exists := p.holdings[h.Symbol]; exists {
			return nil, NewStateError("add holding", h.Symbol, "already exists in portfolio")
		}
		p.holdings[h.Symbol] = h
		p.order = append(p.order, h.Symbol)
	}

	p.recompute()
	return p, nil
}

// Holding returns the holding for a symbol, if present.
func (p *Portfolio) Holding(symbol string) (*Holding, bool) {
	h, ok := p.holdings[symbol]
	return h, ok
}

// Holdings returns the holdings in insertion order.
func (p *Portfolio) Holdings() []*Holding {
	result := make([]*Holding, 0, len(p.order))
	for _, symbol := range p.order {
		result = append(result, p.holdings[symbol])
	}
	return result
}

// Symbols returns the held symbols in insertion order.
func (p *Portfolio) Symbols() []string {
	result := make([]string, len(p.order))
	copy(result, p.order)
	return result
}

// Len returns the number of holdings.
func (p *Portfolio) Len() int {
	return len(p.order)
}

// TotalValue returns the portfolio value including cash.
func (p *Portfolio) TotalValue() decimal.Decimal {
	return p.Metrics.PortfolioValue
}

// Weights returns the current symbol→weight mapping.
func (p *Portfolio) Weights() map[string]float64 {
	weights := make(map[string]float64, len(p.order))
	for symbol, h := range p.holdings {
		weights[symbol] = h.Weight
	}
	return weights
}

// CashWeight returns the implicit cash fraction: 1 − Σ holding weights.
func (p *Portfolio) CashWeight() float64 {
	total := 0.0
	for _, h := range p.holdings {
		total += h.Weight
	}
	return 1.0 - total
}

// BondAllocation returns the aggregate weight of bond/fixed-income holdings.
func (p *Portfolio) BondAllocation() float64 {
	total := 0.0
	for _, h := range p.holdings {
		if h.AssetClass.IsFixedIncome() {
			total += h.Weight
		}
	}
	return total
}

// AddHolding adds a holding. Fails with a ValidationError for nil input and
// a StateError for a duplicate symbol. Recomputes metrics on success.
func (p *Portfolio) AddHolding(h *Holding) error {
	if h == nil {
		return NewValidationError("holding", "cannot be nil")
	}
	if _, exists := p.holdings[h.Symbol]; exists {
		return NewStateError("add holding", h.Symbol, "already exists in portfolio")
	}

	p.holdings[h.Symbol] = h
	p.order = append(p.order, h.Symbol)
	p.recompute()
	return nil
}

// RemoveHolding removes a holding by symbol. Fails with a StateError if the
// symbol is absent. Recomputes metrics on success.
func (p *Portfolio) RemoveHolding(symbol string) error {
	if _, exists := p.holdings[symbol]; !exists {
		return NewStateError("remove holding", symbol, "not found in portfolio")
	}

	delete(p.holdings, symbol)
	for i, s := range p.order {
		if s == symbol {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	p.recompute()
	return nil
}

// UpdatePrices applies a bulk price update all-or-nothing: the entire batch
// is validated before any holding is touched, so an invalid price anywhere
// leaves the portfolio unmodified. Symbols not held are ignored. Recomputes
// metrics once after applying.
func (p *Portfolio) UpdatePrices(prices map[string]decimal.Decimal) error {
	for symbol, price := range prices {
		if _, held := p.holdings[symbol]; !held {
			continue
		}
		if !price.IsPositive() {
			return NewValidationError("current_price", "invalid price for %s: %s", symbol, price)
		}
	}

	applied := false
	for symbol, price := range prices {
		if h, held := p.holdings[symbol]; held {
			h.CurrentPrice = price
			h.LastUpdated = time.Now()
			applied = true
		}
	}
	if applied {
		p.recompute()
	}
	return nil
}

// ApplyQuantityChanges applies a batch of signed quantity deltas atomically:
// every change is validated first (symbol held, resulting quantity
// non-negative, resulting cash non-negative), then all are applied with a
// single recompute. A holding whose quantity reaches exactly zero is removed
// rather than retained. Sells credit cash, buys debit it.
func (p *Portfolio) ApplyQuantityChanges(changes map[string]int64) error {
	netCost := decimal.Zero
	for symbol, delta := range changes {
		h, held := p.holdings[symbol]
		if !held {
			return NewStateError("apply trade", symbol, "not in portfolio")
		}
		if h.Quantity+delta < 0 {
			return NewStateError("apply trade", symbol, "would result in negative quantity (%d%+d)", h.Quantity, delta)
		}
		netCost = netCost.Add(h.CurrentPrice.Mul(decimal.NewFromInt(delta)))
	}

	newCash := p.CashBalance.Sub(netCost)
	if newCash.IsNegative() {
		return NewStateError("apply trades", "", "insufficient cash: need %s, have %s", netCost, p.CashBalance)
	}

	for symbol, delta := range changes {
		h := p.holdings[symbol]
		newQuantity := h.Quantity + delta
		if newQuantity == 0 {
			delete(p.holdings, symbol)
			for i, s := range p.order {
				if s == symbol {
					p.order = append(p.order[:i], p.order[i+1:]...)
					break
				}
			}
			continue
		}
		h.Quantity = newQuantity
		h.LastUpdated = time.Now()
	}

	p.CashBalance = newCash
	p.recompute()
	return nil
}

// SetCashBalance replaces available cash and recomputes weights against the
// new portfolio value. Negative balances are the caller's error to catch.
func (p *Portfolio) SetCashBalance(cash decimal.Decimal) {
	p.CashBalance = cash
	p.recompute()
}

// SetRiskMetrics records externally supplied risk figures. These are inputs
// to analysis, never derived here.
func (p *Portfolio) SetRiskMetrics(beta, volatility, sharpe float64) {
	p.Metrics.Beta = beta
	p.Metrics.Volatility = volatility
	p.Metrics.SharpeRatio = sharpe
	p.LastUpdated = time.Now()
}

// recompute rebuilds equity value, portfolio value, per-holding weights and
// the sector/asset aggregates. Externally supplied risk figures are carried
// forward untouched.
func (p *Portfolio) recompute() {
	equity := decimal.Zero
	for _, symbol := range p.order {
		equity = equity.Add(p.holdings[symbol].TotalValue())
	}
	portfolioValue := equity.Add(p.CashBalance)

	p.Metrics.EquityValue = equity
	p.Metrics.PortfolioValue = portfolioValue
	p.Metrics.SectorWeights = make(map[string]float64)
	p.Metrics.AssetWeights = make(map[AssetClass]float64)

	for _, symbol := range p.order {
		h := p.holdings[symbol]
		weight := 0.0
		if portfolioValue.IsPositive() {
			w, _ := h.TotalValue().Div(portfolioValue).Float64()
			weight = w
		}
		h.Weight = weight

		if h.Sector != "" {
			p.Metrics.SectorWeights[h.Sector] += weight
		}
		p.Metrics.AssetWeights[h.AssetClass] += weight
	}

	p.LastUpdated = time.Now()
}
