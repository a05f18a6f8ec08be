// Package trading converts target weights into discrete priced trades and
// applies them to the portfolio.
package trading

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/eddiepiper/04-03-DCM-agent/internal/common"
	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
)

const (
	// targetSumTolerance bounds |Σ target weights − 1| for a valid request.
	targetSumTolerance = 1e-4
	// minWeightDiff is the dead-band below which no trade is generated,
	// preventing churn from rounding noise.
	minWeightDiff = 0.005
)

// Calculator computes and executes rebalancing trades against a portfolio.
type Calculator struct {
	logger *common.Logger
}

// NewCalculator creates a trade calculator.
func NewCalculator(logger *common.Logger) *Calculator {
	return &Calculator{logger: logger}
}

// ComputeTrades derives the integer-share trades that move current weights
// toward the targets. Target weights must sum to 1.0 within 1e-4 — a hard
// precondition, not a best-effort normalization. The reserved CASH key
// allocates the uninvested remainder and generates no trade. Symbols in the
// target set but not in the portfolio are skipped; weight differences inside
// the 0.5% dead-band and trades that truncate to zero shares are dropped.
func (c *Calculator) ComputeTrades(p *models.Portfolio, targetWeights map[string]float64) ([]models.Trade, error) {
	if p.Len() == 0 || len(targetWeights) == 0 {
		return nil, nil
	}

	totalValue := p.TotalValue()
	if !totalValue.IsPositive() {
		return nil, nil
	}

	sum := 0.0
	for _, w := range targetWeights {
		sum += w
	}
	if math.Abs(sum-1.0) > targetSumTolerance {
		return nil, models.NewValidationError("target_weights", "must sum to 1.0, got %f", sum)
	}

	var trades []models.Trade
	for _, h := range p.Holdings() {
		target, ok := targetWeights[h.Symbol]
		if !ok {
			continue
		}

		current, _ := h.TotalValue().Div(totalValue).Float64()
		diff := target - current
		if math.Abs(diff) < minWeightDiff {
			continue
		}

		valueChange := totalValue.Mul(decimal.NewFromFloat(diff))
		quantity := valueChange.Div(h.CurrentPrice).IntPart() // truncates toward zero
		if quantity == 0 {
			continue
		}

		trades = append(trades, models.Trade{
			Symbol:    h.Symbol,
			Quantity:  quantity,
			Price:     h.CurrentPrice,
			Value:     valueChange,
			OldWeight: current,
			NewWeight: target,
		})
	}

	c.logger.Debug().
		Str("portfolio", p.ID).
		Int("trades", len(trades)).
		Msg("Rebalancing trades computed")

	return trades, nil
}

// ExecuteTrades applies a batch of trades atomically: the whole batch is
// validated first (every symbol held, no resulting negative quantity or
// cash), then applied with one metrics recompute. On any failure the
// portfolio is left untouched — partial execution never occurs. Holdings
// whose quantity reaches exactly zero are removed.
func (c *Calculator) ExecuteTrades(p *models.Portfolio, trades []models.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	changes := make(map[string]int64, len(trades))
	for _, t := range trades {
		changes[t.Symbol] += t.Quantity
	}

	if err := p.ApplyQuantityChanges(changes); err != nil {
		c.logger.Error().
			Err(err).
			Str("portfolio", p.ID).
			Msg("Trade execution rejected")
		return err
	}

	c.logger.Info().
		Str("portfolio", p.ID).
		Int("trades", len(trades)).
		Msg("Trades executed")

	return nil
}
