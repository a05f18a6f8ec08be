// Package rebalance analyzes portfolio composition and generates prioritized
// target-weight recommendations.
package rebalance

import (
	"fmt"

	"github.com/eddiepiper/04-03-DCM-agent/internal/common"
	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
)

// RiskMetrics carries the externally supplied risk figures used during
// analysis.
type RiskMetrics struct {
	Beta        float64 `json:"beta"`
	Volatility  float64 `json:"volatility"`
	SharpeRatio float64 `json:"sharpe_ratio"`
}

// Analysis is a snapshot of portfolio composition: exposures, allocation,
// concentration risks and a diversification score. Consumed by the
// recommendation generator and exposed at the service boundary.
type Analysis struct {
	SectorExposure       map[string]float64            `json:"sector_exposure"`
	AssetAllocation      map[models.AssetClass]float64 `json:"asset_allocation"`
	RiskMetrics          RiskMetrics                   `json:"risk_metrics"`
	ConcentrationRisks   []string                      `json:"concentration_risks"`
	DiversificationScore float64                       `json:"diversification_score"`
	TotalValue           float64                       `json:"total_value"`
	HoldingsCount        int                           `json:"holdings_count"`
}

// BondAllocation returns the aggregate weight of bond/fixed-income classes.
func (a Analysis) BondAllocation() float64 {
	return a.AssetAllocation[models.AssetClassBond] + a.AssetAllocation[models.AssetClassFixedIncome]
}

// Analyzer produces composition analysis for a portfolio.
type Analyzer struct {
	logger *common.Logger
}

// NewAnalyzer creates a portfolio analyzer.
func NewAnalyzer(logger *common.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

// Analyze builds a composition snapshot from the portfolio's current
// weights and externally supplied risk metrics.
func (a *Analyzer) Analyze(p *models.Portfolio, constraints models.ConstraintSet) Analysis {
	sectorExposure := make(map[string]float64)
	assetAllocation := make(map[models.AssetClass]float64)
	for _, h := range p.Holdings() {
		if h.Sector != "" {
			sectorExposure[h.Sector] += h.Weight
		}
		assetAllocation[h.AssetClass] += h.Weight
	}

	totalValue, _ := p.TotalValue().Float64()

	analysis := Analysis{
		SectorExposure:  sectorExposure,
		AssetAllocation: assetAllocation,
		RiskMetrics: RiskMetrics{
			Beta:        p.Metrics.Beta,
			Volatility:  p.Metrics.Volatility,
			SharpeRatio: p.Metrics.SharpeRatio,
		},
		ConcentrationRisks:   a.concentrationRisks(p, constraints),
		DiversificationScore: diversificationScore(p),
		TotalValue:           totalValue,
		HoldingsCount:        p.Len(),
	}

	a.logger.Debug().
		Str("portfolio", p.ID).
		Int("holdings", analysis.HoldingsCount).
		Int("risks", len(analysis.ConcentrationRisks)).
		Msg("Portfolio analyzed")

	return analysis
}

// concentrationRisks lists positions and sectors above 80% of their caps.
func (a *Analyzer) concentrationRisks(p *models.Portfolio, constraints models.ConstraintSet) []string {
	var risks []string

	for _, h := range p.Holdings() {
		if h.Weight > constraints.MaxSinglePosition*0.8 {
			risks = append(risks, fmt.Sprintf("High concentration in %s (%.2f%%)", h.Symbol, h.Weight*100))
		}
	}

	seen := make(map[string]float64)
	var sectors []string
	for _, h := range p.Holdings() {
		if h.Sector == "" {
			continue
		}
		if _, ok := seen[h.Sector]; !ok {
			sectors = append(sectors, h.Sector)
		}
		seen[h.Sector] += h.Weight
	}
	for _, sector := range sectors {
		if seen[sector] > constraints.MaxSectorExposure*0.8 {
			risks = append(risks, fmt.Sprintf("High sector concentration in %s (%.2f%%)", sector, seen[sector]*100))
		}
	}

	return risks
}

// diversificationScore is a simple effective-number measure: 1 − Herfindahl
// index over holding weights, renormalized to the invested fraction. Empty
// portfolios score zero.
func diversificationScore(p *models.Portfolio) float64 {
	invested := 0.0
	sumSquares := 0.0
	for _, h := range p.Holdings() {
		invested += h.Weight
		sumSquares += h.Weight * h.Weight
	}
	if invested <= 0 {
		return 0
	}
	// Herfindahl over renormalized weights, inverted so diversified ≈ 1.
	herfindahl := sumSquares / (invested * invested)
	return 1.0 - herfindahl
}

// Insights renders analysis findings as advisory strings.
func (a Analysis) Insights() []string {
	var insights []string

	if a.RiskMetrics.Beta > 1.2 {
		insights = append(insights, "Portfolio shows high market sensitivity")
	}
	if a.RiskMetrics.Volatility > 0.2 {
		insights = append(insights, "Portfolio volatility is above target range")
	}

	insights = append(insights, a.ConcentrationRisks...)

	if a.DiversificationScore < 0.7 {
		insights = append(insights, "Portfolio could benefit from increased diversification")
	}

	return insights
}
