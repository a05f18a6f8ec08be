package rebalance

import (
	"fmt"
	"sort"

	"github.com/eddiepiper/04-03-DCM-agent/internal/common"
	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
)

// Generator turns policy pressure and analysis signals into prioritized
// target-weight recommendations. All four stages read the original portfolio
// state — corrections are deliberately not compounded within a single pass.
type Generator struct {
	logger *common.Logger
}

// NewGenerator creates a recommendation generator.
func NewGenerator(logger *common.Logger) *Generator {
	return &Generator{logger: logger}
}

// Generate produces recommendations sorted ascending by priority (stable, so
// within a priority the stage and holding order is preserved). Every
// recommendation's WeightChange equals TargetWeight − CurrentWeight.
func (g *Generator) Generate(p *models.Portfolio, analysis Analysis, constraints models.ConstraintSet) []models.RebalanceRecommendation {
	var recommendations []models.RebalanceRecommendation

	recommendations = append(recommendations, g.concentrationStage(p, constraints)...)
	recommendations = append(recommendations, g.sectorStage(p, analysis, constraints)...)
	recommendations = append(recommendations, g.allocationStage(p, analysis, constraints)...)
	recommendations = append(recommendations, g.riskStage(p, analysis)...)

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Priority < recommendations[j].Priority
	})

	g.logger.Debug().
		Str("portfolio", p.ID).
		Int("recommendations", len(recommendations)).
		Msg("Rebalance recommendations generated")

	return recommendations
}

// concentrationStage trims any position above 80% of the single-position cap
// down to 70% of the cap.
func (g *Generator) concentrationStage(p *models.Portfolio, constraints models.ConstraintSet) []models.RebalanceRecommendation {
	var recs []models.RebalanceRecommendation
	for _, h := range p.Holdings() {
		if h.Weight > constraints.MaxSinglePosition*0.8 {
			target := constraints.MaxSinglePosition * 0.7
			recs = append(recs, models.RebalanceRecommendation{
				Symbol:        h.Symbol,
				CurrentWeight: h.Weight,
				TargetWeight:  target,
				WeightChange:  target - h.Weight,
				Reason:        "Reduce position concentration",
				Priority:      models.PriorityHigh,
			})
		}
	}
	return recs
}

// sectorStage redistributes any sector above 80% of its cap: the sector's
// new aggregate target is 70% of the cap, split equally across its current
// holdings.
func (g *Generator) sectorStage(p *models.Portfolio, analysis Analysis, constraints models.ConstraintSet) []models.RebalanceRecommendation {
	var recs []models.RebalanceRecommendation

	var sectors []string
	seen := make(map[string]bool)
	for _, h := range p.Holdings() {
		if h.Sector != "" && !seen[h.Sector] {
			seen[h.Sector] = true
			sectors = append(sectors, h.Sector)
		}
	}

	for _, sector := range sectors {
		if analysis.SectorExposure[sector] <= constraints.MaxSectorExposure*0.8 {
			continue
		}

		var sectorHoldings []*models.Holding
		for _, h := range p.Holdings() {
			if h.Sector == sector {
				sectorHoldings = append(sectorHoldings, h)
			}
		}

		target := constraints.MaxSectorExposure * 0.7 / float64(len(sectorHoldings))
		for _, h := range sectorHoldings {
			recs = append(recs, models.RebalanceRecommendation{
				Symbol:        h.Symbol,
				CurrentWeight: h.Weight,
				TargetWeight:  target,
				WeightChange:  target - h.Weight,
				Reason:        fmt.Sprintf("Reduce %s sector exposure", sector),
				Priority:      models.PriorityMedium,
			})
		}
	}
	return recs
}

// allocationStage tops a deficient bond allocation back up to the minimum,
// split equally across existing bond/fixed-income holdings. With no bond
// vehicle in the portfolio there is nothing to rebalance into, so the stage
// emits nothing.
func (g *Generator) allocationStage(p *models.Portfolio, analysis Analysis, constraints models.ConstraintSet) []models.RebalanceRecommendation {
	if analysis.BondAllocation() >= constraints.MinBondAllocation {
		return nil
	}

	var bondHoldings []*models.Holding
	for _, h := range p.Holdings() {
		if h.AssetClass.IsFixedIncome() {
			bondHoldings = append(bondHoldings, h)
		}
	}
	if len(bondHoldings) == 0 {
		g.logger.Warn().
			Str("portfolio", p.ID).
			Msg("Bond allocation below minimum but no bond holdings to rebalance into")
		return nil
	}

	target := constraints.MinBondAllocation / float64(len(bondHoldings))
	recs := make([]models.RebalanceRecommendation, 0, len(bondHoldings))
	for _, h := range bondHoldings {
		recs = append(recs, models.RebalanceRecommendation{
			Symbol:        h.Symbol,
			CurrentWeight: h.Weight,
			TargetWeight:  target,
			WeightChange:  target - h.Weight,
			Reason:        "Increase bond allocation",
			Priority:      models.PriorityMedium,
		})
	}
	return recs
}

// riskStage trims every stock/ETF holding by 10% when portfolio beta is
// above 1.2.
func (g *Generator) riskStage(p *models.Portfolio, analysis Analysis) []models.RebalanceRecommendation {
	if analysis.RiskMetrics.Beta <= 1.2 {
		return nil
	}

	var recs []models.RebalanceRecommendation
	for _, h := range p.Holdings() {
		if !h.AssetClass.IsEquity() {
			continue
		}
		target := h.Weight * 0.9
		recs = append(recs, models.RebalanceRecommendation{
			Symbol:        h.Symbol,
			CurrentWeight: h.Weight,
			TargetWeight:  target,
			WeightChange:  target - h.Weight,
			Reason:        "Reduce portfolio beta",
			Priority:      models.PriorityLow,
		})
	}
	return recs
}
