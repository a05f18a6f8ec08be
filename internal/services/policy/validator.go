// Package policy validates portfolios against the bank's constraint set.
package policy

import (
	"fmt"

	"github.com/eddiepiper/04-03-DCM-agent/internal/common"
	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
)

// Validator checks current and proposed portfolio states against a
// constraint set. Checks run in a fixed order — cash, position sizes, sector
// exposure, bond allocation — so message ordering is deterministic.
type Validator struct {
	logger *common.Logger
}

// NewValidator creates a policy validator.
func NewValidator(logger *common.Logger) *Validator {
	return &Validator{logger: logger}
}

// ValidatePortfolio evaluates the portfolio's current weights. Violations
// make the result invalid; warnings are advisory and never affect validity.
func (v *Validator) ValidatePortfolio(p *models.Portfolio, constraints models.ConstraintSet) models.PolicyResult {
	weights := make(map[string]float64, p.Len())
	for _, h := range p.Holdings() {
		weights[h.Symbol] = h.Weight
	}
	result := v.evaluate(p, constraints, weights, "")

	v.logger.Debug().
		Str("portfolio", p.ID).
		Bool("valid", result.IsValid).
		Int("violations", len(result.Violations)).
		Int("warnings", len(result.Warnings)).
		Msg("Portfolio validated")

	return result
}

// ValidateProposed evaluates a hypothetical state: each holding's weight
// plus its proposed delta, with sector and bond aggregates recomputed over
// the proposed weights. The portfolio itself is not touched.
func (v *Validator) ValidateProposed(p *models.Portfolio, constraints models.ConstraintSet, deltas map[string]float64) models.PolicyResult {
	weights := make(map[string]float64, p.Len())
	for _, h := range p.Holdings() {
		weights[h.Symbol] = h.Weight + deltas[h.Symbol]
	}
	result := v.evaluate(p, constraints, weights, "Proposed ")

	v.logger.Debug().
		Str("portfolio", p.ID).
		Bool("valid", result.IsValid).
		Int("violations", len(result.Violations)).
		Msg("Proposed state validated")

	return result
}

// evaluate runs the four policy checks against the given weights. prefix
// distinguishes proposed-state messages from current-state ones.
func (v *Validator) evaluate(p *models.Portfolio, constraints models.ConstraintSet, weights map[string]float64, prefix string) models.PolicyResult {
	var violations, warnings []string
	holdings := p.Holdings()

	// 1. Implicit cash balance.
	invested := 0.0
	for _, h := range holdings {
		invested += weights[h.Symbol]
	}
	cash := 1.0 - invested
	if cash < constraints.MinCashBalance {
		violations = append(violations, fmt.Sprintf(
			"%sCash balance (%.2f%%) below minimum (%.2f%%)",
			prefix, cash*100, constraints.MinCashBalance*100))
	}

	// 2. Position sizes. A holding above the hard cap is a violation only;
	// the 90% warning band applies beneath the cap.
	for _, h := range holdings {
		w := weights[h.Symbol]
		if w > constraints.MaxSinglePosition {
			violations = append(violations, fmt.Sprintf(
				"%sPosition size for %s (%.2f%%) exceeds maximum (%.2f%%)",
				prefix, h.Symbol, w*100, constraints.MaxSinglePosition*100))
		} else if w > constraints.MaxSinglePosition*0.9 {
			warnings = append(warnings, fmt.Sprintf(
				"%sPosition size for %s (%.2f%%) approaching maximum (%.2f%%)",
				prefix, h.Symbol, w*100, constraints.MaxSinglePosition*100))
		}
	}

	// 3. Sector exposure, sectors in first-seen holding order.
	exposure := make(map[string]float64)
	var sectors []string
	for _, h := range holdings {
		if h.Sector == "" {
			continue
		}
		if _, seen := exposure[h.Sector]; !seen {
			sectors = append(sectors, h.Sector)
		}
		exposure[h.Sector] += weights[h.Symbol]
	}
	for _, sector := range sectors {
		if exposure[sector] > constraints.MaxSectorExposure {
			violations = append(violations, fmt.Sprintf(
				"%sSector exposure for %s (%.2f%%) exceeds maximum (%.2f%%)",
				prefix, sector, exposure[sector]*100, constraints.MaxSectorExposure*100))
		}
	}

	// 4. Bond allocation. Below-min and above-max are mutually exclusive:
	// at most one bond violation per pass.
	bonds := 0.0
	for _, h := range holdings {
		if h.AssetClass.IsFixedIncome() {
			bonds += weights[h.Symbol]
		}
	}
	if bonds < constraints.MinBondAllocation {
		violations = append(violations, fmt.Sprintf(
			"%sBond allocation (%.2f%%) below minimum (%.2f%%)",
			prefix, bonds*100, constraints.MinBondAllocation*100))
	} else if bonds > constraints.MaxBondAllocation {
		violations = append(violations, fmt.Sprintf(
			"%sBond allocation (%.2f%%) exceeds maximum (%.2f%%)",
			prefix, bonds*100, constraints.MaxBondAllocation*100))
	}

	return models.PolicyResult{
		IsValid:    len(violations) == 0,
		Violations: violations,
		Warnings:   warnings,
	}
}
