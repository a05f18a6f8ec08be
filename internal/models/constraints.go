package models

// ConstraintSet holds the named numeric bounds a portfolio must satisfy.
// One canonical type: the validator and the recommendation generator both
// consume it, injected explicitly per call. Immutable for the duration of a
// validation pass.
type ConstraintSet struct {
	MinCashBalance    float64 `json:"min_cash_balance"`
	MaxSinglePosition float64 `json:"max_single_position"`
	MaxSectorExposure float64 `json:"max_sector_exposure"`
	MinBondAllocation float64 `json:"min_bond_allocation"`
	MaxBondAllocation float64 `json:"max_bond_allocation"`
	MaxPositionSize   float64 `json:"max_position_size"`
	MinPositionSize   float64 `json:"min_position_size"`
}

// DefaultConstraints returns the standard bank policy bounds.
func DefaultConstraints() ConstraintSet {
	return ConstraintSet{
		MinCashBalance:    0.05,
		MaxSinglePosition: 0.25,
		MaxSectorExposure: 0.40,
		MinBondAllocation: 0.15,
		MaxBondAllocation: 0.30,
		MaxPositionSize:   0.40,
		MinPositionSize:   0.10,
	}
}

// ConstraintsFromMap builds a ConstraintSet from the flat key→float mapping
// supplied by the config collaborator. Missing keys keep their defaults,
// unknown keys are ignored.
func ConstraintsFromMap(m map[string]float64) ConstraintSet {
	c := DefaultConstraints()
	for key, value := range m {
		switch key {
		case "min_cash_balance":
			c.MinCashBalance = value
		case "max_single_position":
			c.MaxSinglePosition = value
		case "max_sector_exposure":
			c.MaxSectorExposure = value
		case "min_bond_allocation":
			c.MinBondAllocation = value
		case "max_bond_allocation":
			c.MaxBondAllocation = value
		case "max_position_size":
			c.MaxPositionSize = value
		case "min_position_size":
			c.MinPositionSize = value
		}
	}
	return c
}

// ToMap renders the constraint set back to the flat mapping form.
func (c ConstraintSet) ToMap() map[string]float64 {
	return map[string]float64{
		"min_cash_balance":    c.MinCashBalance,
		"max_single_position": c.MaxSinglePosition,
		"max_sector_exposure": c.MaxSectorExposure,
		"min_bond_allocation": c.MinBondAllocation,
		"max_bond_allocation": c.MaxBondAllocation,
		"max_position_size":   c.MaxPositionSize,
		"min_position_size":   c.MinPositionSize,
	}
}
