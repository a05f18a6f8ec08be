package policy

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eddiepiper/04-03-DCM-agent/internal/common"
	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
)

func mustHolding(t *testing.T, symbol string, quantity int64, price int64, sector string, class models.AssetClass) *models.Holding {
	t.Helper()
	h, err := models.NewHolding(symbol, symbol+" Test", quantity, decimal.NewFromInt(price), sector, class)
	require.NoError(t, err)
	return h
}

// balancedPortfolio: $100,000 total with $10,000 cash.
// AAPL 20%, MSFT 20%, VTI 25%, BND 15%, AGG 10%.
func balancedPortfolio(t *testing.T) *models.Portfolio {
	t.Helper()
	p, err := models.NewPortfolio("test", "USD", decimal.NewFromInt(10000), models.DefaultConstraints(),
		mustHolding(t, "AAPL", 100, 200, "Technology", models.AssetClassStock),
		mustHolding(t, "MSFT", 50, 400, "Technology", models.AssetClassStock),
		mustHolding(t, "VTI", 100, 250, "Diversified", models.AssetClassETF),
		mustHolding(t, "BND", 150, 100, "Fixed Income", models.AssetClassBond),
		mustHolding(t, "AGG", 100, 100, "Fixed Income", models.AssetClassBond),
	)
	require.NoError(t, err)
	return p
}

func newValidator() *Validator {
	return NewValidator(common.NewSilentLogger())
}

func TestValidatePortfolio_Compliant(t *testing.T) {
	p := balancedPortfolio(t)
	result := newValidator().ValidatePortfolio(p, p.Constraints)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Violations)
	// VTI sits exactly at the 25% cap: inside the warning band, not a violation.
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Position size for VTI")
	assert.Contains(t, result.Warnings[0], "approaching maximum")
}

func TestValidatePortfolio_CashBelowMinimum(t *testing.T) {
	p, err := models.NewPortfolio("test", "USD", decimal.NewFromInt(1000), models.DefaultConstraints(),
		mustHolding(t, "BND", 450, 100, "Fixed Income", models.AssetClassBond),
		mustHolding(t, "VTI", 216, 250, "Diversified", models.AssetClassETF),
	)
	require.NoError(t, err)

	// Cash is 1,000 of 100,000: 1%, below the 5% floor.
	result := newValidator().ValidatePortfolio(p, p.Constraints)
	assert.False(t, result.IsValid)

	found := false
	for _, v := range result.Violations {
		if strings.Contains(v, "Cash balance") && strings.Contains(v, "below minimum") {
			found = true
		}
	}
	assert.True(t, found, "expected cash violation in %v", result.Violations)
}

func TestValidatePortfolio_BondViolationsMutuallyExclusive(t *testing.T) {
	// 35% bonds: above the 30% cap. Exactly one bond violation.
	p, err := models.NewPortfolio("test", "USD", decimal.NewFromInt(40000), models.DefaultConstraints(),
		mustHolding(t, "BND", 350, 100, "Fixed Income", models.AssetClassBond),
		mustHolding(t, "VTI", 100, 250, "Diversified", models.AssetClassETF),
	)
	require.NoError(t, err)

	result := newValidator().ValidatePortfolio(p, p.Constraints)
	assert.False(t, result.IsValid)

	bondViolations := 0
	for _, v := range result.Violations {
		if strings.Contains(v, "Bond allocation") {
			bondViolations++
			assert.Contains(t, v, "exceeds maximum")
		}
	}
	assert.Equal(t, 1, bondViolations)
}

func TestValidateProposed_MultipleViolations(t *testing.T) {
	p := balancedPortfolio(t)

	// Pushing AAPL up 50 points breaks position size, sector exposure and
	// drives implied cash negative.
	result := newValidator().ValidateProposed(p, p.Constraints, map[string]float64{"AAPL": 0.50})
	assert.False(t, result.IsValid)
	assert.Len(t, result.Violations, 3)

	assert.Contains(t, result.Violations[0], "Proposed Cash balance")
	assert.Contains(t, result.Violations[1], "Proposed Position size for AAPL")
	assert.Contains(t, result.Violations[1], "exceeds maximum")
	assert.Contains(t, result.Violations[2], "Proposed Sector exposure for Technology")
}

func TestValidateProposed_WarningBand(t *testing.T) {
	p := balancedPortfolio(t)

	// AAPL to 23%: above 90% of the 25% cap but under it. MSFT trimmed to
	// keep the Technology sector below its cap.
	result := newValidator().ValidateProposed(p, p.Constraints, map[string]float64{"AAPL": 0.03, "MSFT": -0.05})
	assert.True(t, result.IsValid)

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "Proposed Position size for AAPL") && strings.Contains(w, "approaching maximum") {
			found = true
		}
	}
	assert.True(t, found, "expected AAPL warning in %v", result.Warnings)
}

func TestValidateProposed_DoesNotMutate(t *testing.T) {
	p := balancedPortfolio(t)
	before := p.Weights()

	newValidator().ValidateProposed(p, p.Constraints, map[string]float64{"AAPL": 0.50})

	assert.Equal(t, before, p.Weights())
}

func TestValidatePortfolio_Empty(t *testing.T) {
	p, err := models.NewPortfolio("empty", "USD", decimal.NewFromInt(1000), models.DefaultConstraints())
	require.NoError(t, err)

	// All cash: bond minimum is the only failing check.
	result := newValidator().ValidatePortfolio(p, p.Constraints)
	assert.False(t, result.IsValid)
	require.Len(t, result.Violations, 1)
	assert.Contains(t, result.Violations[0], "Bond allocation")
	assert.Contains(t, result.Violations[0], "below minimum")
}
