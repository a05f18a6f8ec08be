package app

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "dcm.toml")
	config := fmt.Sprintf(`environment = "test"

[storage]
path = %q

[portfolio]
id = "test-portfolio"
currency = "USD"

[logging]
level = "error"
format = "json"
`, filepath.Join(dir, "data"))
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0644))

	a, err := NewApp(configPath, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func seedApp(t *testing.T, a *App) {
	t.Helper()
	require.NoError(t, a.SetCashBalance(decimal.NewFromInt(10000)))

	holdings := []struct {
		symbol, name, sector string
		quantity, price      int64
		class                models.AssetClass
	}{
		{"AAPL", "Apple Inc", "Technology", 100, 200, models.AssetClassStock},
		{"MSFT", "Microsoft Corp", "Technology", 50, 400, models.AssetClassStock},
		{"VTI", "Vanguard Total Market", "Diversified", 100, 250, models.AssetClassETF},
		{"BND", "Vanguard Total Bond", "Fixed Income", 150, 100, models.AssetClassBond},
		{"AGG", "iShares Core Bond", "Fixed Income", 100, 100, models.AssetClassBond},
	}
	for _, h := range holdings {
		holding, err := models.NewHolding(h.symbol, h.name, h.quantity, decimal.NewFromInt(h.price), h.sector, h.class)
		require.NoError(t, err)
		require.NoError(t, a.AddHolding(holding))
	}
}

func TestNewApp(t *testing.T) {
	a := newTestApp(t)

	view := a.Portfolio()
	assert.Equal(t, "test-portfolio", view.ID)
	assert.Equal(t, "USD", view.Currency)
	assert.Empty(t, view.Holdings)
	assert.True(t, view.CashBalance.IsZero())
}

func TestApp_SetCashBalanceRejectsNegative(t *testing.T) {
	a := newTestApp(t)

	err := a.SetCashBalance(decimal.NewFromInt(-1))
	require.Error(t, err)
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestApp_ValidateSeededPortfolio(t *testing.T) {
	a := newTestApp(t)
	seedApp(t, a)

	result := a.Validate()
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Violations)
}

func TestApp_ExecuteRebalance(t *testing.T) {
	a := newTestApp(t)
	seedApp(t, a)

	trades, err := a.ExecuteRebalance(map[string]float64{
		"AAPL": 0.179, "MSFT": 0.179, "VTI": 0.179, "BND": 0.1795, "AGG": 0.1795,
		models.CashSymbol: 0.104,
	})
	require.NoError(t, err)
	assert.Len(t, trades, 5)

	view := a.Portfolio()
	assert.Equal(t, "10200", view.CashBalance.String())
	assert.Equal(t, "100000", view.TotalValue.String())
}

func TestApp_ExecuteRebalance_BadTargetSum(t *testing.T) {
	a := newTestApp(t)
	seedApp(t, a)

	_, err := a.ExecuteRebalance(map[string]float64{"AAPL": 0.5})
	require.Error(t, err)
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestApp_AutoRebalanceOnPriceAlert(t *testing.T) {
	a := newTestApp(t)
	seedApp(t, a)

	_, err := a.AlertManager.AddPriceAlert("AAPL", decimal.NewFromInt(200), models.ConditionAbove, "AAPL above 200", true)
	require.NoError(t, err)

	// The price move takes AAPL over the threshold; the triggered alert
	// drives recommendations into executed trades.
	require.NoError(t, a.UpdatePrices(map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(201)}))

	history := a.AlertManager.RebalanceHistory()
	require.Len(t, history, 1)
	assert.True(t, history[0].Succeeded)

	// Rebalancing sells concentrated positions into cash at current prices,
	// so the total is conserved while cash grows.
	view := a.Portfolio()
	assert.Equal(t, "100100", view.TotalValue.String())
	assert.True(t, view.CashBalance.GreaterThan(decimal.NewFromInt(10000)))
}

func TestApp_RiskMetricAlert(t *testing.T) {
	a := newTestApp(t)
	seedApp(t, a)

	_, err := a.AlertManager.AddMetricAlert(models.AlertTypeRisk, "*", "beta", decimal.NewFromFloat(1.2), models.ConditionAbove, "Portfolio beta too high")
	require.NoError(t, err)

	a.SetRiskMetrics(1.35, 0.18, 1.0)
	assert.Len(t, a.AlertManager.TriggeredAlerts(), 1)
}

func TestApp_RenderAdvisory(t *testing.T) {
	a := newTestApp(t)
	seedApp(t, a)

	result := a.Validate()
	analysis := a.Analyze()
	out := a.RenderAdvisory(&result, &analysis, a.Recommend())

	assert.Contains(t, out, "# Portfolio: test-portfolio")
	assert.Contains(t, out, "## Policy Compliance")
	assert.Contains(t, out, "## Risk Analysis")
	assert.Contains(t, out, "## Rebalance Recommendations")
}
