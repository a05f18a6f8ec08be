package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eddiepiper/04-03-DCM-agent/internal/app"
	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "dcm.toml")
	config := fmt.Sprintf(`environment = "test"

[server]
host = "127.0.0.1"
port = 0
rate_limit = 0

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

	a, err := app.NewApp(configPath, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return NewServer(a)
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func seedHoldings(t *testing.T, srv *Server) {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPut, "/api/portfolio/cash", map[string]interface{}{"cash_balance": "10000"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	holdings := []map[string]interface{}{
		{"symbol": "AAPL", "name": "Apple Inc", "quantity": 100, "price": "200", "sector": "Technology", "asset_class": "stock"},
		{"symbol": "MSFT", "name": "Microsoft Corp", "quantity": 50, "price": "400", "sector": "Technology", "asset_class": "stock"},
		{"symbol": "VTI", "name": "Vanguard Total Market", "quantity": 100, "price": "250", "sector": "Diversified", "asset_class": "etf"},
		{"symbol": "BND", "name": "Vanguard Total Bond", "quantity": 150, "price": "100", "sector": "Fixed Income", "asset_class": "bond"},
		{"symbol": "AGG", "name": "iShares Core Bond", "quantity": 100, "price": "100", "sector": "Fixed Income", "asset_class": "bond"},
	}
	for _, h := range holdings {
		rec := doJSON(t, srv, http.MethodPost, "/api/portfolio/holdings", h)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	decodeBody(t, rec, &body)
	assert.Equal(t, "ok", body["status"])

	rec = doJSON(t, srv, http.MethodPost, "/api/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleVersion(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/version", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	decodeBody(t, rec, &body)
	assert.Contains(t, body, "version")
}

func TestPortfolioLifecycle(t *testing.T) {
	srv := newTestServer(t)
	seedHoldings(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/portfolio", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view app.PortfolioView
	decodeBody(t, rec, &view)
	assert.Equal(t, "test-portfolio", view.ID)
	assert.Len(t, view.Holdings, 5)
	assert.Equal(t, "100000", view.TotalValue.String())

	// Remove and verify.
	rec = doJSON(t, srv, http.MethodDelete, "/api/portfolio/holdings/AGG", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &view)
	assert.Len(t, view.Holdings, 4)

	// Removing again is a state conflict.
	rec = doJSON(t, srv, http.MethodDelete, "/api/portfolio/holdings/AGG", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAddHolding_Validation(t *testing.T) {
	srv := newTestServer(t)

	// Empty symbol is a validation error.
	rec := doJSON(t, srv, http.MethodPost, "/api/portfolio/holdings", map[string]interface{}{
		"symbol": "", "name": "Nameless", "quantity": 1, "price": "100",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Duplicates are a state conflict.
	h := map[string]interface{}{"symbol": "AAPL", "name": "Apple", "quantity": 1, "price": "100", "asset_class": "stock"}
	rec = doJSON(t, srv, http.MethodPost, "/api/portfolio/holdings", h)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, srv, http.MethodPost, "/api/portfolio/holdings", h)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleCash_RejectsNegative(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPut, "/api/portfolio/cash", map[string]interface{}{"cash_balance": "-5"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePrices(t *testing.T) {
	srv := newTestServer(t)
	seedHoldings(t, srv)

	rec := doJSON(t, srv, http.MethodPut, "/api/portfolio/prices", map[string]interface{}{
		"prices": map[string]string{"AAPL": "210"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var view app.PortfolioView
	decodeBody(t, rec, &view)
	assert.Equal(t, "101000", view.TotalValue.String())

	// Empty batch is rejected.
	rec = doJSON(t, srv, http.MethodPut, "/api/portfolio/prices", map[string]interface{}{"prices": map[string]string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleValidate(t *testing.T) {
	srv := newTestServer(t)
	seedHoldings(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/portfolio/validate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.PolicyResult
	decodeBody(t, rec, &result)
	assert.True(t, result.IsValid)

	// Pushing AAPL up 50 points breaks cash, position and sector constraints.
	rec = doJSON(t, srv, http.MethodPost, "/api/portfolio/validate", map[string]interface{}{
		"deltas": map[string]float64{"AAPL": 0.50},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &result)
	assert.False(t, result.IsValid)
	assert.NotEmpty(t, result.Violations)
}

func TestHandleRecommendations(t *testing.T) {
	srv := newTestServer(t)
	seedHoldings(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/portfolio/recommendations", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Recommendations []models.RebalanceRecommendation `json:"recommendations"`
		Count           int                              `json:"count"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, len(body.Recommendations), body.Count)
}

func TestHandleTrades_PreviewAndExecute(t *testing.T) {
	srv := newTestServer(t)
	seedHoldings(t, srv)

	targets := map[string]interface{}{
		"target_weights": map[string]float64{
			"AAPL": 0.179, "MSFT": 0.179, "VTI": 0.179, "BND": 0.1795, "AGG": 0.1795,
			models.CashSymbol: 0.104,
		},
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/portfolio/trades", targets)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var preview struct {
		Trades []models.Trade `json:"trades"`
		Count  int            `json:"count"`
	}
	decodeBody(t, rec, &preview)
	assert.Equal(t, 5, preview.Count)

	// Preview does not mutate.
	recPortfolio := doJSON(t, srv, http.MethodGet, "/api/portfolio", nil)
	var view app.PortfolioView
	decodeBody(t, recPortfolio, &view)
	assert.Equal(t, "10000", view.CashBalance.String())

	// Execute applies the trades atomically.
	rec = doJSON(t, srv, http.MethodPost, "/api/portfolio/trades/execute", targets)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var executed struct {
		Trades    []models.Trade    `json:"trades"`
		Count     int               `json:"count"`
		Portfolio app.PortfolioView `json:"portfolio"`
	}
	decodeBody(t, rec, &executed)
	assert.Equal(t, 5, executed.Count)
	assert.Equal(t, "10200", executed.Portfolio.CashBalance.String())
	assert.Equal(t, "100000", executed.Portfolio.TotalValue.String())
}

func TestHandleTrades_BadTargetSum(t *testing.T) {
	srv := newTestServer(t)
	seedHoldings(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/portfolio/trades", map[string]interface{}{
		"target_weights": map[string]float64{"AAPL": 0.5},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReport(t *testing.T) {
	srv := newTestServer(t)
	seedHoldings(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/portfolio/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "# Portfolio: test-portfolio")
	assert.Contains(t, rec.Body.String(), "## Policy Compliance")
}

func TestHandleChart(t *testing.T) {
	srv := newTestServer(t)
	seedHoldings(t, srv)

	for _, kind := range []string{"", "?type=allocation", "?type=sector"} {
		rec := doJSON(t, srv, http.MethodGet, "/api/portfolio/chart"+kind, nil)
		require.Equal(t, http.StatusOK, rec.Code, kind)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/portfolio/chart?type=candlestick", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Charting an empty portfolio cannot succeed.
	empty := newTestServer(t)
	rec = doJSON(t, empty, http.MethodGet, "/api/portfolio/chart", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestStrategyEndpoints(t *testing.T) {
	srv := newTestServer(t)
	seedHoldings(t, srv)

	strat := map[string]interface{}{
		"name":             "momentum",
		"description":      "Trend-following weighting",
		"confidence_score": 0.8,
		"active":           true,
	}
	rec := doJSON(t, srv, http.MethodPost, "/api/strategies", strat)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/api/strategies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Count int `json:"count"`
	}
	decodeBody(t, rec, &list)
	assert.Equal(t, 1, list.Count)

	rec = doJSON(t, srv, http.MethodPost, "/api/strategies/momentum/evaluate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var eval struct {
		Score float64 `json:"score"`
	}
	decodeBody(t, rec, &eval)
	assert.InDelta(t, 0.5, eval.Score, 1e-9)

	rec = doJSON(t, srv, http.MethodPost, "/api/strategies/momentum/performance", map[string]interface{}{"observed": 0.9})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Strategy
	decodeBody(t, rec, &updated)
	assert.InDelta(t, 0.83, updated.ConfidenceScore, 1e-9)

	rec = doJSON(t, srv, http.MethodGet, "/api/strategies/momentum/performance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Count int `json:"count"`
	}
	decodeBody(t, rec, &history)
	assert.Equal(t, 1, history.Count)

	rec = doJSON(t, srv, http.MethodGet, "/api/strategies/unknown", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/strategies/momentum", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAlertEndpoints(t *testing.T) {
	srv := newTestServer(t)
	seedHoldings(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/alerts", map[string]interface{}{
		"type": "price", "symbol": "AAPL", "threshold": "250", "condition": "above",
		"message": "AAPL broke 250",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Alert
	decodeBody(t, rec, &created)
	require.NotEmpty(t, created.ID)

	// Risk alerts without a metric are rejected.
	rec = doJSON(t, srv, http.MethodPost, "/api/alerts", map[string]interface{}{
		"type": "risk", "symbol": "*", "threshold": "1.2", "condition": "above",
		"message": "beta watch",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/alerts/check", map[string]interface{}{
		"prices": map[string]string{"AAPL": "260"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var check struct {
		Count int `json:"count"`
	}
	decodeBody(t, rec, &check)
	assert.Equal(t, 1, check.Count)

	rec = doJSON(t, srv, http.MethodGet, "/api/alerts/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/alerts/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/alerts/no-such-id", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
