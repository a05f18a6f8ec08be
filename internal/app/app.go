// Package app wires configuration, storage, and services into a single
// runnable core shared by the server binary and tests.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eddiepiper/04-03-DCM-agent/internal/common"
	"github.com/eddiepiper/04-03-DCM-agent/internal/interfaces"
	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
	"github.com/eddiepiper/04-03-DCM-agent/internal/services/alert"
	"github.com/eddiepiper/04-03-DCM-agent/internal/services/policy"
	"github.com/eddiepiper/04-03-DCM-agent/internal/services/rebalance"
	"github.com/eddiepiper/04-03-DCM-agent/internal/services/report"
	"github.com/eddiepiper/04-03-DCM-agent/internal/services/strategy"
	"github.com/eddiepiper/04-03-DCM-agent/internal/services/trading"
	"github.com/eddiepiper/04-03-DCM-agent/internal/storage/badger"
)

// App holds all initialized services plus the managed portfolio.
// The portfolio itself is not concurrency-safe; every operation that touches
// it goes through the mutex here, so multi-step flows like validate-then-
// execute see a consistent state.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Storage         *badger.Store
	StrategyService *strategy.Service
	AlertManager    *alert.Manager
	Validator       *policy.Validator
	Analyzer        *rebalance.Analyzer
	Generator       *rebalance.Generator
	Calculator      *trading.Calculator
	StartupTime     time.Time

	mu        sync.RWMutex
	portfolio *models.Portfolio
}

// NewApp initializes config, logging, storage and all services. configPath
// may be empty, in which case DCM_CONFIG and the default locations are tried.
func NewApp(configPath string, market interfaces.MarketDataClient, research interfaces.ResearchClient) (*App, error) {
	if configPath == "" {
		configPath = os.Getenv("DCM_CONFIG")
	}
	if configPath == "" {
		configPath = "config/dcm.toml"
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storagePath := config.Storage.Path
	if storagePath == "" {
		storagePath = filepath.Join("data", "dcm")
	}
	store, err := badger.NewStore(logger, storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	constraints := models.ConstraintSet{
		MinCashBalance:    config.Constraints.MinCashBalance,
		MaxSinglePosition: config.Constraints.MaxSinglePosition,
		MaxSectorExposure: config.Constraints.MaxSectorExposure,
		MinBondAllocation: config.Constraints.MinBondAllocation,
		MaxBondAllocation: config.Constraints.MaxBondAllocation,
		MaxPositionSize:   config.Constraints.MaxPositionSize,
		MinPositionSize:   config.Constraints.MinPositionSize,
	}

	portfolio, err := models.NewPortfolio(config.Portfolio.ID, config.Portfolio.Currency, decimal.Zero, constraints)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize portfolio: %w", err)
	}

	scorer := strategy.NewScorer(logger)
	strategyStore := badger.NewStrategyStorage(store, logger)

	a := &App{
		Config:          config,
		Logger:          logger,
		Storage:         store,
		StrategyService: strategy.NewService(strategyStore, scorer, market, research, logger),
		AlertManager:    alert.NewManager(logger),
		Validator:       policy.NewValidator(logger),
		Analyzer:        rebalance.NewAnalyzer(logger),
		Generator:       rebalance.NewGenerator(logger),
		Calculator:      trading.NewCalculator(logger),
		StartupTime:     time.Now(),
		portfolio:       portfolio,
	}

	a.AlertManager.SetRebalanceCallback(a.autoRebalance)

	logger.Info().
		Str("portfolio", portfolio.ID).
		Str("currency", portfolio.Currency).
		Msg("Application initialized")

	return a, nil
}

// Close releases storage resources.
func (a *App) Close() error {
	return a.Storage.Close()
}

// PortfolioView is a read-only snapshot of the managed portfolio.
type PortfolioView struct {
	ID          string                  `json:"id"`
	Currency    string                  `json:"currency"`
	CashBalance decimal.Decimal         `json:"cash_balance"`
	TotalValue  decimal.Decimal         `json:"total_value"`
	Holdings    []models.Holding        `json:"holdings"`
	Constraints models.ConstraintSet    `json:"constraints"`
	Metrics     models.PortfolioMetrics `json:"metrics"`
	LastUpdated time.Time               `json:"last_updated"`
}

// Portfolio returns a snapshot of the managed portfolio.
func (a *App) Portfolio() PortfolioView {
	a.mu.RLock()
	defer a.mu.RUnlock()

	p := a.portfolio
	holdings := make([]models.Holding, 0, p.Len())
	for _, h := range p.Holdings() {
		holdings = append(holdings, *h)
	}

	return PortfolioView{
		ID:          p.ID,
		Currency:    p.Currency,
		CashBalance: p.CashBalance,
		TotalValue:  p.TotalValue(),
		Holdings:    holdings,
		Constraints: p.Constraints,
		Metrics:     p.Metrics,
		LastUpdated: p.LastUpdated,
	}
}

// AddHolding adds a position to the portfolio.
func (a *App) AddHolding(h *models.Holding) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.portfolio.AddHolding(h)
}

// RemoveHolding removes a position from the portfolio.
func (a *App) RemoveHolding(symbol string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.portfolio.RemoveHolding(symbol)
}

// SetCashBalance replaces the available cash figure.
func (a *App) SetCashBalance(cash decimal.Decimal) error {
	if cash.IsNegative() {
		return models.NewValidationError("cash_balance", "cannot be negative: %s", cash)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.portfolio.SetCashBalance(cash)
	return nil
}

// UpdatePrices applies a price batch and runs price alerts against it.
func (a *App) UpdatePrices(prices map[string]decimal.Decimal) error {
	a.mu.Lock()
	err := a.portfolio.UpdatePrices(prices)
	a.mu.Unlock()
	if err != nil {
		return err
	}
	a.AlertManager.CheckPrices(prices)
	return nil
}

// SetRiskMetrics records externally supplied portfolio risk figures.
func (a *App) SetRiskMetrics(beta, volatility, sharpe float64) {
	a.mu.Lock()
	a.portfolio.SetRiskMetrics(beta, volatility, sharpe)
	a.mu.Unlock()

	a.AlertManager.CheckMetrics(models.AlertTypeRisk, map[string]decimal.Decimal{
		"beta":       decimal.NewFromFloat(beta),
		"volatility": decimal.NewFromFloat(volatility),
		"sharpe":     decimal.NewFromFloat(sharpe),
	})
}

// Validate checks the current portfolio state against its constraints.
func (a *App) Validate() models.PolicyResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Validator.ValidatePortfolio(a.portfolio, a.portfolio.Constraints)
}

// ValidateProposed checks the portfolio with hypothetical weight deltas
// applied.
func (a *App) ValidateProposed(deltas map[string]float64) models.PolicyResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Validator.ValidateProposed(a.portfolio, a.portfolio.Constraints, deltas)
}

// Analyze computes exposure, concentration and diversification metrics.
func (a *App) Analyze() rebalance.Analysis {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Analyzer.Analyze(a.portfolio, a.portfolio.Constraints)
}

// Recommend generates rebalance recommendations from the current state.
func (a *App) Recommend() []models.RebalanceRecommendation {
	a.mu.RLock()
	defer a.mu.RUnlock()
	analysis := a.Analyzer.Analyze(a.portfolio, a.portfolio.Constraints)
	return a.Generator.Generate(a.portfolio, analysis, a.portfolio.Constraints)
}

// PreviewTrades converts target weights into a trade list without mutating
// the portfolio.
func (a *App) PreviewTrades(targets map[string]float64) ([]models.Trade, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Calculator.ComputeTrades(a.portfolio, targets)
}

// ExecuteRebalance computes trades for target weights and applies them
// atomically. The whole flow runs under one lock so no concurrent mutation
// can slip between calculation and execution.
func (a *App) ExecuteRebalance(targets map[string]float64) ([]models.Trade, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	trades, err := a.Calculator.ComputeTrades(a.portfolio, targets)
	if err != nil {
		return nil, err
	}
	if len(trades) == 0 {
		return nil, nil
	}
	if err := a.Calculator.ExecuteTrades(a.portfolio, trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// EvaluateStrategy scores a stored strategy against the current portfolio.
func (a *App) EvaluateStrategy(ctx context.Context, name string) (float64, map[string]float64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.StrategyService.EvaluateStrategy(ctx, name, a.portfolio)
}

// SelectBestStrategy scores all stored strategies and returns the winner.
func (a *App) SelectBestStrategy(ctx context.Context) (*models.Strategy, float64, map[string]float64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.StrategyService.SelectBest(ctx, a.portfolio)
}

// RenderAdvisory formats the full markdown advisory report.
func (a *App) RenderAdvisory(result *models.PolicyResult, analysis *rebalance.Analysis, recs []models.RebalanceRecommendation) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return report.FormatAdvisory(a.portfolio, result, analysis, recs)
}

// RenderChart renders a portfolio chart as PNG bytes.
func (a *App) RenderChart(kind report.ChartKind) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	switch kind {
	case report.ChartSector:
		return report.RenderSectorChart(a.portfolio)
	default:
		return report.RenderAllocationChart(a.portfolio)
	}
}

// autoRebalance is the alert callback: recommendations from the current
// state are converted into targets and executed when the proposed state
// passes validation.
func (a *App) autoRebalance(trigger *models.Alert) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	analysis := a.Analyzer.Analyze(a.portfolio, a.portfolio.Constraints)
	recs := a.Generator.Generate(a.portfolio, analysis, a.portfolio.Constraints)
	if len(recs) == 0 {
		a.Logger.Info().Str("alert", trigger.ID).Msg("Auto-rebalance: no recommendations, nothing to do")
		return nil
	}

	deltas := make(map[string]float64, len(recs))
	for _, r := range recs {
		deltas[r.Symbol] += r.WeightChange
	}

	result := a.Validator.ValidateProposed(a.portfolio, a.portfolio.Constraints, deltas)
	if !result.IsValid {
		return models.NewStateError("auto-rebalance", trigger.Symbol, "proposed state violates policy constraints")
	}

	targets := a.portfolio.Weights()
	for symbol, delta := range deltas {
		targets[symbol] += delta
	}
	invested := 0.0
	for _, w := range targets {
		invested += w
	}
	targets[models.CashSymbol] = 1.0 - invested

	trades, err := a.Calculator.ComputeTrades(a.portfolio, targets)
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		return nil
	}
	return a.Calculator.ExecuteTrades(a.portfolio, trades)
}
