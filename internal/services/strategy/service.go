package strategy

import (
	"context"
	"time"

	"github.com/eddiepiper/04-03-DCM-agent/internal/common"
	"github.com/eddiepiper/04-03-DCM-agent/internal/interfaces"
	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
)

// Service combines the scorer with persistent strategy storage and the
// external signal collaborators.
type Service struct {
	store    interfaces.StrategyStore
	scorer   *Scorer
	market   interfaces.MarketDataClient
	research interfaces.ResearchClient
	logger   *common.Logger
}

// NewService creates a strategy service. The market and research clients may
// be nil; evaluation then runs on neutral defaults.
func NewService(store interfaces.StrategyStore, scorer *Scorer, market interfaces.MarketDataClient, research interfaces.ResearchClient, logger *common.Logger) *Service {
	return &Service{
		store:    store,
		scorer:   scorer,
		market:   market,
		research: research,
		logger:   logger,
	}
}

// GetStrategy retrieves a strategy by name.
func (s *Service) GetStrategy(ctx context.Context, name string) (*models.Strategy, error) {
	return s.store.GetStrategy(ctx, name)
}

// SaveStrategy validates and persists a strategy.
func (s *Service) SaveStrategy(ctx context.Context, strat *models.Strategy) error {
	if err := strat.Validate(); err != nil {
		return err
	}
	if err := s.store.SaveStrategy(ctx, strat); err != nil {
		return err
	}
	s.logger.Info().Str("strategy", strat.Name).Msg("Strategy saved")
	return nil
}

// DeleteStrategy removes a strategy.
func (s *Service) DeleteStrategy(ctx context.Context, name string) error {
	return s.store.DeleteStrategy(ctx, name)
}

// ListStrategies returns all persisted strategies.
func (s *Service) ListStrategies(ctx context.Context) ([]*models.Strategy, error) {
	return s.store.ListStrategies(ctx)
}

// CollectSignals gathers whatever market data and research insights the
// collaborators can provide. Collaborator failures are logged and absorbed —
// a missing signal degrades the score to its neutral default instead of
// aborting evaluation.
func (s *Service) CollectSignals(ctx context.Context, p *models.Portfolio) Signals {
	sig := Signals{
		Insights: make(map[string]*models.MarketInsights),
		Market:   make(map[string]models.MarketData),
	}

	symbols := p.Symbols()

	if s.market != nil {
		data, err := s.market.GetMarketData(ctx, symbols)
		if err != nil {
			s.logger.Warn().Err(&models.ExternalSignalError{Source: "market_data", Symbol: "*", Err: err}).
				Msg("Market data unavailable, scoring with neutral defaults")
		} else {
			sig.Market = data
		}
	}

	if s.research != nil {
		for _, symbol := range symbols {
			insight, err := s.research.GetInsights(ctx, symbol)
			if err != nil {
				s.logger.Warn().Err(&models.ExternalSignalError{Source: "research", Symbol: symbol, Err: err}).
					Msg("Research insights unavailable for symbol")
				continue
			}
			sig.Insights[symbol] = insight
		}
	}

	return sig
}

// EvaluateStrategy scores a stored strategy against the portfolio using
// freshly collected signals.
func (s *Service) EvaluateStrategy(ctx context.Context, name string, p *models.Portfolio) (float64, map[string]float64, error) {
	strat, err := s.store.GetStrategy(ctx, name)
	if err != nil {
		return 0, nil, err
	}

	sig := s.CollectSignals(ctx, p)
	score, recs := s.scorer.Evaluate(strat, p, sig)
	return score, recs, nil
}

// SelectBest evaluates all active strategies and returns the winner.
func (s *Service) SelectBest(ctx context.Context, p *models.Portfolio) (*models.Strategy, float64, map[string]float64, error) {
	strategies, err := s.store.ListStrategies(ctx)
	if err != nil {
		return nil, 0, nil, err
	}

	sig := s.CollectSignals(ctx, p)
	best, score, recs := s.scorer.SelectBest(strategies, p, sig)
	return best, score, recs, nil
}

// UpdatePerformance applies the smoothing update to a stored strategy,
// persists it and appends a performance history record.
func (s *Service) UpdatePerformance(ctx context.Context, name string, observed float64) (*models.Strategy, error) {
	strat, err := s.store.GetStrategy(ctx, name)
	if err != nil {
		return nil, err
	}

	s.scorer.UpdatePerformance(strat, observed)

	if err := s.store.SaveStrategy(ctx, strat); err != nil {
		return nil, err
	}

	record := &models.PerformanceRecord{
		Strategy:    name,
		Performance: observed,
		Timestamp:   time.Now(),
	}
	if err := s.store.AppendPerformance(ctx, record); err != nil {
		s.logger.Warn().Err(err).Str("strategy", name).Msg("Failed to append performance history")
	}

	return strat, nil
}

// PerformanceHistory returns the recorded performance observations for a
// strategy.
func (s *Service) PerformanceHistory(ctx context.Context, name string) ([]models.PerformanceRecord, error) {
	return s.store.PerformanceHistory(ctx, name)
}
