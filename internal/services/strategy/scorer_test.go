package strategy

import (
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

func mustStrategy(t *testing.T, name string) *models.Strategy {
	t.Helper()
	s, err := models.NewStrategy(name, name+" methodology")
	require.NoError(t, err)
	return s
}

func TestEvaluate_NoSignalsIsNeutral(t *testing.T) {
	scorer := NewScorer(common.NewSilentLogger())
	p := balancedPortfolio(t)

	score, recs := scorer.Evaluate(mustStrategy(t, "momentum"), p, Signals{})

	// Every component degrades to 0.5 when its signal is absent.
	assert.InDelta(t, 0.5, score, 1e-9)

	// A neutral score falls back to equal weighting (20% each): the two
	// holdings already at 20% produce no recommendation.
	require.Len(t, recs, 3)
	assert.InDelta(t, -0.05, recs["VTI"], 1e-9)
	assert.InDelta(t, 0.05, recs["BND"], 1e-9)
	assert.InDelta(t, 0.10, recs["AGG"], 1e-9)
	assert.NotContains(t, recs, "AAPL")
	assert.NotContains(t, recs, "MSFT")
}

func TestEvaluate_EmptyPortfolio(t *testing.T) {
	scorer := NewScorer(common.NewSilentLogger())
	p, err := models.NewPortfolio("test", "USD", decimal.NewFromInt(10000), models.DefaultConstraints())
	require.NoError(t, err)

	score, recs := scorer.Evaluate(mustStrategy(t, "momentum"), p, Signals{})
	assert.Zero(t, score)
	assert.Nil(t, recs)
}

func TestEvaluate_StrongSignals(t *testing.T) {
	scorer := NewScorer(common.NewSilentLogger())
	p := balancedPortfolio(t)

	insights := map[string]*models.MarketInsights{
		"AAPL": {
			MarketSentiment: models.SentimentBullish,
			NewsSentiment:   models.SentimentBullish,
			AnalystRecommendations: []models.AnalystRecommendation{
				{Rating: models.RatingStrongBuy, Weight: 1.0},
			},
			WebResearch: []models.ResearchNote{
				{Title: "Q3 outlook", Content: "Bullish earnings revisions across the board"},
				{Title: "Channel checks", Content: "Supply chain data looks bullish"},
				{Title: "Street view", Content: "Positive coverage initiation"},
			},
		},
	}
	market := make(map[string]models.MarketData, p.Len())
	for _, h := range p.Holdings() {
		market[h.Symbol] = models.MarketData{
			Symbol:       h.Symbol,
			CurrentPrice: h.CurrentPrice,
			Beta:         0.5,
			Volatility:   0.1,
		}
	}

	score, recs := scorer.Evaluate(mustStrategy(t, "momentum"), p, Signals{Insights: insights, Market: market})

	// analyst 1.0, research 0.8, risk 1-(0.5*0.45+0.5*0.09)=0.73,
	// performance 0.5 (prices unchanged), sentiment 1.0.
	assert.InDelta(t, 0.806, score, 1e-9)

	// Above the conviction threshold with uniform volatility, risk parity
	// collapses to equal weighting.
	require.Len(t, recs, 3)
	assert.InDelta(t, -0.05, recs["VTI"], 1e-9)
	assert.InDelta(t, 0.05, recs["BND"], 1e-9)
	assert.InDelta(t, 0.10, recs["AGG"], 1e-9)
}

func TestRiskParityWeights(t *testing.T) {
	// Two holdings, volatilities 0.1 and 0.3: inverse-vol weights 75%/25%.
	p, err := models.NewPortfolio("test", "USD", decimal.NewFromInt(20000), models.DefaultConstraints(),
		mustHolding(t, "VTI", 160, 250, "Diversified", models.AssetClassETF),
		mustHolding(t, "BND", 400, 100, "Fixed Income", models.AssetClassBond),
	)
	require.NoError(t, err)

	market := map[string]models.MarketData{
		"VTI": {Symbol: "VTI", CurrentPrice: decimal.NewFromInt(250), Volatility: 0.3},
		"BND": {Symbol: "BND", CurrentPrice: decimal.NewFromInt(100), Volatility: 0.1},
	}
	weights := riskParityWeights(p, market)
	assert.InDelta(t, 0.25, weights["VTI"], 1e-9)
	assert.InDelta(t, 0.75, weights["BND"], 1e-9)

	// A symbol without market data falls back to equal weighting.
	delete(market, "BND")
	weights = riskParityWeights(p, market)
	assert.InDelta(t, 0.5, weights["VTI"], 1e-9)
	assert.InDelta(t, 0.5, weights["BND"], 1e-9)
}

func TestUpdatePerformance_SmoothsConfidence(t *testing.T) {
	scorer := NewScorer(common.NewSilentLogger())
	strat := mustStrategy(t, "momentum")
	strat.ConfidenceScore = 0.8
	strat.TimesUsed = 5

	scorer.UpdatePerformance(strat, 0.9)

	assert.InDelta(t, 0.83, strat.ConfidenceScore, 1e-9)
	assert.Equal(t, 6, strat.TimesUsed)
	assert.InDelta(t, 0.9, strat.LastPerformance, 1e-12)
}

func TestSelectBest_SkipsInactiveAndFirstWinsOnTie(t *testing.T) {
	scorer := NewScorer(common.NewSilentLogger())
	p := balancedPortfolio(t)

	first := mustStrategy(t, "momentum")
	inactive := mustStrategy(t, "value")
	inactive.Active = false
	third := mustStrategy(t, "quality")

	best, score, recs := scorer.SelectBest([]*models.Strategy{first, inactive, third}, p, Signals{})
	require.NotNil(t, best)
	assert.Equal(t, "momentum", best.Name)
	assert.InDelta(t, 0.5, score, 1e-9)
	assert.Len(t, recs, 3)
}

func TestSelectBest_NoActiveStrategies(t *testing.T) {
	scorer := NewScorer(common.NewSilentLogger())
	p := balancedPortfolio(t)

	inactive := mustStrategy(t, "value")
	inactive.Active = false

	best, score, recs := scorer.SelectBest([]*models.Strategy{inactive}, p, Signals{})
	assert.Nil(t, best)
	assert.Equal(t, -1.0, score)
	assert.Nil(t, recs)
}

func TestSentimentScore(t *testing.T) {
	insights := map[string]*models.MarketInsights{
		"AAPL": {MarketSentiment: models.SentimentBullish, NewsSentiment: models.SentimentBearish},
		"MSFT": {MarketSentiment: models.SentimentNeutral, NewsSentiment: models.SentimentNeutral},
	}
	// AAPL averages to 0.5, MSFT to 0.5.
	assert.InDelta(t, 0.5, sentimentScore(insights), 1e-9)

	insights["AAPL"].NewsSentiment = models.SentimentBullish
	assert.InDelta(t, 0.75, sentimentScore(insights), 1e-9)
}

func TestResearchScore_ClampsAtBounds(t *testing.T) {
	notes := make([]models.ResearchNote, 8)
	for i := range notes {
		notes[i] = models.ResearchNote{Title: "note", Content: "bearish signal"}
	}
	insights := map[string]*models.MarketInsights{
		"AAPL": {WebResearch: notes},
	}
	assert.Zero(t, researchScore(insights))
}
