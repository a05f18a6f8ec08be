// Package strategy scores weighting strategies from external signals and
// tracks their confidence over time.
package strategy

import (
	"strings"

	"github.com/eddiepiper/04-03-DCM-agent/internal/common"
	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
)

// Score component weights. Fixed — not configurable.
const (
	analystWeight     = 0.3
	researchWeight    = 0.2
	riskWeight        = 0.2
	performanceWeight = 0.2
	sentimentWeight   = 0.1

	// Confidence smoothing: new = alpha×old + beta×observed.
	confidenceAlpha = 0.7
	confidenceBeta  = 0.3

	// neutralScore is the default for any absent or failed signal.
	neutralScore = 0.5

	// minRecommendedChange drops sub-1% weight nudges from scorer output.
	minRecommendedChange = 0.01
)

// Signals bundles whatever external data the collaborators managed to
// obtain. Missing entries degrade to the neutral default — the scorer never
// fails because a signal is absent.
type Signals struct {
	Insights map[string]*models.MarketInsights
	Market   map[string]models.MarketData
}

// Scorer combines qualitative and quantitative signals into a single
// confidence score per strategy.
type Scorer struct {
	logger *common.Logger
}

// NewScorer creates a strategy scorer.
func NewScorer(logger *common.Logger) *Scorer {
	return &Scorer{logger: logger}
}

// Evaluate scores a strategy against the portfolio and signals, returning
// the overall score in [0,1] and a symbol→weight-change recommendation map.
// Each sub-score is clamped to [0,1] independently.
func (s *Scorer) Evaluate(strat *models.Strategy, p *models.Portfolio, sig Signals) (float64, map[string]float64) {
	if p == nil || p.Len() == 0 {
		return 0.0, nil
	}

	analyst := analystScore(sig.Insights)
	research := researchScore(sig.Insights)
	risk := riskScore(p, sig.Market)
	performance := performanceScore(p, sig.Market)
	sentiment := sentimentScore(sig.Insights)

	score := analyst*analystWeight +
		research*researchWeight +
		risk*riskWeight +
		performance*performanceWeight +
		sentiment*sentimentWeight

	recommendations := s.recommendWeights(p, sig.Market, score)

	s.logger.Debug().
		Str("strategy", strat.Name).
		Float64("score", score).
		Float64("analyst", analyst).
		Float64("research", research).
		Float64("risk", risk).
		Float64("performance", performance).
		Float64("sentiment", sentiment).
		Msg("Strategy evaluated")

	return score, recommendations
}

// UpdatePerformance records an observed performance sample: increments the
// usage counter and smooths confidence with the fixed 0.7/0.3 constants.
func (s *Scorer) UpdatePerformance(strat *models.Strategy, observed float64) {
	strat.TimesUsed++
	strat.LastPerformance = observed
	strat.ConfidenceScore = confidenceAlpha*strat.ConfidenceScore + confidenceBeta*observed

	s.logger.Info().
		Str("strategy", strat.Name).
		Float64("performance", observed).
		Float64("confidence", strat.ConfidenceScore).
		Int("times_used", strat.TimesUsed).
		Msg("Strategy performance updated")
}

// SelectBest evaluates every active strategy and returns the one with the
// strictly highest score; on ties the first seen wins. Returns nil when no
// strategy is active.
func (s *Scorer) SelectBest(strategies []*models.Strategy, p *models.Portfolio, sig Signals) (*models.Strategy, float64, map[string]float64) {
	bestScore := -1.0
	var best *models.Strategy
	var bestRecs map[string]float64

	for _, strat := range strategies {
		if !strat.Active {
			continue
		}
		score, recs := s.Evaluate(strat, p, sig)
		if score > bestScore {
			bestScore = score
			best = strat
			bestRecs = recs
		}
	}

	return best, bestScore, bestRecs
}

// recommendWeights derives target weights from the score: high-conviction
// passes use inverse-volatility risk parity, the rest equal weighting. Only
// changes of at least 1% are surfaced.
func (s *Scorer) recommendWeights(p *models.Portfolio, market map[string]models.MarketData, score float64) map[string]float64 {
	var targets map[string]float64
	if score > 0.7 {
		targets = riskParityWeights(p, market)
	} else {
		targets = equalWeights(p)
	}

	recommendations := make(map[string]float64)
	for _, h := range p.Holdings() {
		target, ok := targets[h.Symbol]
		if !ok {
			continue
		}
		change := target - h.Weight
		if change >= minRecommendedChange || change <= -minRecommendedChange {
			recommendations[h.Symbol] = change
		}
	}
	return recommendations
}

func equalWeights(p *models.Portfolio) map[string]float64 {
	if p.Len() == 0 {
		return nil
	}
	weight := 1.0 / float64(p.Len())
	weights := make(map[string]float64, p.Len())
	for _, symbol := range p.Symbols() {
		weights[symbol] = weight
	}
	return weights
}

// riskParityWeights sizes positions inversely to volatility. Symbols without
// market data (or with zero volatility) fall back to equal weighting.
func riskParityWeights(p *models.Portfolio, market map[string]models.MarketData) map[string]float64 {
	totalInverse := 0.0
	for _, symbol := range p.Symbols() {
		data, ok := market[symbol]
		if !ok || data.Volatility <= 0 {
			return equalWeights(p)
		}
		totalInverse += 1.0 / data.Volatility
	}
	if totalInverse <= 0 {
		return equalWeights(p)
	}

	weights := make(map[string]float64, p.Len())
	for _, symbol := range p.Symbols() {
		weights[symbol] = (1.0 / market[symbol].Volatility) / totalInverse
	}
	return weights
}

// analystScore averages the summed recommendation weights per symbol.
func analystScore(insights map[string]*models.MarketInsights) float64 {
	if len(insights) == 0 {
		return neutralScore
	}

	total := 0.0
	count := 0
	for _, insight := range insights {
		if insight == nil || len(insight.AnalystRecommendations) == 0 {
			continue
		}
		score := 0.0
		for _, rec := range insight.AnalystRecommendations {
			score += rec.Weight
		}
		total += clamp(score)
		count++
	}
	if count == 0 {
		return neutralScore
	}
	return total / float64(count)
}

// researchScore nudges the neutral default ±0.1 per bullish/bearish mention
// in research snippets, per symbol, clamped.
func researchScore(insights map[string]*models.MarketInsights) float64 {
	if len(insights) == 0 {
		return neutralScore
	}

	total := 0.0
	count := 0
	for _, insight := range insights {
		if insight == nil || len(insight.WebResearch) == 0 {
			continue
		}
		score := neutralScore
		for _, note := range insight.WebResearch {
			content := strings.ToLower(note.Content)
			if strings.Contains(content, "positive") || strings.Contains(content, "bullish") {
				score += 0.1
			} else if strings.Contains(content, "negative") || strings.Contains(content, "bearish") {
				score -= 0.1
			}
		}
		total += clamp(score)
		count++
	}
	if count == 0 {
		return neutralScore
	}
	return total / float64(count)
}

// riskScore inverts the weight-averaged beta/volatility blend: lower risk
// scores higher.
func riskScore(p *models.Portfolio, market map[string]models.MarketData) float64 {
	if len(market) == 0 {
		return neutralScore
	}

	totalBeta := 0.0
	totalVolatility := 0.0
	for _, h := range p.Holdings() {
		data, ok := market[h.Symbol]
		if !ok {
			continue
		}
		totalBeta += data.Beta * h.Weight
		totalVolatility += data.Volatility * h.Weight
	}

	return clamp(1.0 - (totalBeta*0.5 + totalVolatility*0.5))
}

// performanceScore shifts neutral by the average return implied by current
// market prices against held prices.
func performanceScore(p *models.Portfolio, market map[string]models.MarketData) float64 {
	if p.Len() == 0 || len(market) == 0 {
		return neutralScore
	}

	totalReturn := 0.0
	for _, h := range p.Holdings() {
		data, ok := market[h.Symbol]
		if !ok || !h.CurrentPrice.IsPositive() {
			continue
		}
		ratio, _ := data.CurrentPrice.Div(h.CurrentPrice).Float64()
		totalReturn += ratio - 1.0
	}
	avgReturn := totalReturn / float64(p.Len())

	return clamp(neutralScore + avgReturn)
}

// sentimentScore averages market and news sentiment across symbols.
func sentimentScore(insights map[string]*models.MarketInsights) float64 {
	if len(insights) == 0 {
		return neutralScore
	}

	total := 0.0
	count := 0
	for _, insight := range insights {
		if insight == nil {
			continue
		}
		total += (insight.MarketSentiment.Score() + insight.NewsSentiment.Score()) / 2
		count++
	}
	if count == 0 {
		return neutralScore
	}
	return total / float64(count)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
