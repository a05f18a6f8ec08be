package models

import "github.com/shopspring/decimal"

// Sentiment is the qualitative read supplied by the research collaborator.
type Sentiment string

const (
	SentimentBullish Sentiment = "Bullish"
	SentimentNeutral Sentiment = "Neutral"
	SentimentBearish Sentiment = "Bearish"
)

// Score maps sentiment onto [0,1]. Unknown values score neutral.
func (s Sentiment) Score() float64 {
	switch s {
	case SentimentBullish:
		return 1.0
	case SentimentBearish:
		return 0.0
	default:
		return 0.5
	}
}

// AnalystRating is the consensus bucket for an analyst recommendation.
type AnalystRating string

const (
	RatingStrongBuy  AnalystRating = "Strong Buy"
	RatingBuy        AnalystRating = "Buy"
	RatingHold       AnalystRating = "Hold"
	RatingSell       AnalystRating = "Sell"
	RatingStrongSell AnalystRating = "Strong Sell"
)

// AnalystRecommendation pairs a rating with its consensus weight in [0,1].
type AnalystRecommendation struct {
	Rating AnalystRating `json:"rating"`
	Weight float64       `json:"weight"`
}

// MarketData is the per-symbol quantitative snapshot from the market-data
// collaborator: plain data, no framework dependency.
type MarketData struct {
	Symbol       string          `json:"symbol"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Volume       int64           `json:"volume"`
	MarketCap    int64           `json:"market_cap"`
	Beta         float64         `json:"beta"`
	Volatility   float64         `json:"volatility"`
}

// ResearchNote is one free-text research snippet from the research
// collaborator.
type ResearchNote struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// MarketInsights extends MarketData with the qualitative signals the
// strategy scorer consumes. Any field may be absent; the scorer degrades to
// its neutral default rather than failing.
type MarketInsights struct {
	MarketData
	MarketSentiment        Sentiment               `json:"market_sentiment"`
	NewsSentiment          Sentiment               `json:"news_sentiment"`
	AnalystRecommendations []AnalystRecommendation `json:"analyst_recommendations,omitempty"`
	WebResearch            []ResearchNote          `json:"web_research,omitempty"`
	CompanyInfo            map[string]string       `json:"company_info,omitempty"`
}
