// Package interfaces defines contracts between engine components and
// external collaborators.
package interfaces

import (
	"context"

	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
)

// MarketDataClient supplies price/beta/volatility snapshots. Implemented
// outside the engine; the core only consumes the plain data it returns.
type MarketDataClient interface {
	GetMarketData(ctx context.Context, symbols []string) (map[string]models.MarketData, error)
}

// ResearchClient supplies qualitative signals: analyst consensus, news and
// market sentiment, free-text research snippets. Failures are absorbed by
// the strategy scorer as neutral defaults — they must never abort a pass.
type ResearchClient interface {
	GetInsights(ctx context.Context, symbol string) (*models.MarketInsights, error)
}
