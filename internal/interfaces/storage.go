package interfaces

import (
	"context"

	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
)

// StrategyStore persists strategy metadata and performance history between
// runs.
type StrategyStore interface {
	GetStrategy(ctx context.Context, name string) (*models.Strategy, error)
	SaveStrategy(ctx context.Context, strategy *models.Strategy) error
	DeleteStrategy(ctx context.Context, name string) error
	ListStrategies(ctx context.Context) ([]*models.Strategy, error)
	AppendPerformance(ctx context.Context, record *models.PerformanceRecord) error
	PerformanceHistory(ctx context.Context, strategyName string) ([]models.PerformanceRecord, error)
	Close() error
}
