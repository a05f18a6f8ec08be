package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/eddiepiper/04-03-DCM-agent/internal/common"
	"github.com/eddiepiper/04-03-DCM-agent/internal/interfaces"
	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
)

type strategyStorage struct {
	store  *Store
	logger *common.Logger
}

// NewStrategyStorage creates a StrategyStore backed by BadgerHold.
func NewStrategyStorage(store *Store, logger *common.Logger) interfaces.StrategyStore {
	return &strategyStorage{store: store, logger: logger}
}

func (s *strategyStorage) GetStrategy(_ context.Context, name string) (*models.Strategy, error) {
	var strategy models.Strategy
	err := s.store.db.Get(name, &strategy)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.NewStateError("get strategy", name, "not found")
		}
		return nil, fmt.Errorf("failed to get strategy '%s': %w", name, err)
	}
	return &strategy, nil
}

func (s *strategyStorage) SaveStrategy(_ context.Context, strategy *models.Strategy) error {
	if err := strategy.Validate(); err != nil {
		return err
	}

	// Read existing to preserve CreatedAt across updates
	var existing models.Strategy
	err := s.store.db.Get(strategy.Name, &existing)
	if err == nil {
		strategy.CreatedAt = existing.CreatedAt
	} else if strategy.CreatedAt.IsZero() {
		strategy.CreatedAt = time.Now()
	}
	strategy.UpdatedAt = time.Now()

	if err := s.store.db.Upsert(strategy.Name, strategy); err != nil {
		return fmt.Errorf("failed to save strategy: %w", err)
	}
	s.logger.Debug().Str("strategy", strategy.Name).Float64("confidence", strategy.ConfidenceScore).Msg("Strategy saved")
	return nil
}

func (s *strategyStorage) DeleteStrategy(_ context.Context, name string) error {
	err := s.store.db.Delete(name, models.Strategy{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete strategy '%s': %w", name, err)
	}
	s.logger.Debug().Str("strategy", name).Msg("Strategy deleted")
	return nil
}

func (s *strategyStorage) ListStrategies(_ context.Context) ([]*models.Strategy, error) {
	var strategies []models.Strategy
	if err := s.store.db.Find(&strategies, nil); err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}
	out := make([]*models.Strategy, len(strategies))
	for i := range strategies {
		out[i] = &strategies[i]
	}
	return out, nil
}

func (s *strategyStorage) AppendPerformance(_ context.Context, record *models.PerformanceRecord) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if err := s.store.db.Insert(badgerhold.NextSequence(), record); err != nil {
		return fmt.Errorf("failed to append performance record: %w", err)
	}
	return nil
}

func (s *strategyStorage) PerformanceHistory(_ context.Context, strategyName string) ([]models.PerformanceRecord, error) {
	var records []models.PerformanceRecord
	query := badgerhold.Where("Strategy").Eq(strategyName)
	if err := s.store.db.Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to load performance history for '%s': %w", strategyName, err)
	}
	return records, nil
}

func (s *strategyStorage) Close() error {
	return s.store.Close()
}
