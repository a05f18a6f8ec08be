package models

import "time"

// Strategy is a named weighting methodology with a tracked confidence score.
// Mutated only by the strategy scorer's performance update; persisted
// between runs by the strategy store.
type Strategy struct {
	Name            string             `json:"name" badgerhold:"key"`
	Description     string             `json:"description"`
	ConfidenceScore float64            `json:"confidence_score"`
	TimesUsed       int                `json:"times_used"`
	LastPerformance float64            `json:"last_performance"`
	Active          bool               `json:"active"`
	Parameters      map[string]float64 `json:"parameters"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// NewStrategy creates a validated strategy with default parameters.
func NewStrategy(name, description string) (*Strategy, error) {
	if name == "" {
		return nil, NewValidationError("name", "cannot be empty")
	}
	if description == "" {
		return nil, NewValidationError("description", "cannot be empty")
	}

	return &Strategy{
		Name:            name,
		Description:     description,
		ConfidenceScore: 0.8,
		Active:          true,
		Parameters: map[string]float64{
			"rebalance_threshold": 0.05,
			"min_holdings":        3,
		},
		CreatedAt: time.Now(),
	}, nil
}

// Validate checks the strategy fields are in range.
func (s *Strategy) Validate() error {
	if s.Name == "" {
		return NewValidationError("name", "cannot be empty")
	}
	if s.Description == "" {
		return NewValidationError("description", "cannot be empty")
	}
	if s.ConfidenceScore < 0 || s.ConfidenceScore > 1 {
		return NewValidationError("confidence_score", "must be between 0 and 1: %f", s.ConfidenceScore)
	}
	if s.TimesUsed < 0 {
		return NewValidationError("times_used", "cannot be negative: %d", s.TimesUsed)
	}
	return nil
}

// PerformanceRecord is one observed-performance sample for a strategy,
// appended on every performance update.
type PerformanceRecord struct {
	ID          uint64    `json:"id" badgerhold:"key"`
	Strategy    string    `json:"strategy"`
	Performance float64   `json:"performance"`
	Timestamp   time.Time `json:"timestamp"`
}
