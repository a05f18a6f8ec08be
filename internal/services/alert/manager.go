// Package alert tracks threshold alerts on prices and portfolio metrics.
package alert

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eddiepiper/04-03-DCM-agent/internal/common"
	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
)

// RebalanceFunc is invoked when a triggered alert requests auto-rebalance.
type RebalanceFunc func(trigger *models.Alert) error

// RebalanceEvent records one auto-rebalance invocation for audit.
type RebalanceEvent struct {
	AlertID   string    `json:"alert_id"`
	Symbol    string    `json:"symbol"`
	Message   string    `json:"message"`
	Succeeded bool      `json:"succeeded"`
	Timestamp time.Time `json:"timestamp"`
}

// Manager owns the alert registry. Safe for concurrent use.
type Manager struct {
	mu        sync.Mutex
	alerts    map[models.AlertType][]*models.Alert
	history   []RebalanceEvent
	rebalance RebalanceFunc
	logger    *common.Logger
}

// NewManager creates an alert manager.
func NewManager(logger *common.Logger) *Manager {
	alerts := make(map[models.AlertType][]*models.Alert)
	for _, t := range []models.AlertType{models.AlertTypePrice, models.AlertTypeRisk, models.AlertTypePerformance, models.AlertTypeRebalance} {
		alerts[t] = nil
	}
	return &Manager{
		alerts: alerts,
		logger: logger,
	}
}

// SetRebalanceCallback registers the function invoked for auto-rebalance
// alerts.
func (m *Manager) SetRebalanceCallback(fn RebalanceFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebalance = fn
}

// AddAlert validates and registers an alert, assigning it an ID. Risk and
// performance alerts must name a metric.
func (m *Manager) AddAlert(a *models.Alert) error {
	if a == nil {
		return models.NewValidationError("alert", "cannot be nil")
	}
	if (a.Type == models.AlertTypeRisk || a.Type == models.AlertTypePerformance) && a.Metric == "" {
		return models.NewValidationError("metric", "%s alerts must specify a metric", a.Type)
	}
	if a.Expiration != nil && a.Expiration.Before(time.Now()) {
		return models.NewValidationError("expiration", "cannot be in the past")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	m.alerts[a.Type] = append(m.alerts[a.Type], a)

	m.logger.Debug().
		Str("alert", a.ID).
		Str("type", string(a.Type)).
		Str("symbol", a.Symbol).
		Msg("Alert registered")

	return nil
}

// AddPriceAlert registers a price threshold watch.
func (m *Manager) AddPriceAlert(symbol string, threshold decimal.Decimal, condition models.AlertCondition, message string, autoRebalance bool) (*models.Alert, error) {
	a, err := models.NewAlert(models.AlertTypePrice, symbol, threshold, condition, message)
	if err != nil {
		return nil, err
	}
	a.AutoRebalance = autoRebalance
	if err := m.AddAlert(a); err != nil {
		return nil, err
	}
	return a, nil
}

// AddMetricAlert registers a risk or performance metric watch.
func (m *Manager) AddMetricAlert(alertType models.AlertType, symbol, metric string, threshold decimal.Decimal, condition models.AlertCondition, message string) (*models.Alert, error) {
	a, err := models.NewAlert(alertType, symbol, threshold, condition, message)
	if err != nil {
		return nil, err
	}
	a.Metric = metric
	if err := m.AddAlert(a); err != nil {
		return nil, err
	}
	return a, nil
}

// CheckPrices evaluates price alerts against a price map and returns the
// alerts that fired. Auto-rebalance alerts invoke the callback.
func (m *Manager) CheckPrices(prices map[string]decimal.Decimal) []*models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var fired []*models.Alert
	for _, a := range m.alerts[models.AlertTypePrice] {
		price, ok := prices[a.Symbol]
		if !ok {
			continue
		}
		if a.Check(price, now) {
			fired = append(fired, a)
			m.logger.Info().
				Str("alert", a.ID).
				Str("symbol", a.Symbol).
				Str("price", price.String()).
				Msg("Price alert triggered")
			if a.AutoRebalance {
				m.runRebalance(a)
			}
		}
	}
	return fired
}

// CheckMetrics evaluates risk/performance alerts against a metric→value map.
func (m *Manager) CheckMetrics(alertType models.AlertType, metrics map[string]decimal.Decimal) []*models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var fired []*models.Alert
	for _, a := range m.alerts[alertType] {
		value, ok := metrics[a.Metric]
		if !ok {
			continue
		}
		if a.Check(value, now) {
			fired = append(fired, a)
			m.logger.Info().
				Str("alert", a.ID).
				Str("metric", a.Metric).
				Str("value", value.String()).
				Msg("Metric alert triggered")
			if a.AutoRebalance {
				m.runRebalance(a)
			}
		}
	}
	return fired
}

// runRebalance invokes the callback and records the outcome. Caller holds
// the lock.
func (m *Manager) runRebalance(a *models.Alert) {
	if m.rebalance == nil {
		return
	}
	err := m.rebalance(a)
	m.history = append(m.history, RebalanceEvent{
		AlertID:   a.ID,
		Symbol:    a.Symbol,
		Message:   a.Message,
		Succeeded: err == nil,
		Timestamp: time.Now(),
	})
	if err != nil {
		m.logger.Error().Err(err).Str("alert", a.ID).Msg("Auto-rebalance failed")
	}
}

// ActiveAlerts returns all active, unexpired alerts.
func (m *Manager) ActiveAlerts() []*models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var active []*models.Alert
	for _, t := range []models.AlertType{models.AlertTypePrice, models.AlertTypeRisk, models.AlertTypePerformance, models.AlertTypeRebalance} {
		for _, a := range m.alerts[t] {
			if a.IsActive && !a.Expired(now) {
				active = append(active, a)
			}
		}
	}
	return active
}

// TriggeredAlerts returns all alerts that have fired.
func (m *Manager) TriggeredAlerts() []*models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	var triggered []*models.Alert
	for _, t := range []models.AlertType{models.AlertTypePrice, models.AlertTypeRisk, models.AlertTypePerformance, models.AlertTypeRebalance} {
		for _, a := range m.alerts[t] {
			if a.IsTriggered {
				triggered = append(triggered, a)
			}
		}
	}
	return triggered
}

// RemoveAlert deactivates an alert by ID.
func (m *Manager) RemoveAlert(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, alerts := range m.alerts {
		for _, a := range alerts {
			if a.ID == id {
				a.IsActive = false
				return nil
			}
		}
	}
	return models.NewStateError("remove alert", id, "not found")
}

// RebalanceHistory returns the recorded auto-rebalance events.
func (m *Manager) RebalanceHistory() []RebalanceEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := make([]RebalanceEvent, len(m.history))
	copy(history, m.history)
	return history
}
