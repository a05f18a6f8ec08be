package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertType categorizes alerts.
type AlertType string

const (
	AlertTypePrice       AlertType = "price"
	AlertTypeRisk        AlertType = "risk"
	AlertTypePerformance AlertType = "performance"
	AlertTypeRebalance   AlertType = "rebalance"
)

// AlertCondition selects the comparison an alert applies to its threshold.
type AlertCondition string

const (
	ConditionAbove AlertCondition = "above"
	ConditionBelow AlertCondition = "below"
)

// Alert is a threshold watch on a symbol or portfolio metric. Risk and
// performance alerts must name the metric they watch. A triggered alert with
// AutoRebalance set asks the alert manager to invoke its rebalance callback.
type Alert struct {
	ID            string          `json:"id"`
	Type          AlertType       `json:"type"`
	Symbol        string          `json:"symbol"`
	Threshold     decimal.Decimal `json:"threshold"`
	Condition     AlertCondition  `json:"condition"`
	Message       string          `json:"message"`
	Metric        string          `json:"metric,omitempty"`
	AutoRebalance bool            `json:"auto_rebalance"`
	Expiration    *time.Time      `json:"expiration,omitempty"`
	IsTriggered   bool            `json:"is_triggered"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewAlert creates a validated alert.
func NewAlert(alertType AlertType, symbol string, threshold decimal.Decimal, condition AlertCondition, message string) (*Alert, error) {
	if symbol == "" {
		return nil, NewValidationError("symbol", "cannot be empty")
	}
	if message == "" {
		return nil, NewValidationError("message", "cannot be empty")
	}
	if condition != ConditionAbove && condition != ConditionBelow {
		return nil, NewValidationError("condition", "must be above or below: %s", condition)
	}
	switch alertType {
	case AlertTypePrice, AlertTypeRisk, AlertTypePerformance, AlertTypeRebalance:
	default:
		return nil, NewValidationError("type", "unknown alert type: %s", alertType)
	}

	return &Alert{
		Type:      alertType,
		Symbol:    symbol,
		Threshold: threshold,
		Condition: condition,
		Message:   message,
		IsActive:  true,
		CreatedAt: time.Now(),
	}, nil
}

// Expired reports whether the alert is past its expiration.
func (a *Alert) Expired(now time.Time) bool {
	return a.Expiration != nil && a.Expiration.Before(now)
}

// Check evaluates the alert against a current value and marks it triggered
// when the condition holds. Inactive and expired alerts never trigger.
func (a *Alert) Check(value decimal.Decimal, now time.Time) bool {
	if !a.IsActive || a.Expired(now) {
		return false
	}

	var hit bool
	switch a.Condition {
	case ConditionAbove:
		hit = value.GreaterThan(a.Threshold)
	case ConditionBelow:
		hit = value.LessThan(a.Threshold)
	}

	if hit {
		a.IsTriggered = true
	}
	return hit
}
