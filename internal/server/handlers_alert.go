package server

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
)

type addAlertRequest struct {
	Type          string          `json:"type"`
	Symbol        string          `json:"symbol"`
	Metric        string          `json:"metric"`
	Threshold     decimal.Decimal `json:"threshold"`
	Condition     string          `json:"condition"`
	Message       string          `json:"message"`
	AutoRebalance bool            `json:"auto_rebalance"`
	Expiration    *time.Time      `json:"expiration,omitempty"`
}

// handleAlerts handles GET (list active) and POST (create) /api/alerts.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		alerts := s.app.AlertManager.ActiveAlerts()
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"alerts": alerts,
			"count":  len(alerts),
		})
	case http.MethodPost:
		var req addAlertRequest
		if !DecodeJSON(w, r, &req) {
			return
		}

		a, err := models.NewAlert(models.AlertType(req.Type), req.Symbol, req.Threshold, models.AlertCondition(req.Condition), req.Message)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		a.Metric = req.Metric
		a.AutoRebalance = req.AutoRebalance
		a.Expiration = req.Expiration

		if err := s.app.AlertManager.AddAlert(a); err != nil {
			WriteDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, a)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

type alertCheckRequest struct {
	Prices  map[string]decimal.Decimal `json:"prices"`
	Metrics map[string]decimal.Decimal `json:"metrics"`
}

// handleAlertCheck handles POST /api/alerts/check. Prices run price alerts,
// metrics run risk and performance alerts.
func (s *Server) handleAlertCheck(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req alertCheckRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	var triggered []*models.Alert
	if len(req.Prices) > 0 {
		triggered = append(triggered, s.app.AlertManager.CheckPrices(req.Prices)...)
	}
	if len(req.Metrics) > 0 {
		triggered = append(triggered, s.app.AlertManager.CheckMetrics(models.AlertTypeRisk, req.Metrics)...)
		triggered = append(triggered, s.app.AlertManager.CheckMetrics(models.AlertTypePerformance, req.Metrics)...)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"triggered": triggered,
		"count":     len(triggered),
	})
}

// handleAlertHistory handles GET /api/alerts/history.
func (s *Server) handleAlertHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	history := s.app.AlertManager.RebalanceHistory()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"history": history,
		"count":   len(history),
	})
}

// handleAlertByID handles DELETE /api/alerts/{id}.
func (s *Server) handleAlertByID(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := PathParam(r, "/api/alerts/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Alert ID is required")
		return
	}

	if err := s.app.AlertManager.RemoveAlert(id); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"removed": id})
}
