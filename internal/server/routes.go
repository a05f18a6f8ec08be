package server

import (
	"net/http"
	"time"

	"github.com/eddiepiper/04-03-DCM-agent/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Portfolio
	mux.HandleFunc("/api/portfolio", s.handlePortfolio)
	mux.HandleFunc("/api/portfolio/holdings", s.handleHoldings)
	mux.HandleFunc("/api/portfolio/holdings/", s.handleHoldingBySymbol)
	mux.HandleFunc("/api/portfolio/cash", s.handleCash)
	mux.HandleFunc("/api/portfolio/prices", s.handlePrices)
	mux.HandleFunc("/api/portfolio/validate", s.handleValidate)
	mux.HandleFunc("/api/portfolio/analysis", s.handleAnalysis)
	mux.HandleFunc("/api/portfolio/recommendations", s.handleRecommendations)
	mux.HandleFunc("/api/portfolio/trades", s.handleTrades)
	mux.HandleFunc("/api/portfolio/trades/execute", s.handleTradesExecute)
	mux.HandleFunc("/api/portfolio/report", s.handleReport)
	mux.HandleFunc("/api/portfolio/chart", s.handleChart)

	// Strategies
	mux.HandleFunc("/api/strategies", s.handleStrategies)
	mux.HandleFunc("/api/strategies/best", s.handleStrategyBest)
	mux.HandleFunc("/api/strategies/", s.routeStrategies)

	// Alerts
	mux.HandleFunc("/api/alerts", s.handleAlerts)
	mux.HandleFunc("/api/alerts/check", s.handleAlertCheck)
	mux.HandleFunc("/api/alerts/history", s.handleAlertHistory)
	mux.HandleFunc("/api/alerts/", s.handleAlertByID)
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"uptime":  time.Since(s.app.StartupTime).String(),
		"version": common.Version,
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}
