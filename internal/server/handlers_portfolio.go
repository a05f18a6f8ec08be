package server

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
	"github.com/eddiepiper/04-03-DCM-agent/internal/services/report"
)

// handlePortfolio handles GET /api/portfolio.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.Portfolio())
}

type addHoldingRequest struct {
	Symbol     string          `json:"symbol"`
	Name       string          `json:"name"`
	Quantity   int64           `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Sector     string          `json:"sector"`
	AssetClass string          `json:"asset_class"`
}

// handleHoldings handles POST /api/portfolio/holdings.
func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req addHoldingRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	h, err := models.NewHolding(req.Symbol, req.Name, req.Quantity, req.Price, req.Sector, models.ParseAssetClass(req.AssetClass))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if err := s.app.AddHolding(h); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, s.app.Portfolio())
}

// handleHoldingBySymbol handles DELETE /api/portfolio/holdings/{symbol}.
func (s *Server) handleHoldingBySymbol(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	symbol := PathParam(r, "/api/portfolio/holdings/")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	if err := s.app.RemoveHolding(symbol); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, s.app.Portfolio())
}

type cashRequest struct {
	CashBalance decimal.Decimal `json:"cash_balance"`
}

// handleCash handles PUT /api/portfolio/cash.
func (s *Server) handleCash(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	var req cashRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := s.app.SetCashBalance(req.CashBalance); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, s.app.Portfolio())
}

type pricesRequest struct {
	Prices map[string]decimal.Decimal `json:"prices"`
}

// handlePrices handles PUT /api/portfolio/prices. The whole batch is applied
// or none of it.
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	var req pricesRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Prices) == 0 {
		WriteError(w, http.StatusBadRequest, "Prices map is required")
		return
	}

	if err := s.app.UpdatePrices(req.Prices); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, s.app.Portfolio())
}

type validateRequest struct {
	Deltas map[string]float64 `json:"deltas"`
}

// handleValidate handles GET and POST /api/portfolio/validate. GET checks
// the current state; POST checks a hypothetical state with weight deltas
// applied.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		WriteJSON(w, http.StatusOK, s.app.Validate())
	case http.MethodPost:
		var req validateRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		WriteJSON(w, http.StatusOK, s.app.ValidateProposed(req.Deltas))
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleAnalysis handles GET /api/portfolio/analysis.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.Analyze())
}

// handleRecommendations handles GET /api/portfolio/recommendations.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	recs := s.app.Recommend()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": recs,
		"count":           len(recs),
	})
}

type tradesRequest struct {
	TargetWeights map[string]float64 `json:"target_weights"`
}

// handleTrades handles POST /api/portfolio/trades (preview only).
func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req tradesRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	trades, err := s.app.PreviewTrades(req.TargetWeights)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"trades": trades,
		"count":  len(trades),
	})
}

// handleTradesExecute handles POST /api/portfolio/trades/execute.
func (s *Server) handleTradesExecute(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req tradesRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	trades, err := s.app.ExecuteRebalance(req.TargetWeights)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"trades":    trades,
		"count":     len(trades),
		"portfolio": s.app.Portfolio(),
	})
}

// handleReport handles GET /api/portfolio/report (markdown).
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	result := s.app.Validate()
	analysis := s.app.Analyze()
	recs := s.app.Recommend()
	markdown := s.app.RenderAdvisory(&result, &analysis, recs)

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(markdown))
}

// handleChart handles GET /api/portfolio/chart?type=allocation|sector.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	var (
		png []byte
		err error
	)
	switch r.URL.Query().Get("type") {
	case "", "allocation":
		png, err = s.app.RenderChart(report.ChartAllocation)
	case "sector":
		png, err = s.app.RenderChart(report.ChartSector)
	default:
		WriteError(w, http.StatusBadRequest, "Unknown chart type")
		return
	}
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
