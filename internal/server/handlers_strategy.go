package server

import (
	"net/http"
	"strings"

	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
)

// handleStrategies handles GET (list) and POST (save) /api/strategies.
func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		strategies, err := s.app.StrategyService.ListStrategies(r.Context())
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"strategies": strategies,
			"count":      len(strategies),
		})
	case http.MethodPost:
		var strat models.Strategy
		if !DecodeJSON(w, r, &strat) {
			return
		}
		if err := s.app.StrategyService.SaveStrategy(r.Context(), &strat); err != nil {
			WriteDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, strat)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleStrategyBest handles GET /api/strategies/best.
func (s *Server) handleStrategyBest(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	best, score, weights, err := s.app.SelectBestStrategy(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"strategy":            best,
		"score":               score,
		"recommended_weights": weights,
	})
}

// routeStrategies dispatches /api/strategies/{name}[/evaluate|/performance].
func (s *Server) routeStrategies(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/strategies/"), "/")
	parts := strings.SplitN(rest, "/", 2)
	name := parts[0]
	if name == "" {
		WriteError(w, http.StatusBadRequest, "Strategy name is required")
		return
	}

	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}

	switch sub {
	case "":
		s.handleStrategyByName(w, r, name)
	case "evaluate":
		s.handleStrategyEvaluate(w, r, name)
	case "performance":
		s.handleStrategyPerformance(w, r, name)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleStrategyByName(w http.ResponseWriter, r *http.Request, name string) {
	switch r.Method {
	case http.MethodGet:
		strat, err := s.app.StrategyService.GetStrategy(r.Context(), name)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, strat)
	case http.MethodDelete:
		if err := s.app.StrategyService.DeleteStrategy(r.Context(), name); err != nil {
			WriteDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": name})
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (s *Server) handleStrategyEvaluate(w http.ResponseWriter, r *http.Request, name string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	score, weights, err := s.app.EvaluateStrategy(r.Context(), name)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"strategy":            name,
		"score":               score,
		"recommended_weights": weights,
	})
}

type performanceRequest struct {
	Observed float64 `json:"observed"`
}

func (s *Server) handleStrategyPerformance(w http.ResponseWriter, r *http.Request, name string) {
	switch r.Method {
	case http.MethodGet:
		history, err := s.app.StrategyService.PerformanceHistory(r.Context(), name)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"strategy": name,
			"history":  history,
			"count":    len(history),
		})
	case http.MethodPost:
		var req performanceRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		strat, err := s.app.StrategyService.UpdatePerformance(r.Context(), name, req.Observed)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, strat)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}
