package server

import (
	"net/http"
	"strconv"
	"time"
)

// handlePortfolioSummary returns the per-asset summary.
// GET /api/portfolio/summary
func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	rows, err := s.app.PortfolioService.GetSummary(r.Context(), userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Summary failed")
		WriteError(w, http.StatusBadGateway, "failed to compute portfolio summary")
		return
	}
	WriteJSON(w, http.StatusOK, rows)
}

// handlePortfolioPerformance returns the 24h change view.
// GET /api/portfolio/performance
func (s *Server) handlePortfolioPerformance(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	perf, err := s.app.PortfolioService.GetPerformance(r.Context(), userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Performance failed")
		WriteError(w, http.StatusBadGateway, "failed to compute performance")
		return
	}
	WriteJSON(w, http.StatusOK, perf)
}

// handlePortfolioHistory returns stored value snapshots, oldest first.
// GET /api/portfolio/history
func (s *Server) handlePortfolioHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	history, err := s.app.PortfolioService.GetHistory(r.Context(), userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	WriteJSON(w, http.StatusOK, history)
}

// handlePortfolioTransactions returns the merged transaction list.
// GET /api/portfolio/transactions
func (s *Server) handlePortfolioTransactions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	views, err := s.app.PortfolioService.GetTransactions(r.Context(), userID)
	if err != nil {
		WriteError(w, http.StatusBadGateway, "failed to load transactions")
		return
	}
	WriteJSON(w, http.StatusOK, views)
}

// handleTaxReport returns the year-scoped realized-gain report.
// GET /api/tax/report?year=2024
func (s *Server) handleTaxReport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	year := time.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 2009 || parsed > time.Now().Year()+1 {
			WriteError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = parsed
	}

	report, err := s.app.TaxService.Report(r.Context(), userID, year)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Int("year", year).Msg("Tax report failed")
		WriteError(w, http.StatusBadGateway, "failed to compute tax report")
		return
	}
	WriteJSON(w, http.StatusOK, report)
}
