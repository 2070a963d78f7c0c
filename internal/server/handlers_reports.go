package server

import (
	"encoding/csv"
	"net/http"
	"time"
)

// handleReportCSV streams the merged transaction list as a CSV download.
// GET /api/reports/csv
func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	views, err := s.app.PortfolioService.GetTransactions(r.Context(), userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("CSV export failed")
		WriteError(w, http.StatusBadGateway, "failed to load transactions")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename=transactions.csv`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"Date", "Type", "Asset", "Amount", "Price", "Value", "Status"})
	for _, v := range views {
		cw.Write([]string{
			v.Date.Format(time.RFC3339),
			string(v.Kind),
			v.Symbol,
			v.Amount.String(),
			v.Price.String(),
			v.Value.String(),
			v.Status,
		})
	}
	cw.Flush()
}
