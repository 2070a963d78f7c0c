package server

import (
	"net/http"

	"github.com/bobmcallan/coinfolio/internal/models"
)

// handleManual serves the manual ledger collection.
// GET /api/manual/transactions lists, POST /api/manual/transactions adds.
func (s *Server) handleManual(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		txs, err := s.app.ManualService.List(r.Context(), userID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to load transactions")
			return
		}
		WriteJSON(w, http.StatusOK, txs)

	case http.MethodPost:
		var input models.ManualTransactionInput
		if !DecodeJSON(w, r, &input) {
			return
		}
		tx, err := s.app.ManualService.Add(r.Context(), userID, input)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.app.PortfolioService.InvalidateSummary(userID)
		WriteJSON(w, http.StatusCreated, tx)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleManualByID serves one ledger entry.
// PUT /api/manual/transactions/{id} updates, DELETE /api/manual/transactions/{id} removes.
func (s *Server) handleManualByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id := PathParam(r, "/api/manual/transactions/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "transaction id is required")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var input models.ManualTransactionInput
		if !DecodeJSON(w, r, &input) {
			return
		}
		tx, err := s.app.ManualService.Update(r.Context(), userID, id, input)
		if err != nil {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		s.app.PortfolioService.InvalidateSummary(userID)
		WriteJSON(w, http.StatusOK, tx)

	case http.MethodDelete:
		if err := s.app.ManualService.Delete(r.Context(), userID, id); err != nil {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		s.app.PortfolioService.InvalidateSummary(userID)
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		RequireMethod(w, r, http.MethodPut, http.MethodDelete)
	}
}
