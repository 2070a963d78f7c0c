package server

import (
	"net/http"
)

type addKeyRequest struct {
	Exchange  string `json:"exchange"`
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	Label     string `json:"label"`
}

// handleExchangeKeys serves the exchange credential collection.
// GET /api/exchange/keys lists, POST /api/exchange/keys adds.
func (s *Server) handleExchangeKeys(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		keys, err := s.app.ExchangeService.ListKeys(r.Context(), userID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to load exchange keys")
			return
		}
		WriteJSON(w, http.StatusOK, keys)

	case http.MethodPost:
		var req addKeyRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		key, err := s.app.ExchangeService.AddKey(r.Context(), userID, req.Exchange, req.APIKey, req.APISecret, req.Label)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.app.PortfolioService.InvalidateSummary(userID)
		WriteJSON(w, http.StatusCreated, key)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleExchangeKeyByID removes one credential.
// DELETE /api/exchange/keys/{id}
func (s *Server) handleExchangeKeyByID(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id := PathParam(r, "/api/exchange/keys/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "key id is required")
		return
	}

	if err := s.app.ExchangeService.DeleteKey(r.Context(), userID, id); err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	s.app.PortfolioService.InvalidateSummary(userID)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleExchangeBalances returns merged live balances with per-source errors.
// GET /api/exchange/balances
func (s *Server) handleExchangeBalances(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	balances, srcErrs := s.app.ExchangeService.GetBalances(r.Context(), userID)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"balances": balances,
		"errors":   srcErrs,
	})
}
