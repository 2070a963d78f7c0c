package server

import (
	"net/http"
)

// handleMarketCoins returns the market overview list.
// GET /api/market/coins
func (s *Server) handleMarketCoins(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	coins, err := s.app.MarketService.TopCoins(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Top coins failed")
		WriteError(w, http.StatusBadGateway, "failed to load market data")
		return
	}
	WriteJSON(w, http.StatusOK, coins)
}

// handleMarketChart returns a price series for a coin.
// GET /api/market/chart/{coinID}?days=7
func (s *Server) handleMarketChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	coinID := PathParam(r, "/api/market/chart/", "")
	if coinID == "" {
		WriteError(w, http.StatusBadRequest, "coin id is required")
		return
	}

	points, err := s.app.MarketService.MarketChart(r.Context(), coinID, r.URL.Query().Get("days"))
	if err != nil {
		WriteError(w, http.StatusBadGateway, "failed to load market chart")
		return
	}
	WriteJSON(w, http.StatusOK, points)
}

// handleMarketOHLC returns an OHLC series for a coin.
// GET /api/market/ohlc/{coinID}?days=7
func (s *Server) handleMarketOHLC(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	coinID := PathParam(r, "/api/market/ohlc/", "")
	if coinID == "" {
		WriteError(w, http.StatusBadRequest, "coin id is required")
		return
	}

	points, err := s.app.MarketService.MarketOHLC(r.Context(), coinID, r.URL.Query().Get("days"))
	if err != nil {
		WriteError(w, http.StatusBadGateway, "failed to load market OHLC")
		return
	}
	WriteJSON(w, http.StatusOK, points)
}

// handleMarketCandles returns exchange OHLCV bars.
// GET /api/market/candles?symbol=BTC&interval=1d
func (s *Server) handleMarketCandles(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	candles, err := s.app.MarketService.Candles(r.Context(), symbol, r.URL.Query().Get("interval"))
	if err != nil {
		WriteError(w, http.StatusBadGateway, "failed to load candles")
		return
	}
	WriteJSON(w, http.StatusOK, candles)
}
