package server

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/coinfolio/internal/models"
)

type createAlertRequest struct {
	Symbol      string          `json:"symbol"`
	TargetPrice decimal.Decimal `json:"target_price"`
	Condition   string          `json:"condition"`
}

// handleAlerts serves the alert collection.
// GET /api/alerts lists, POST /api/alerts creates.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		alerts, err := s.app.AlertService.List(r.Context(), userID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to load alerts")
			return
		}
		WriteJSON(w, http.StatusOK, alerts)

	case http.MethodPost:
		var req createAlertRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		alert, err := s.app.AlertService.Create(r.Context(), userID, req.Symbol, req.TargetPrice, models.AlertCondition(req.Condition))
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, alert)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleAlertByID removes one alert.
// DELETE /api/alerts/{id}
func (s *Server) handleAlertByID(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id := PathParam(r, "/api/alerts/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "alert id is required")
		return
	}

	if err := s.app.AlertService.Delete(r.Context(), userID, id); err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleNotifications lists the user's notifications, newest first.
// GET /api/notifications
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	notifications, err := s.app.NotificationService.List(r.Context(), userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to load notifications")
		return
	}
	WriteJSON(w, http.StatusOK, notifications)
}

// handleNotificationsRead marks all notifications read.
// POST /api/notifications/read
func (s *Server) handleNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := s.app.NotificationService.MarkAllRead(r.Context(), userID); err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
