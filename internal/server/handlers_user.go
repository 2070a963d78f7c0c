package server

import (
	"net/http"
	"strings"
	"time"
)

type profileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type profileUpdateRequest struct {
	Name string `json:"name"`
}

// handleUserProfile reads or updates the signed-in account.
// GET /api/user/profile, PUT /api/user/profile
//
// Email is the login identity and is not updatable here. Exchange
// credentials live under /api/exchange/keys.
func (s *Server) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	store := s.app.Storage.InternalStore()
	user, err := store.GetUser(r.Context(), userID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "account not found")
		return
	}

	if r.Method == http.MethodPut {
		var req profileUpdateRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		user.Name = strings.TrimSpace(req.Name)
		if err := store.SaveUser(r.Context(), user); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to update profile")
			return
		}
		s.logger.Info().Str("user_id", user.ID).Msg("Profile updated")
	}

	WriteJSON(w, http.StatusOK, profileResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	})
}
