package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bobmcallan/coinfolio/internal/models"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// signToken issues an HS256 JWT for the user.
func (s *Server) signToken(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.app.Config.Auth.GetTokenExpiry())
	claims := jwt.MapClaims{
		"jti":   uuid.NewString(),
		"sub":   user.ID,
		"email": user.Email,
		"iss":   "coinfolio-server",
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.app.Config.Auth.JWTSecret))
	return signed, expiresAt, err
}

// handleRegister creates a new account and returns a token.
// POST /api/auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		WriteError(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if len(req.Password) < 8 {
		WriteError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	store := s.app.Storage.InternalStore()
	if _, err := store.GetUserByEmail(r.Context(), req.Email); err == nil {
		WriteError(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := store.SaveUser(r.Context(), user); err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	token, expiresAt, err := s.signToken(user)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Account registered")
	WriteJSON(w, http.StatusCreated, authResponse{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: expiresAt,
	})
}

// handleLogin verifies credentials and returns a token.
// POST /api/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.app.Storage.InternalStore().GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, expiresAt, err := s.signToken(user)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	WriteJSON(w, http.StatusOK, authResponse{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: expiresAt,
	})
}
