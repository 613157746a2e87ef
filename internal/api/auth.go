package api

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/bioskin/inventory/internal/auth"
	"github.com/bioskin/inventory/internal/model"
	"github.com/bioskin/inventory/internal/store"
)

// AuthHandler handles login, logout and session lookup.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool          `json:"success"`
	User    *auth.Session `json:"user"`
	Token   string        `json:"token"`
}

const invalidLogin = "Invalid username or password."

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "Username and password are required.")
		return
	}

	user, err := store.GetUserByUsername(r.Context(), h.DB, req.Username)
	if err != nil {
		log.Error().Err(err).Msg("looking up user")
		jsonError(w, http.StatusInternalServerError, "An error occurred during login.")
		return
	}
	if user == nil {
		log.Warn().Str("username", req.Username).Msg("login failed: unknown user")
		jsonError(w, http.StatusUnauthorized, invalidLogin)
		return
	}
	if user.PasswordHash == "" {
		log.Warn().Str("username", req.Username).Msg("login failed: user has no password")
		jsonError(w, http.StatusUnauthorized, "Login configuration error for user.")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		log.Warn().Str("username", req.Username).Str("remote", r.RemoteAddr).Msg("login failed: password mismatch")
		jsonError(w, http.StatusUnauthorized, invalidLogin)
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user)
	if err != nil {
		log.Error().Err(err).Msg("generating token")
		jsonError(w, http.StatusInternalServerError, "An error occurred during login.")
		return
	}

	claims, err := auth.ValidateToken(h.JWTSecret, token)
	if err != nil {
		log.Error().Err(err).Msg("reading generated token")
		jsonError(w, http.StatusInternalServerError, "An error occurred during login.")
		return
	}

	log.Info().Str("user", user.Username).Str("role", user.Role).Msg("user logged in")
	jsonResponse(w, http.StatusOK, loginResponse{
		Success: true,
		User:    auth.NewSession(claims),
		Token:   token,
	})
}

// Logout handles POST /api/auth/logout. It revokes the caller's token and
// succeeds whether or not anyone was logged in.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request, s *auth.Session) {
	if s == nil {
		log.Info().Msg("logout called without a session")
		jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	if err := store.RevokeToken(r.Context(), h.DB, s.TokenID, s.ExpiresAt); err != nil {
		log.Error().Err(err).Str("user", s.Username).Msg("revoking token")
		jsonError(w, http.StatusInternalServerError, "Failed to log out.")
		return
	}

	log.Info().Str("user", s.Username).Msg("user logged out")
	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// Session handles GET /api/auth/session: the logged-in user, or null.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request, s *auth.Session) {
	jsonResponse(w, http.StatusOK, s)
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request, s *auth.Session) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, s.UserID)
	if err != nil || user == nil {
		log.Error().Err(err).Int64("user_id", s.UserID).Msg("loading session user")
		jsonError(w, http.StatusInternalServerError, "Failed to update password.")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		jsonError(w, http.StatusUnauthorized, "Current password is incorrect.")
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		log.Error().Err(err).Msg("hashing password")
		jsonError(w, http.StatusInternalServerError, "Failed to update password.")
		return
	}
	if err := store.UpdateUserPassword(r.Context(), h.DB, s.UserID, hash); err != nil {
		log.Error().Err(err).Msg("updating password")
		jsonError(w, http.StatusInternalServerError, "Failed to update password.")
		return
	}

	log.Info().Str("user", s.Username).Msg("user changed own password")
	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}
