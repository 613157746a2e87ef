package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/bioskin/inventory/internal/auth"
	"github.com/bioskin/inventory/internal/model"
	"github.com/bioskin/inventory/internal/store"
)

// UsersHandler handles user management endpoints (admin only).
type UsersHandler struct {
	DB *sql.DB
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// adminOnly wraps h so that non-admin sessions get a permission-denied result.
func adminOnly(h sessionHandler) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, s *auth.Session) {
		if !s.IsAdmin() {
			jsonError(w, http.StatusForbidden, "Permission denied: Only admins can manage users.")
			return
		}
		h(w, r, s)
	}
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request, _ *auth.Session) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		internalError(w, err, "Failed to list users.")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request, s *auth.Session) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Role == "" {
		req.Role = model.RoleUser
	}
	if req.Username == "" {
		jsonError(w, http.StatusBadRequest, "Username is required.")
		return
	}
	if !model.ValidRole(req.Role) {
		jsonError(w, http.StatusBadRequest, "Invalid role.")
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		internalError(w, err, "Failed to hash password.")
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Username, hash, req.Role)
	if errors.Is(err, store.ErrUserExists) {
		jsonError(w, http.StatusConflict, "Username already exists.")
		return
	}
	if err != nil {
		internalError(w, err, "Failed to create user.")
		return
	}

	log.Info().Str("user", s.Username).Str("new_user", user.Username).Str("role", user.Role).Msg("user created")
	jsonResponse(w, http.StatusCreated, user)
}
