package auth

import (
	"time"

	"github.com/bioskin/inventory/internal/model"
)

// Session is the logged-in user of one bridge request. Handlers receive it
// explicitly; there is no process-wide current user.
type Session struct {
	UserID    int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// NewSession builds a session from validated claims.
func NewSession(c *Claims) *Session {
	s := &Session{
		UserID:   c.UserID,
		Username: c.Username,
		Role:     c.Role,
		TokenID:  c.ID,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}

// IsAdmin reports whether the session may perform administrative actions.
func (s *Session) IsAdmin() bool {
	return s != nil && model.RoleAtLeast(s.Role, model.RoleAdmin)
}
