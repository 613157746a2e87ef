package api

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bioskin/inventory/internal/auth"
	"github.com/bioskin/inventory/internal/store"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionMiddleware resolves the bearer token of each request into a
// session. Requests without a valid, unrevoked token pass through without
// one; handlers decide whether that is allowed.
func SessionMiddleware(secret string, db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s := sessionFromRequest(r, secret, db); s != nil {
				r = r.WithContext(context.WithValue(r.Context(), sessionKey, s))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sessionFromRequest(r *http.Request, secret string, db *sql.DB) *auth.Session {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil
	}

	claims, err := auth.ValidateToken(secret, strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("rejected session token")
		return nil
	}

	revoked, err := store.IsTokenRevoked(r.Context(), db, claims.ID)
	if err != nil {
		log.Error().Err(err).Msg("checking token revocation")
		return nil
	}
	if revoked {
		return nil
	}
	return auth.NewSession(claims)
}

// GetSession returns the session attached by SessionMiddleware, or nil.
func GetSession(ctx context.Context) *auth.Session {
	s, _ := ctx.Value(sessionKey).(*auth.Session)
	return s
}

// sessionHandler is an operation that receives the caller's session
// explicitly. s may be nil only for handlers registered with optional.
type sessionHandler func(w http.ResponseWriter, r *http.Request, s *auth.Session)

// withSession adapts h into an http.Handler that requires a logged-in user.
func withSession(h sessionHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r.Context())
		if s == nil {
			jsonError(w, http.StatusUnauthorized, "Not logged in.")
			return
		}
		h(w, r, s)
	})
}

// optional adapts h into an http.Handler that also runs without a session.
func optional(h sessionHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h(w, r, GetSession(r.Context()))
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs HTTP requests with method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		ev := log.Info()
		if rec.status >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.RequestURI()).
			Int("status", rec.status).
			Dur("duration", time.Since(start).Round(time.Millisecond)).
			Msg("request")
	})
}
