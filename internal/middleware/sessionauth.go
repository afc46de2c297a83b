// Package middleware provides HTTP middlewares for session authorization
// and request logging.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/planner/internal/apperror"
	"github.com/atinyakov/planner/internal/models"
	"github.com/atinyakov/planner/internal/session"
	"github.com/atinyakov/planner/internal/utils"
)

type ctxKey string

const sessionKey ctxKey = "session"

// SessionResolver resolves the caller's session from a request.
type SessionResolver interface {
	Current(r *http.Request) (*models.Session, error)
}

// SessionAuth lets a request through only if it carries a live session.
// The session is stored in the request context for downstream handlers.
// Anonymous callers get 401 {"error": "No autorizado"}.
func SessionAuth(sessions SessionResolver, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := sessions.Current(r)
			if errors.Is(err, session.ErrNoSession) {
				utils.WriteError(w, log, apperror.NewAuthorization(apperror.MsgUnauthorized))
				return
			}
			if err != nil {
				utils.WriteError(w, log, apperror.NewInternal(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the session stored by SessionAuth, or nil.
func SessionFromContext(ctx context.Context) *models.Session {
	s, _ := ctx.Value(sessionKey).(*models.Session)
	return s
}

// GetUserEmailFromContext returns the authenticated email, or "" when the
// request went through no SessionAuth.
func GetUserEmailFromContext(ctx context.Context) string {
	if s := SessionFromContext(ctx); s != nil {
		return s.Email
	}
	return ""
}
