package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/atinyakov/planner/internal/models"
	"github.com/atinyakov/planner/internal/session"
)

// dummyHandler records if it was called and the context it received.
type dummyHandler struct {
	called bool
	ctx    context.Context
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

type fakeResolver struct {
	session *models.Session
	err     error
}

func (f fakeResolver) Current(*http.Request) (*models.Session, error) {
	return f.session, f.err
}

func TestSessionAuth_NoSession(t *testing.T) {
	dummy := &dummyHandler{}
	h := SessionAuth(fakeResolver{err: session.ErrNoSession}, zap.NewNop())(dummy)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data", nil))

	assert.False(t, dummy.called, "next handler must not run without a session")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"No autorizado"}`, rec.Body.String())
}

func TestSessionAuth_ResolverError(t *testing.T) {
	dummy := &dummyHandler{}
	h := SessionAuth(fakeResolver{err: errors.New("redis down")}, zap.NewNop())(dummy)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data", nil))

	assert.False(t, dummy.called)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "redis")
}

func TestSessionAuth_ValidSession(t *testing.T) {
	dummy := &dummyHandler{}
	s := &models.Session{Email: "alice@clases.edu.sv", Name: "Alice"}
	h := SessionAuth(fakeResolver{session: s}, zap.NewNop())(dummy)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data", nil))

	assert.True(t, dummy.called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@clases.edu.sv", GetUserEmailFromContext(dummy.ctx))
	assert.Same(t, s, SessionFromContext(dummy.ctx))
}

func TestGetUserEmailFromContext(t *testing.T) {
	assert.Empty(t, GetUserEmailFromContext(context.Background()))
	assert.Nil(t, SessionFromContext(context.Background()))

	ctx := WithSession(context.Background(), &models.Session{Email: "bob@clases.edu.sv"})
	assert.Equal(t, "bob@clases.edu.sv", GetUserEmailFromContext(ctx))
}
