// Package session keeps per-caller authentication state on the server.
// The caller holds only a signed cookie naming its session id.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/planner/internal/models"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// DefaultTTL applies when Options.TTL is not positive.
const DefaultTTL = 24 * time.Hour

// ErrNoSession means the request carries no valid, live session.
var ErrNoSession = errors.New("no active session")

// Options configure a Manager.
type Options struct {
	// Secret signs session cookies. Required.
	Secret string
	// TTL bounds both the cookie and the server-side state.
	TTL time.Duration
	// Secure marks the cookie HTTPS-only.
	Secure bool
}

// Manager starts, resolves and ends sessions.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	secure bool
	log    *zap.Logger
	now    func() time.Time
}

// NewManager creates a Manager over store.
func NewManager(store Store, opts Options, log *zap.Logger) (*Manager, error) {
	if opts.Secret == "" {
		return nil, errors.New("session secret is empty")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:  store,
		secret: []byte(opts.Secret),
		ttl:    ttl,
		secure: opts.Secure,
		log:    log,
		now:    time.Now,
	}, nil
}

// Start records email and name as the caller's identity and sets the
// session cookie. A session already attached to r is ended first.
func (m *Manager) Start(w http.ResponseWriter, r *http.Request, email, name string) error {
	ctx := r.Context()
	if id, err := m.sessionID(r); err == nil {
		m.drop(ctx, id)
	}

	id := uuid.NewString()
	now := m.now()
	s := models.Session{Email: email, Name: name, CreatedAt: now.UTC()}
	if err := m.store.Put(ctx, id, s, m.ttl); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	token, err := m.sign(id, now)
	if err != nil {
		m.drop(ctx, id)
		return fmt.Errorf("sign session: %w", err)
	}

	http.SetCookie(w, m.cookie(token, now.Add(m.ttl), int(m.ttl.Seconds())))
	return nil
}

// Current returns the caller's session or ErrNoSession.
func (m *Manager) Current(r *http.Request) (*models.Session, error) {
	id, err := m.sessionID(r)
	if err != nil {
		return nil, ErrNoSession
	}

	s, err := m.store.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

// End clears the caller's session state and expires the cookie. It is
// safe to call without a session.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, m.cookie("", time.Unix(0, 0), -1))

	id, err := m.sessionID(r)
	if err != nil {
		return nil
	}
	if err := m.store.Delete(r.Context(), id); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

func (m *Manager) drop(ctx context.Context, id string) {
	if err := m.store.Delete(ctx, id); err != nil {
		m.log.Warn("failed to drop session", zap.Error(err))
	}
}

func (m *Manager) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) sign(id string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// sessionID extracts and verifies the session id from the request cookie.
func (m *Manager) sessionID(r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", ErrNoSession
	}

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(c.Value, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || claims.ID == "" {
		return "", ErrNoSession
	}
	return claims.ID, nil
}
