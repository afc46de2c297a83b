// Package service provides the credential and planner business logic,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/planner/internal/apperror"
	"github.com/atinyakov/planner/internal/models"
	"github.com/atinyakov/planner/internal/repository"
)

// DefaultEmailDomain is the only email suffix accepted at registration.
const DefaultEmailDomain = "@clases.edu.sv"

// UserRepository defines the persistence operations on credential records.
type UserRepository interface {
	// GetUser returns repository.ErrNotFound for an unknown email.
	GetUser(ctx context.Context, email string) (*models.User, error)
	// Exists reports whether email is taken, whatever is stored under it.
	Exists(ctx context.Context, email string) (bool, error)
	// CreateUser returns repository.ErrAlreadyExists for a taken email.
	CreateUser(ctx context.Context, email string, user models.User) error
}

// PlannerRepository defines the persistence operations on planner records.
type PlannerRepository interface {
	GetRecord(ctx context.Context, email string) (json.RawMessage, bool, error)
	PutRecord(ctx context.Context, email string, record json.RawMessage) error
	EnsureRecord(ctx context.Context, email string, record json.RawMessage) (bool, error)
}

// AuthService registers users and verifies their credentials.
type AuthService struct {
	users   UserRepository
	planner PlannerRepository
	hasher  PasswordHasher
	domain  string
	log     *zap.Logger
	now     func() time.Time
}

// NewAuthService constructs an AuthService. An empty domain selects
// DefaultEmailDomain.
func NewAuthService(users UserRepository, planner PlannerRepository, hasher PasswordHasher, domain string, log *zap.Logger) *AuthService {
	if domain == "" {
		domain = DefaultEmailDomain
	}
	return &AuthService{
		users:   users,
		planner: planner,
		hasher:  hasher,
		domain:  strings.ToLower(domain),
		log:     log,
		now:     time.Now,
	}
}

// NormalizeEmail trims surrounding whitespace and lowercases email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register stores a new user and gives them an empty planner record if
// they have none yet.
func (s *AuthService) Register(ctx context.Context, email, password, name string) error {
	email = NormalizeEmail(email)
	if !strings.HasSuffix(email, s.domain) {
		return apperror.NewValidation("Solo se permiten correos " + s.domain)
	}

	// CreateUser re-checks under its lock
	taken, err := s.users.Exists(ctx, email)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("looking up user: %w", err))
	}
	if taken {
		return apperror.NewConflict(apperror.MsgDuplicateEmail)
	}

	digest, err := s.hasher.Hash(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return apperror.NewValidation(apperror.MsgInvalidRequest)
	}
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	user := models.User{
		Name:     name,
		Password: digest,
		Joined:   s.now().Format(models.JoinedLayout),
	}
	if err := s.users.CreateUser(ctx, email, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return apperror.NewConflict(apperror.MsgDuplicateEmail)
		}
		return apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	created, err := s.planner.EnsureRecord(ctx, email, models.DefaultPlannerRecord())
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("creating planner record: %w", err))
	}

	s.log.Info("user registered", zap.String("email", email), zap.Bool("planner_created", created))
	return nil
}

// Authenticate checks email and password and returns the user's identity.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	email = NormalizeEmail(email)

	user, err := s.users.GetUser(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NewAuthentication(apperror.MsgBadCredentials)
	}
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("looking up user: %w", err))
	}

	if !s.hasher.Verify(password, user.Password) {
		s.log.Info("login rejected", zap.String("email", email))
		return nil, apperror.NewAuthentication(apperror.MsgBadCredentials)
	}

	return &models.Identity{Email: email, Name: user.Name}, nil
}
