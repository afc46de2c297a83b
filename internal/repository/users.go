package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/atinyakov/planner/internal/models"
)

// UserRepository stores credential records in the users document.
type UserRepository struct {
	store DocumentStore
	// mu serializes load-modify-save cycles within this process.
	mu sync.Mutex
}

// NewUserRepository creates a UserRepository over store.
func NewUserRepository(store DocumentStore) *UserRepository {
	return &UserRepository{store: store}
}

// GetUser returns the user registered under email, or ErrNotFound.
func (r *UserRepository) GetUser(ctx context.Context, email string) (*models.User, error) {
	doc, err := r.store.Load(ctx, DocUsers)
	if err != nil {
		return nil, err
	}
	raw, ok := doc[email]
	if !ok {
		return nil, ErrNotFound
	}

	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", email, err)
	}
	return &u, nil
}

// Exists reports whether email is a key of the users document. The stored
// value is not decoded.
func (r *UserRepository) Exists(ctx context.Context, email string) (bool, error) {
	doc, err := r.store.Load(ctx, DocUsers)
	if err != nil {
		return false, err
	}
	_, ok := doc[email]
	return ok, nil
}

// CreateUser adds user under email. It returns ErrAlreadyExists if the
// email is taken.
func (r *UserRepository) CreateUser(ctx context.Context, email string, user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.store.Load(ctx, DocUsers)
	if err != nil {
		return err
	}
	if _, ok := doc[email]; ok {
		return ErrAlreadyExists
	}

	raw, err := encodeRaw(user)
	if err != nil {
		return fmt.Errorf("encode user %s: %w", email, err)
	}
	doc[email] = raw
	return r.store.Save(ctx, DocUsers, doc)
}
