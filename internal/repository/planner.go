package repository

import (
	"context"
	"encoding/json"
	"sync"
)

// PlannerRepository stores each user's planner record in the planner
// document. Records are opaque JSON.
type PlannerRepository struct {
	store DocumentStore
	mu    sync.Mutex
}

// NewPlannerRepository creates a PlannerRepository over store.
func NewPlannerRepository(store DocumentStore) *PlannerRepository {
	return &PlannerRepository{store: store}
}

// GetRecord returns the stored record for email and whether it exists.
func (r *PlannerRepository) GetRecord(ctx context.Context, email string) (json.RawMessage, bool, error) {
	doc, err := r.store.Load(ctx, DocPlanner)
	if err != nil {
		return nil, false, err
	}
	raw, ok := doc[email]
	return raw, ok, nil
}

// PutRecord replaces the whole record for email.
func (r *PlannerRepository) PutRecord(ctx context.Context, email string, record json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.store.Load(ctx, DocPlanner)
	if err != nil {
		return err
	}
	doc[email] = record
	return r.store.Save(ctx, DocPlanner, doc)
}

// EnsureRecord stores record for email unless one already exists. It
// reports whether a record was written.
func (r *PlannerRepository) EnsureRecord(ctx context.Context, email string, record json.RawMessage) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.store.Load(ctx, DocPlanner)
	if err != nil {
		return false, err
	}
	if _, ok := doc[email]; ok {
		return false, nil
	}
	doc[email] = record
	if err := r.store.Save(ctx, DocPlanner, doc); err != nil {
		return false, err
	}
	return true, nil
}
