package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/planner/internal/apperror"
	"github.com/atinyakov/planner/internal/models"
)

// PlannerService reads and replaces the calling user's planner record.
type PlannerService struct {
	repo PlannerRepository
	log  *zap.Logger
}

// NewPlannerService constructs a PlannerService over repo.
func NewPlannerService(repo PlannerRepository, log *zap.Logger) *PlannerService {
	return &PlannerService{repo: repo, log: log}
}

// Get returns the record stored for email. A user without a record gets
// the default empty record, which is not written back.
func (s *PlannerService) Get(ctx context.Context, email string) (json.RawMessage, error) {
	if email == "" {
		return nil, apperror.NewAuthorization(apperror.MsgUnauthorized)
	}

	raw, ok, err := s.repo.GetRecord(ctx, email)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("loading planner record: %w", err))
	}
	if !ok {
		return models.DefaultPlannerRecord(), nil
	}
	return raw, nil
}

// Set replaces the whole record for email with record. No fields are
// merged; record only has to be a JSON object.
func (s *PlannerService) Set(ctx context.Context, email string, record json.RawMessage) error {
	if email == "" {
		return apperror.NewAuthorization(apperror.MsgUnauthorized)
	}
	if !isJSONObject(record) {
		return apperror.NewValidation(apperror.MsgInvalidRequest)
	}

	if err := s.repo.PutRecord(ctx, email, record); err != nil {
		return apperror.NewInternal(fmt.Errorf("saving planner record: %w", err))
	}

	s.log.Info("planner saved", zap.String("email", email), zap.Int("bytes", len(record)))
	return nil
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}
