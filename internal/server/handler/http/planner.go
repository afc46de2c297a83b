package http

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/planner/internal/middleware"
	"github.com/atinyakov/planner/internal/utils"
)

// PlannerService reads and replaces planner records.
type PlannerService interface {
	Get(ctx context.Context, email string) (json.RawMessage, error)
	Set(ctx context.Context, email string, record json.RawMessage) error
}

// PlannerHandler serves the authenticated user's planner record. Both
// endpoints expect SessionAuth in front of them.
type PlannerHandler struct {
	PlannerService PlannerService
	Log            *zap.Logger
}

// Data returns the caller's record as stored.
func (h *PlannerHandler) Data(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmailFromContext(r.Context())

	record, err := h.PlannerService.Get(r.Context(), email)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, record)
}

// Save replaces the caller's record with the request body.
func (h *PlannerHandler) Save(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmailFromContext(r.Context())

	record, err := utils.ReadJSON(r.Body)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}

	if err := h.PlannerService.Set(r.Context(), email, record); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}
