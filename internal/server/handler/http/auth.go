// Package http provides the HTTP handlers of the planner API.
package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/planner/internal/apperror"
	"github.com/atinyakov/planner/internal/models"
	"github.com/atinyakov/planner/internal/utils"
)

// AuthService defines the credential operations required by the handlers.
type AuthService interface {
	// Register creates a new account for email.
	Register(ctx context.Context, email, password, name string) error
	// Authenticate verifies the credentials and returns the identity.
	Authenticate(ctx context.Context, email, password string) (*models.Identity, error)
}

// SessionManager starts and ends caller sessions.
type SessionManager interface {
	Start(w http.ResponseWriter, r *http.Request, email, name string) error
	End(w http.ResponseWriter, r *http.Request) error
}

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	AuthService AuthService
	Sessions    SessionManager
	Log         *zap.Logger
}

// RegisterRequest represents the JSON payload for user registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"`
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type successResponse struct {
	Success bool             `json:"success"`
	User    *models.Identity `json:"user,omitempty"`
}

// Register creates the account. It does not log the caller in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}

	if err := h.AuthService.Register(r.Context(), req.Email, req.Password, req.Name); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}

// Login verifies the credentials and starts a session for the user.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}

	identity, err := h.AuthService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}

	if err := h.Sessions.Start(w, r, identity.Email, identity.Name); err != nil {
		utils.WriteError(w, h.Log, apperror.NewInternal(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, successResponse{Success: true, User: identity})
}

// Logout ends the caller's session, if any.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.End(w, r); err != nil {
		utils.WriteError(w, h.Log, apperror.NewInternal(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}
