// Package apperror defines the error taxonomy shared by the planner
// services and the HTTP layer. Each error carries the HTTP status and a
// client-safe message; the wrapped Internal error is only ever logged.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind sentinels. Match with errors.Is(err, apperror.ErrConflict).
var (
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict error")
	ErrAuthentication = errors.New("authentication error")
	ErrAuthorization  = errors.New("authorization error")
	ErrInternal       = errors.New("internal error")
)

// Client-facing messages.
const (
	MsgInvalidRequest = "Solicitud inválida"
	MsgDuplicateEmail = "Este correo ya está registrado"
	MsgBadCredentials = "Correo o contraseña incorrectos"
	MsgUnauthorized   = "No autorizado"
	MsgInternal       = "Error interno del servidor"
)

// AppError is returned by services and middleware and rendered by the
// HTTP layer as {"error": Message} with status Code.
type AppError struct {
	Code     int
	Kind     error
	Message  string
	Internal error
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Kind, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is reports a match against the Kind sentinel.
func (e *AppError) Is(target error) bool {
	return target == e.Kind
}

func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewValidation reports a malformed or disallowed input (400).
func NewValidation(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Kind: ErrValidation, Message: message}
}

// NewConflict reports a duplicate registration. The planner API answers
// conflicts with 400 rather than 409.
func NewConflict(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Kind: ErrConflict, Message: message}
}

// NewAuthentication reports bad credentials (401).
func NewAuthentication(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Kind: ErrAuthentication, Message: message}
}

// NewAuthorization reports a protected call without an active session (401).
func NewAuthorization(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Kind: ErrAuthorization, Message: message}
}

// NewInternal hides err behind a generic message (500).
func NewInternal(err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Kind: ErrInternal, Message: MsgInternal, Internal: err}
}

// SafeMessage returns the client-safe message of err.
func SafeMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return MsgInternal
}

// SafeCode returns the HTTP status for err, 500 for foreign errors.
func SafeCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
