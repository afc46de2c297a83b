// Package utils holds the JSON request/response helpers shared by the
// middleware and the HTTP handlers.
package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/atinyakov/planner/internal/apperror"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// WriteError renders err as {"error": message}. Internal errors are logged
// with their cause; the client only sees the safe message.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	code := apperror.SafeCode(err)
	if code >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Error(err))
	}
	WriteJSON(w, code, map[string]string{"error": apperror.SafeMessage(err)})
}

// DecodeValidate decodes a JSON body into dst and checks its validate tags.
func DecodeValidate(body io.Reader, dst any) error {
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return apperror.NewValidation(apperror.MsgInvalidRequest)
	}
	if err := validate.Struct(dst); err != nil {
		return apperror.NewValidation(apperror.MsgInvalidRequest)
	}
	return nil
}

// ReadJSON reads a body that must be a single well-formed JSON value and
// returns it unchanged.
func ReadJSON(body io.Reader) (json.RawMessage, error) {
	dec := json.NewDecoder(body)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, apperror.NewValidation(apperror.MsgInvalidRequest)
	}
	// anything after the first value, even another valid one, is rejected
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, apperror.NewValidation(apperror.MsgInvalidRequest)
	}
	return raw, nil
}
