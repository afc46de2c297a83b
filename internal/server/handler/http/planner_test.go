package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/atinyakov/planner/internal/apperror"
	"github.com/atinyakov/planner/internal/middleware"
	"github.com/atinyakov/planner/internal/models"
)

// fakePlannerService keeps records in a map.
type fakePlannerService struct {
	records map[string]json.RawMessage
	err     error
}

func (f *fakePlannerService) Get(_ context.Context, email string) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.records[email]; ok {
		return r, nil
	}
	return models.DefaultPlannerRecord(), nil
}

func (f *fakePlannerService) Set(_ context.Context, email string, record json.RawMessage) error {
	if f.err != nil {
		return f.err
	}
	f.records[email] = record
	return nil
}

func asUser(req *http.Request, email string) *http.Request {
	s := &models.Session{Email: email, Name: "x"}
	return req.WithContext(middleware.WithSession(req.Context(), s))
}

func TestPlannerHandler_Data(t *testing.T) {
	svc := &fakePlannerService{records: map[string]json.RawMessage{
		"alice@clases.edu.sv": json.RawMessage(`{"tasks":[{"id":1}],"events":[],"notes":[]}`),
	}}
	h := &PlannerHandler{PlannerService: svc, Log: zap.NewNop()}

	rec := httptest.NewRecorder()
	h.Data(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/data", nil), "alice@clases.edu.sv"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tasks":[{"id":1}],"events":[],"notes":[]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Data(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/data", nil), "new@clases.edu.sv"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tasks":[],"events":[],"notes":[],"stats":{"completed":0,"focus_hours":0}}`, rec.Body.String())
}

func TestPlannerHandler_DataError(t *testing.T) {
	h := &PlannerHandler{
		PlannerService: &fakePlannerService{err: apperror.NewInternal(errors.New("boom"))},
		Log:            zap.NewNop(),
	}

	rec := httptest.NewRecorder()
	h.Data(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/data", nil), "a@clases.edu.sv"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Error interno del servidor"}`, rec.Body.String())
}

func TestPlannerHandler_Save(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{
			name:         "stores record",
			body:         `{"tasks":[{"title":"t1"}],"events":[],"notes":[],"stats":{"completed":1,"focus_hours":2}}`,
			expectedCode: http.StatusOK,
			expectedBody: `{"success":true}`,
		},
		{
			name:         "malformed body",
			body:         `{"tasks":`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Solicitud inválida"}`,
		},
		{
			name:         "service rejects",
			body:         `[1,2]`,
			err:          apperror.NewValidation(apperror.MsgInvalidRequest),
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Solicitud inválida"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePlannerService{records: map[string]json.RawMessage{}, err: tt.err}
			h := &PlannerHandler{PlannerService: svc, Log: zap.NewNop()}

			req := httptest.NewRequest(http.MethodPost, "/api/save", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.Save(rec, asUser(req, "a@clases.edu.sv"))

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			if tt.expectedCode == http.StatusOK {
				assert.JSONEq(t, tt.body, string(svc.records["a@clases.edu.sv"]))
			}
		})
	}
}

func TestIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<title>Planner</title>")
}
