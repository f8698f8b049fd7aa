package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

func TestJSONResponseBuilder(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "value").
		Body(MessageBody{Message: "hi"}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d", w.Code)
	}
	if w.Header().Get("X-Custom") != "value" || w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("headers = %v", w.Header())
	}
	if w.Body.String() != "{\"message\":\"hi\"}\n" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilderEncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Body(map[string]any{"bad": make(chan int)}).Write(w)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{core.NewValidationError("amount", "must be positive"), http.StatusBadRequest, ErrKindValidation},
		{fmt.Errorf("create: %w", core.NewValidationError("date", "required")), http.StatusBadRequest, ErrKindValidation},
		{fmt.Errorf("get: %w", core.ErrInvalidID), http.StatusBadRequest, ErrKindInvalidID},
		{fmt.Errorf("get: %w", core.ErrNotFound), http.StatusNotFound, ErrKindNotFound},
		{core.ErrNoFieldsProvided, http.StatusBadRequest, ErrKindNoFields},
		{fmt.Errorf("ping: %w", core.ErrStoreUnavailable), http.StatusInternalServerError, ErrKindInternal},
		{errors.New("boom"), http.StatusInternalServerError, ErrKindInternal},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		writeError(w, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
		expectError(t, w, tt.status, tt.kind)
	}
}

func TestWriteErrorLogsInternalCause(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Output: &buf, Format: "json"})
	r := httptest.NewRequest(http.MethodDelete, "/expenses/abc", nil)
	r = r.WithContext(log.NewContext(r.Context(), logger))

	writeError(httptest.NewRecorder(), r, errors.New("disk full"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log %q: %v", buf.String(), err)
	}
	if rec[log.FieldError] != "disk full" || rec[log.FieldMethod] != http.MethodDelete || rec[log.FieldPath] != "/expenses/abc" {
		t.Fatalf("log record = %v", rec)
	}
}
