// Package http exposes the expense API over JSON.
//
// This file implements a small builder for JSON responses and the single
// place where domain errors become HTTP statuses.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

// Error kinds returned in the "error" field of failure bodies.
const (
	ErrKindValidation  = "validation_error"
	ErrKindInvalidID   = "invalid_id"
	ErrKindNotFound    = "not_found"
	ErrKindNoFields    = "no_fields"
	ErrKindRateLimited = "rate_limited"
	ErrKindInternal    = "internal_error"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MessageBody is returned by operations that have no record to show.
type MessageBody struct {
	Message string `json:"message"`
}

// JSONResponseBuilder provides a fluent API for writing JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a builder with a default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(key, value string) *JSONResponseBuilder {
	b.headers[key] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write encodes the response. Encoding happens before headers are sent so
// an unencodable body still yields a clean 500.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	payload, err := json.Marshal(b.body)
	if err != nil {
		payload, _ = json.Marshal(ErrorBody{Error: ErrKindInternal, Message: "failed to encode response"})
		b.statusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(payload, '\n'))
}

// ErrorResponse creates a builder for an error body.
func ErrorResponse(status int, kind, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(status).Body(ErrorBody{Error: kind, Message: message})
}

func writeJSON(w http.ResponseWriter, v any) {
	NewJSONResponse().Body(v).Write(w)
}

// writeError maps err onto the HTTP error taxonomy. Unclassified errors are
// logged and reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		ErrorResponse(http.StatusBadRequest, ErrKindValidation, verr.Error()).Write(w)
	case errors.Is(err, core.ErrValidation):
		ErrorResponse(http.StatusBadRequest, ErrKindValidation, err.Error()).Write(w)
	case errors.Is(err, core.ErrInvalidID):
		ErrorResponse(http.StatusBadRequest, ErrKindInvalidID, "Invalid expense ID").Write(w)
	case errors.Is(err, core.ErrNotFound):
		ErrorResponse(http.StatusNotFound, ErrKindNotFound, "Expense not found").Write(w)
	case errors.Is(err, core.ErrNoFieldsProvided):
		ErrorResponse(http.StatusBadRequest, ErrKindNoFields, "No fields provided for update").Write(w)
	default:
		fields := log.NewFields().WithError(err)
		fields[log.FieldMethod] = r.Method
		fields[log.FieldPath] = r.URL.Path
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", fields.ToSlice()...)
		ErrorResponse(http.StatusInternalServerError, ErrKindInternal, "Internal server error").Write(w)
	}
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, ErrKindRateLimited, "Rate limit exceeded. Please try again later.").Write(w)
}
