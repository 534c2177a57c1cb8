// Package problem renders RFC 7807 application/problem+json error responses
// carrying the service's error code enum and the request id.
package problem

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/RaphScript0/mini-engine/pkg/logger"
)

// Code is the machine-readable error code included alongside the standard
// problem-details fields.
type Code string

const (
	CodeInvalidArgument      Code = "INVALID_ARGUMENT"
	CodeUnsupportedMediaType Code = "UNSUPPORTED_MEDIA_TYPE"
	CodeUnprocessableEntity  Code = "UNPROCESSABLE_ENTITY"
	CodeRateLimited          Code = "RATE_LIMITED"
	CodeNotFound             Code = "NOT_FOUND"
	CodeInternal             Code = "INTERNAL"
)

// Status maps the code to its HTTP status.
func (c Code) Status() int {
	switch c {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case CodeUnprocessableEntity:
		return http.StatusUnprocessableEntity
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Details is the RFC 7807 body plus the code and request id extensions.
type Details struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Code      Code   `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

// Write emits a problem+json response for the given code and detail. The
// request id, when present in the request context, is echoed back.
func Write(w http.ResponseWriter, r *http.Request, code Code, detail string) {
	status := code.Status()
	d := Details{
		Type:      "about:blank",
		Title:     http.StatusText(status),
		Status:    status,
		Detail:    detail,
		Code:      code,
		RequestID: logger.RequestID(r.Context()),
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(d); err != nil {
		slog.Error("failed to write problem response", "error", err)
	}
}
