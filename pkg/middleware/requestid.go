// Package middleware provides the HTTP middleware chain: request ids,
// Prometheus instrumentation, request timeouts, and rate limiting.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/RaphScript0/mini-engine/pkg/logger"
)

// requestIDHeader is echoed back to the client and accepted from trusted
// callers that propagate their own ids.
const requestIDHeader = "X-Request-Id"

// RequestID assigns every request an id, stores it in the context for
// logging and problem responses, and echoes it in the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := logger.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
