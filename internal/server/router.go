package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/RaphScript0/mini-engine/pkg/config"
	"github.com/RaphScript0/mini-engine/pkg/health"
	"github.com/RaphScript0/mini-engine/pkg/logger"
	"github.com/RaphScript0/mini-engine/pkg/metrics"
	"github.com/RaphScript0/mini-engine/pkg/middleware"
	"github.com/RaphScript0/mini-engine/pkg/problem"
)

// NewRouter wires the endpoints and middleware chain. The metrics endpoint
// is only mounted when enabled; m may still be nil when scraping is off.
func NewRouter(h *Handler, checker *health.Checker, cfg *config.Config, m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /documents", h.Ingest)
	mux.HandleFunc("POST /search", h.Search)
	mux.HandleFunc("GET /health", checker.Handler())
	if cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, problem.CodeNotFound, "no such endpoint")
	})

	var handler http.Handler = mux
	handler = recoverer(handler)
	handler = middleware.Timeout(cfg.Server.RequestTimeout)(handler)
	if m != nil {
		handler = middleware.Metrics(m)(handler)
	}
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, time.Minute)
		handler = middleware.RateLimit(limiter)(handler)
	}
	handler = middleware.RequestID(handler)
	return handler
}

// recoverer converts handler panics into an INTERNAL problem response so a
// bad query can never take the process down.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("handler panic",
					"path", r.URL.Path,
					"panic", rec,
					"request_id", logger.RequestID(r.Context()),
				)
				problem.Write(w, r, problem.CodeInternal, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
