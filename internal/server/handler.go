// Package server implements the HTTP surface over the search service:
// bulk ingest, search with cursor pagination, health, and metrics.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/RaphScript0/mini-engine/internal/analytics"
	"github.com/RaphScript0/mini-engine/internal/cache"
	"github.com/RaphScript0/mini-engine/internal/engine"
	"github.com/RaphScript0/mini-engine/internal/service"
	"github.com/RaphScript0/mini-engine/pkg/config"
	"github.com/RaphScript0/mini-engine/pkg/logger"
	"github.com/RaphScript0/mini-engine/pkg/metrics"
	"github.com/RaphScript0/mini-engine/pkg/problem"
)

// Handler serves the document and search endpoints. Cache, collector, and
// metrics are optional.
type Handler struct {
	svc       *service.Service
	cache     *cache.SearchCache
	collector *analytics.Collector
	metrics   *metrics.Metrics
	cfg       config.SearchConfig
	logger    *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(svc *service.Service, searchCache *cache.SearchCache, collector *analytics.Collector, m *metrics.Metrics, cfg config.SearchConfig) *Handler {
	return &Handler{
		svc:       svc,
		cache:     searchCache,
		collector: collector,
		metrics:   m,
		cfg:       cfg,
		logger:    slog.Default().With("component", "http-handler"),
	}
}

// Ingest handles POST /documents. Per-document validation failures are
// reported individually with a 207; batch-level violations reject the whole
// request before the engine is touched.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req ingestRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if verr := validateIngestBatch(&req); verr != nil {
		problem.Write(w, r, verr.code, verr.detail)
		return
	}

	replace := true
	if req.Options != nil && req.Options.OnDuplicate == onDuplicateSkip {
		replace = false
	}

	var failures []ingestFailure
	accepted := make([]engine.Document, 0, len(req.Documents))
	for i, doc := range req.Documents {
		if msg := validateDocument(doc); msg != "" {
			failures = append(failures, ingestFailure{
				Index:   i,
				ID:      doc.ID,
				Code:    string(problem.CodeInvalidArgument),
				Message: msg,
			})
			continue
		}
		accepted = append(accepted, engine.Document{
			ID:       doc.ID,
			Text:     doc.Text,
			Metadata: doc.Metadata,
		})
	}

	ingested, skipped, err := h.svc.Upsert(r.Context(), accepted, replace)
	if err != nil {
		log.Error("ingest failed", "error", err)
		problem.Write(w, r, problem.CodeInternal, "failed to ingest documents")
		return
	}
	if ingested > 0 && h.cache != nil {
		if err := h.cache.Invalidate(r.Context()); err != nil {
			log.Error("cache invalidation failed", "error", err)
		}
	}

	log.Info("documents ingested",
		"ingested", ingested,
		"skipped", len(skipped),
		"failed", len(failures),
	)
	if h.collector != nil {
		h.collector.Track(analytics.IngestEvent{
			Type:      analytics.EventIngest,
			Ingested:  ingested,
			Failed:    len(failures),
			RequestID: logger.RequestID(r.Context()),
			Timestamp: time.Now().UTC(),
		})
	}

	status := http.StatusOK
	if len(failures) > 0 {
		status = http.StatusMultiStatus
	}
	if failures == nil {
		failures = []ingestFailure{}
	}
	h.writeJSON(w, status, ingestResponse{
		Ingested: ingested,
		Failed:   len(failures),
		Failures: failures,
	})
}

// Search handles POST /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logger.FromContext(r.Context())

	var req searchRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if verr := validateSearch(&req, h.cfg.MaxTopK); verr != nil {
		problem.Write(w, r, verr.code, verr.detail)
		return
	}

	topK := h.cfg.DefaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	mode := req.Mode
	if mode == "" {
		mode = modeFulltext
	}
	cursorToken := ""
	if req.Page != nil {
		cursorToken = decodeCursor(req.Page.Cursor)
	}

	if h.metrics != nil {
		h.metrics.SearchQueriesTotal.WithLabelValues(mode).Inc()
	}

	returned := -1
	compute := func() ([]byte, error) {
		res := h.svc.Search(req.Query, engine.SearchOptions{
			Limit:          topK,
			Cursor:         cursorToken,
			EnablePrefix:   mode == modePrefix,
			PrefixLimit:    h.cfg.PrefixLimit,
			CandidateLimit: h.cfg.CandidateLimit,
		})
		resp := h.buildResponse(res, start)
		returned = len(resp.Results)
		return json.Marshal(resp)
	}

	var data []byte
	var cacheHit bool
	var err error
	if h.cache != nil {
		key := cache.Key(req.Query, mode, topK, cursorToken)
		data, cacheHit, err = h.cache.GetOrCompute(r.Context(), key, compute)
	} else {
		data, err = compute()
	}
	if err != nil {
		log.Error("search failed", "query", req.Query, "error", err)
		problem.Write(w, r, problem.CodeInternal, "search failed")
		return
	}

	latency := time.Since(start)
	if h.metrics != nil {
		status := "miss"
		if cacheHit {
			status = "hit"
		}
		if h.cache == nil {
			status = "none"
		}
		h.metrics.SearchLatency.WithLabelValues(status).Observe(latency.Seconds())
	}

	log.Info("search completed",
		"query", req.Query,
		"mode", mode,
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	if h.collector != nil {
		if returned < 0 {
			var resp searchResponse
			if json.Unmarshal(data, &resp) == nil {
				returned = len(resp.Results)
			}
		}
		h.collector.Track(analytics.SearchEvent{
			Type:      analytics.EventSearch,
			Query:     req.Query,
			Mode:      mode,
			TopK:      topK,
			Returned:  returned,
			CacheHit:  cacheHit,
			LatencyMs: latency.Milliseconds(),
			RequestID: logger.RequestID(r.Context()),
			Timestamp: time.Now().UTC(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// buildResponse converts an engine result into the wire shape, attaching
// registered metadata. Highlights are always empty; highlighting is not
// implemented.
func (h *Handler) buildResponse(res engine.Result, start time.Time) searchResponse {
	results := make([]searchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		sr := searchResult{
			ID:         hit.DocID,
			Score:      hit.Score,
			Highlights: []string{},
		}
		if doc, ok := h.svc.Document(hit.DocID); ok {
			sr.Metadata = doc.Metadata
		}
		results = append(results, sr)
	}
	if h.metrics != nil {
		h.metrics.SearchResultsCount.Observe(float64(len(results)))
	}

	var next *string
	if res.NextCursor != "" {
		encoded := encodeCursor(res.NextCursor)
		next = &encoded
	}
	return searchResponse{
		Results: results,
		Page:    pageInfo{NextCursor: next},
		TookMs:  time.Since(start).Milliseconds(),
	}
}

// decodeJSON enforces the JSON content type and parses the body, writing
// the appropriate problem response on failure.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			problem.Write(w, r, problem.CodeUnsupportedMediaType, "request body must be application/json")
			return false
		}
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			problem.Write(w, r, problem.CodeInvalidArgument, "request body is required")
			return false
		}
		problem.Write(w, r, problem.CodeInvalidArgument, "malformed JSON body")
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}
