// Package service wraps the search engine behind a read-write lock and
// fans mutations out to the optional document store and metrics. The engine
// itself is single-writer with no internal locking, so every caller — HTTP
// handlers and the Kafka ingest stream alike — goes through here.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/RaphScript0/mini-engine/internal/engine"
	"github.com/RaphScript0/mini-engine/internal/engine/index"
	"github.com/RaphScript0/mini-engine/pkg/metrics"
)

// Store persists the raw document registry. Implementations must tolerate
// being called with documents already present (upsert semantics).
type Store interface {
	Save(ctx context.Context, docs []engine.Document) error
	Delete(ctx context.Context, id string) error
}

// Service is the serialised facade over the engine. Store and Metrics may
// be nil.
type Service struct {
	mu      sync.RWMutex
	eng     *engine.Engine
	store   Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Service around eng.
func New(eng *engine.Engine, store Store, m *metrics.Metrics) *Service {
	return &Service{
		eng:     eng,
		store:   store,
		metrics: m,
		logger:  slog.Default().With("component", "service"),
	}
}

// Upsert indexes docs in order. When replace is false, documents whose id
// is already registered are skipped and their ids returned. Persistence
// failures abort before the engine is touched so the store never lags the
// index.
func (s *Service) Upsert(ctx context.Context, docs []engine.Document, replace bool) (ingested int, skipped []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accepted := make([]engine.Document, 0, len(docs))
	for _, doc := range docs {
		if !replace && s.eng.Has(doc.ID) {
			skipped = append(skipped, doc.ID)
			continue
		}
		accepted = append(accepted, doc)
	}
	if len(accepted) == 0 {
		return 0, skipped, nil
	}

	if s.store != nil {
		if err := s.store.Save(ctx, accepted); err != nil {
			return 0, skipped, fmt.Errorf("persisting documents: %w", err)
		}
	}
	s.eng.UpsertDocuments(accepted)

	if s.metrics != nil {
		s.metrics.DocsIngestedTotal.Add(float64(len(accepted)))
		s.updateGauges()
	}
	return len(accepted), skipped, nil
}

// Remove drops id from the engine and the store. Absent ids report
// removed=false without error.
func (s *Service) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.eng.Has(id) {
		return false, nil
	}
	if s.store != nil {
		if err := s.store.Delete(ctx, id); err != nil {
			return false, fmt.Errorf("deleting document %s: %w", id, err)
		}
	}
	s.eng.RemoveDocument(id)

	if s.metrics != nil {
		s.metrics.DocsRemovedTotal.Inc()
		s.updateGauges()
	}
	return true, nil
}

// Warm loads previously persisted documents straight into the engine,
// bypassing the store writeback.
func (s *Service) Warm(docs []engine.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.UpsertDocuments(docs)
	if s.metrics != nil {
		s.updateGauges()
	}
	s.logger.Info("engine warmed", "documents", len(docs))
}

// Search runs one query under the read lock.
func (s *Service) Search(rawQuery string, opts engine.SearchOptions) engine.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eng.Search(rawQuery, opts)
}

// Has reports whether id is registered.
func (s *Service) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eng.Has(id)
}

// Document returns the registered document for id.
func (s *Service) Document(id string) (engine.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eng.Document(id)
}

// Stats returns the index statistics.
func (s *Service) Stats() index.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eng.Stats()
}

// updateGauges is called with the write lock held.
func (s *Service) updateGauges() {
	s.metrics.IndexDocCount.Set(float64(s.eng.Stats().DocCount))
	s.metrics.DictionaryTerms.Set(float64(s.eng.DictionarySize()))
}
