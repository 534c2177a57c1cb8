// Package ingest feeds the engine from a Kafka document stream: an
// alternate write edge for callers that batch documents through a broker
// instead of POST /documents. Writes land on the same serialised service,
// so the engine still sees a single writer.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RaphScript0/mini-engine/internal/cache"
	"github.com/RaphScript0/mini-engine/internal/engine"
	"github.com/RaphScript0/mini-engine/internal/service"
	"github.com/RaphScript0/mini-engine/pkg/kafka"
)

// Op names the mutation carried by a DocumentEvent.
type Op string

const (
	OpUpsert Op = "upsert"
	OpRemove Op = "remove"
)

// DocumentEvent is the message schema on the documents topic.
type DocumentEvent struct {
	Op       Op              `json:"op"`
	Document engine.Document `json:"document"`
}

// Consumer applies document events to the service.
type Consumer struct {
	svc    *service.Service
	cache  *cache.SearchCache
	logger *slog.Logger
}

// NewConsumer creates a Consumer. cache may be nil.
func NewConsumer(svc *service.Service, searchCache *cache.SearchCache) *Consumer {
	return &Consumer{
		svc:    svc,
		cache:  searchCache,
		logger: slog.Default().With("component", "ingest-consumer"),
	}
}

// Handle is the kafka.MessageHandler for the documents topic. Malformed
// events are an error (skipped without commit); valid events mutate the
// engine and invalidate the search cache.
func (c *Consumer) Handle(ctx context.Context, key, value []byte) error {
	event, err := kafka.DecodeJSON[DocumentEvent](value)
	if err != nil {
		return err
	}
	switch event.Op {
	case OpUpsert:
		if event.Document.ID == "" {
			return fmt.Errorf("upsert event without document id")
		}
		if _, _, err := c.svc.Upsert(ctx, []engine.Document{event.Document}, true); err != nil {
			return err
		}
	case OpRemove:
		id := event.Document.ID
		if id == "" {
			id = string(key)
		}
		if id == "" {
			return fmt.Errorf("remove event without document id")
		}
		if _, err := c.svc.Remove(ctx, id); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown document event op %q", event.Op)
	}

	if c.cache != nil {
		if err := c.cache.Invalidate(ctx); err != nil {
			c.logger.Error("cache invalidation failed", "error", err)
		}
	}
	return nil
}
