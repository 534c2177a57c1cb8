// Package analytics publishes search and ingest events to Kafka through a
// buffered collector so the request path never blocks on the broker.
package analytics

import "time"

// EventType discriminates the event payloads on the analytics topic.
type EventType string

const (
	EventSearch EventType = "search"
	EventIngest EventType = "ingest"
	EventRemove EventType = "remove"
)

// SearchEvent describes one completed search request.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Mode      string    `json:"mode"`
	TopK      int       `json:"top_k"`
	Returned  int       `json:"returned"`
	CacheHit  bool      `json:"cache_hit"`
	LatencyMs int64     `json:"latency_ms"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// IngestEvent describes one bulk ingest request.
type IngestEvent struct {
	Type      EventType `json:"type"`
	Ingested  int       `json:"ingested"`
	Failed    int       `json:"failed"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
