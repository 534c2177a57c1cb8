package analytics

import (
	"context"
	"log/slog"

	"github.com/RaphScript0/mini-engine/pkg/kafka"
)

// Collector buffers events and publishes them to the analytics topic in the
// background. Track never blocks: when the buffer is full the event is
// dropped with a warning.
type Collector struct {
	producer *kafka.Producer
	eventCh  chan any
	done     chan struct{}
	logger   *slog.Logger
}

// NewCollector creates a Collector with the given buffer size.
func NewCollector(producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan any, bufferSize),
		done:     make(chan struct{}),
		logger:   slog.Default().With("component", "analytics-collector"),
	}
}

// Start launches the publish loop. Remaining buffered events are drained
// when ctx is cancelled.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drain()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues an event without blocking.
func (c *Collector) Track(event any) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops the collector and waits for the publish loop to exit.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event any) {
	if err := c.producer.Publish(ctx, kafka.Event{Key: "analytics", Value: event}); err != nil {
		c.logger.Error("failed to publish analytics event", "error", err)
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}
