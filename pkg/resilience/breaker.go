package resilience

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned when the breaker is refusing calls.
var ErrOpen = errors.New("circuit open")

// Breaker trips after a run of consecutive failures and stops calling the
// backend until a cool-down passes, after which a single probe is let
// through. It keeps a flaky Redis from adding its timeout to every search.
type Breaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	failures int
	openedAt time.Time
	open     bool
	probing  bool
}

// NewBreaker trips after threshold consecutive failures and probes again
// after cooldown. Zero values default to 5 failures and 30 seconds.
func NewBreaker(name string, threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{
		name:      name,
		threshold: threshold,
		cooldown:  cooldown,
		logger:    slog.Default().With("component", "breaker", "name", name),
	}
}

// Do runs fn unless the breaker is open.
func (b *Breaker) Do(fn func() error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn()
	b.record(err)
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return nil
	}
	if time.Since(b.openedAt) < b.cooldown {
		return fmt.Errorf("%w: %s", ErrOpen, b.name)
	}
	if b.probing {
		return fmt.Errorf("%w: %s (probe in flight)", ErrOpen, b.name)
	}
	b.probing = true
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		if b.open {
			b.logger.Info("circuit closed")
		}
		b.open = false
		b.probing = false
		b.failures = 0
		return
	}
	b.failures++
	b.probing = false
	if b.open || b.failures >= b.threshold {
		if !b.open {
			b.logger.Warn("circuit opened", "consecutive_failures", b.failures)
		}
		b.open = true
		b.openedAt = time.Now()
	}
}
