// Package refresh keeps a value current by re-fetching it on a fixed
// interval, with manual refreshes allowed in between.
package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Status describes how current a Runner's value is
type Status string

const (
	StatusLoading Status = "loading"
	StatusFresh   Status = "fresh"
	StatusStale   Status = "stale"
)

// State is a snapshot of a Runner
type State[T any] struct {
	Status    Status    `json:"status"`
	Value     T         `json:"value"`
	HasValue  bool      `json:"hasValue"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
	Err       error     `json:"-"`
}

// FetchFunc produces a new value
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Runner re-fetches a value every interval until stopped. Scheduled and
// manual refreshes are not serialized: whichever completes last wins.
type Runner[T any] struct {
	name     string
	interval time.Duration
	fetch    FetchFunc[T]
	now      func() time.Time

	mu      sync.Mutex
	state   State[T]
	stopped bool

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a runner in the loading state. name labels its log lines.
func New[T any](name string, interval time.Duration, fetch FetchFunc[T]) *Runner[T] {
	return &Runner[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		now:      time.Now,
		state:    State[T]{Status: StatusLoading},
		stop:     make(chan struct{}),
	}
}

// Run fetches immediately and then on every tick until ctx is done or Stop
// is called. A failed first fetch marks the state stale; failed ticks after
// that are only logged and leave the state untouched.
func (r *Runner[T]) Run(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil {
		slog.Warn("initial refresh failed", "runner", r.name, "error", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.tick(ctx)
		case <-ctx.Done():
			r.Stop()
			return
		case <-r.stop:
			return
		}
	}
}

// Refresh fetches now and returns the fetch error, if any. A failure marks
// the state stale but keeps the last good value.
func (r *Runner[T]) Refresh(ctx context.Context) error {
	return r.apply(r.fetch(ctx))
}

// State returns the current snapshot
func (r *Runner[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Stop ends Run. Fetches that complete afterwards are ignored.
func (r *Runner[T]) Stop() {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.stopped = true
		r.mu.Unlock()
		close(r.stop)
	})
}

func (r *Runner[T]) tick(ctx context.Context) {
	value, err := r.fetch(ctx)
	if err != nil {
		slog.Warn("background refresh failed", "runner", r.name, "error", err)
		return
	}
	r.apply(value, nil)
}

func (r *Runner[T]) apply(value T, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return err
	}

	if err != nil {
		r.state.Status = StatusStale
		r.state.Err = err
		return err
	}

	r.state = State[T]{
		Status:    StatusFresh,
		Value:     value,
		HasValue:  true,
		UpdatedAt: r.now(),
	}
	return nil
}
