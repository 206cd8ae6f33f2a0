package poll

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultInterval is the refresh interval for system statistics.
const DefaultInterval = 5 * time.Second

// Result is one poll outcome.
type Result[T any] struct {
	Value     T
	Err       error
	FetchedAt time.Time
}

// Poller calls a fetch function on a fixed interval. At most one fetch is
// live at a time: a Poll that starts while another is in flight cancels it.
type Poller[T any] struct {
	interval time.Duration
	fetch    func(context.Context) (T, error)
	latest   Latest[T]

	mu   sync.RWMutex
	last Result[T]
	ok   bool
}

// NewPoller creates a poller. A non-positive interval uses [DefaultInterval].
func NewPoller[T any](interval time.Duration, fetch func(context.Context) (T, error)) *Poller[T] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller[T]{interval: interval, fetch: fetch}
}

// Interval returns the refresh interval.
func (p *Poller[T]) Interval() time.Duration { return p.interval }

// Run fetches immediately and then on every tick until ctx is done. Each
// result is stored and, when onResult is non-nil, passed to it. A failed
// fetch keeps the previous value and records the error.
func (p *Poller[T]) Run(ctx context.Context, onResult func(Result[T])) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		res := p.Poll(ctx)
		if ctx.Err() != nil {
			return
		}
		if onResult != nil && !errors.Is(res.Err, ErrSuperseded) {
			onResult(res)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poll performs one fetch and records the outcome. If a newer Poll starts
// before this one finishes, the fetch is cancelled and Poll returns a result
// carrying only [ErrSuperseded]; nothing is recorded for it.
func (p *Poller[T]) Poll(ctx context.Context) Result[T] {
	v, err := p.latest.Do(ctx, "poll", p.fetch)
	if errors.Is(err, ErrSuperseded) {
		return Result[T]{Err: err}
	}
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.last.Err = err
		p.last.FetchedAt = now
		return p.last
	}
	p.last = Result[T]{Value: v, FetchedAt: now}
	p.ok = true
	return p.last
}

// Last returns the most recent result and whether any fetch has succeeded.
func (p *Poller[T]) Last() (Result[T], bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last, p.ok
}
