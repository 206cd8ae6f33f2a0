package poll

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrSuperseded is returned by [Latest.Do] when a newer call for the same key
// started before this one finished.
var ErrSuperseded = errors.New("superseded by a newer request")

// Group de-duplicates concurrent calls by key.
type Group[T any] struct {
	g singleflight.Group
}

// Do runs fn once for all concurrent callers with the same key. shared
// reports whether the result was delivered to more than one caller. If ctx
// is done before fn returns, Do returns ctx.Err() while fn keeps running for
// the remaining callers.
func (g *Group[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error)) (v T, shared bool, err error) {
	ch := g.g.DoChan(key, func() (any, error) {
		// Detached so one caller giving up does not fail the others.
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return v, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return v, res.Shared, res.Err
		}
		v, _ = res.Val.(T)
		return v, res.Shared, nil
	}
}

// Forget drops key so the next Do starts a fresh call.
func (g *Group[T]) Forget(key string) {
	g.g.Forget(key)
}

// Latest runs at most one live call per key. Starting a call cancels the
// previous one for that key.
type Latest[T any] struct {
	mu       sync.Mutex
	inflight map[string]*call
	seq      uint64
}

type call struct {
	id     uint64
	cancel context.CancelFunc
}

// Do runs fn and returns its result unless a newer Do for key started in the
// meantime, in which case it returns [ErrSuperseded].
func (l *Latest[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	if l.inflight == nil {
		l.inflight = make(map[string]*call)
	}
	if prev, ok := l.inflight[key]; ok {
		prev.cancel()
	}
	l.seq++
	me := &call{id: l.seq, cancel: cancel}
	l.inflight[key] = me
	l.mu.Unlock()

	v, err := fn(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if cur := l.inflight[key]; cur != me {
		var zero T
		return zero, ErrSuperseded
	}
	delete(l.inflight, key)
	return v, err
}
