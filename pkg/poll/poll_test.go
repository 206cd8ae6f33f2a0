package poll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGroupDeduplicates(t *testing.T) {
	var g Group[int]
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := g.Do(context.Background(), "stats", func(context.Context) (int, error) {
				calls.Add(1)
				<-release
				return 42, nil
			})
			if err != nil {
				t.Errorf("Do() error = %v", err)
			}
			results[i] = v
		}()
	}

	// Let the goroutines pile up on the in-flight call.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("fn called %d times, want 1", n)
	}
	for i, v := range results {
		if v != 42 {
			t.Errorf("results[%d] = %d, want 42", i, v)
		}
	}
}

func TestGroupContextCancel(t *testing.T) {
	var g Group[string]
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	block := make(chan struct{})
	defer close(block)
	_, _, err := g.Do(ctx, "k", func(context.Context) (string, error) {
		<-block
		return "late", nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want %v", err, context.Canceled)
	}
}

func TestGroupError(t *testing.T) {
	var g Group[int]
	boom := errors.New("boom")
	_, _, err := g.Do(context.Background(), "k", func(context.Context) (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Do() error = %v, want %v", err, boom)
	}
}

func TestLatestSupersedes(t *testing.T) {
	var l Latest[string]
	started := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		_, err := l.Do(context.Background(), "wf-1", func(ctx context.Context) (string, error) {
			close(started)
			<-ctx.Done()
			return "old", ctx.Err()
		})
		done <- err
	}()
	<-started

	v, err := l.Do(context.Background(), "wf-1", func(context.Context) (string, error) {
		return "new", nil
	})
	if err != nil || v != "new" {
		t.Errorf("newer Do() = %q, %v", v, err)
	}
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Errorf("older Do() error = %v, want %v", err, ErrSuperseded)
	}
}

func TestLatestIndependentKeys(t *testing.T) {
	var l Latest[int]
	a, errA := l.Do(context.Background(), "a", func(context.Context) (int, error) { return 1, nil })
	b, errB := l.Do(context.Background(), "b", func(context.Context) (int, error) { return 2, nil })
	if a != 1 || b != 2 || errA != nil || errB != nil {
		t.Errorf("got (%d,%v) (%d,%v)", a, errA, b, errB)
	}
}

func TestPollerKeepsLastGoodValue(t *testing.T) {
	var n atomic.Int32
	boom := errors.New("boom")
	p := NewPoller(time.Millisecond, func(context.Context) (int, error) {
		if n.Add(1) == 2 {
			return 0, boom
		}
		return int(n.Load()), nil
	})

	if _, ok := p.Last(); ok {
		t.Error("Last() before any poll should report !ok")
	}
	p.Poll(context.Background())
	res := p.Poll(context.Background())
	if res.Value != 1 || !errors.Is(res.Err, boom) {
		t.Errorf("after failure: %+v", res)
	}
	res = p.Poll(context.Background())
	if res.Value != 3 || res.Err != nil {
		t.Errorf("after recovery: %+v", res)
	}
}

func TestPollerRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPoller(time.Millisecond, func(context.Context) (int, error) { return 7, nil })
	var got atomic.Int32
	go p.Run(ctx, func(r Result[int]) {
		if got.Add(1) == 3 {
			cancel()
		}
	})

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not tick")
	}
	if last, ok := p.Last(); !ok || last.Value != 7 {
		t.Errorf("Last() = %+v, %v", last, ok)
	}
}

func TestNewPollerDefaultInterval(t *testing.T) {
	p := NewPoller(0, func(context.Context) (int, error) { return 0, nil })
	if p.Interval() != DefaultInterval {
		t.Errorf("Interval() = %v, want %v", p.Interval(), DefaultInterval)
	}
}

func TestPollerPollSupersedes(t *testing.T) {
	var n atomic.Int32
	started := make(chan struct{})
	p := NewPoller(time.Second, func(ctx context.Context) (int, error) {
		if n.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return 0, ctx.Err()
		}
		return 42, nil
	})

	done := make(chan Result[int], 1)
	go func() { done <- p.Poll(context.Background()) }()
	<-started

	if res := p.Poll(context.Background()); res.Value != 42 || res.Err != nil {
		t.Errorf("newer Poll() = %+v", res)
	}
	old := <-done
	if !errors.Is(old.Err, ErrSuperseded) {
		t.Errorf("older Poll() error = %v, want %v", old.Err, ErrSuperseded)
	}
	if !old.FetchedAt.IsZero() {
		t.Errorf("superseded result should carry no timestamp, got %v", old.FetchedAt)
	}
	last, ok := p.Last()
	if !ok || last.Value != 42 || last.Err != nil {
		t.Errorf("Last() = %+v, %v; superseded poll should not be recorded", last, ok)
	}
}
