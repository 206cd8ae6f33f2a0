package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func TestSpinnerBasic(t *testing.T) {
	s := newSpinner("Fetching workflows...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if s.Cancelled() {
		t.Error("Stop() without a cancelled parent should not report cancellation")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Computing layout...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
	if !s.Cancelled() {
		t.Error("Spinner should stay cancelled after Stop")
	}
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "Waiting...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Stopping...")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := newSpinner("Never started")
	s.Stop()
}

func TestSpinnerDrawsOnlyWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner("Rendering...")
	s.w = &buf
	s.enabled = false
	s.draw("⠋")
	if buf.Len() != 0 {
		t.Errorf("disabled spinner wrote %q", buf.String())
	}

	s.enabled = true
	s.draw("⠋")
	if !bytes.Contains(buf.Bytes(), []byte("Rendering...")) {
		t.Errorf("enabled spinner output = %q", buf.String())
	}
}

func TestSpin(t *testing.T) {
	got, err := spin(context.Background(), "Working...", func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Errorf("spin() = %d, %v", got, err)
	}

	boom := errors.New("boom")
	if _, err := spin(context.Background(), "Failing...", func(ctx context.Context) (int, error) {
		return 0, boom
	}); !errors.Is(err, boom) {
		t.Errorf("spin() error = %v, want %v", err, boom)
	}
}
