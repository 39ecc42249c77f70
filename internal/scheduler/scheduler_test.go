package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerRunsJobImmediately(t *testing.T) {
	var runs int64

	s := New()
	s.AddJob("counter", time.Hour, func() {
		atomic.AddInt64(&runs, 1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt64(&runs) == 0 {
		select {
		case <-deadline:
			t.Fatal("job did not run within 2s of Start")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSchedulerRunsJobOnTicks(t *testing.T) {
	var runs int64

	s := New()
	s.AddJob("ticker", 20*time.Millisecond, func() {
		atomic.AddInt64(&runs, 1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	time.Sleep(150 * time.Millisecond)
	if got := atomic.LoadInt64(&runs); got < 3 {
		t.Errorf("got %d runs in 150ms at 20ms interval, want at least 3", got)
	}
}

func TestSchedulerSurvivesPanickingJob(t *testing.T) {
	var panics, healthy int64

	s := New()
	s.AddJob("panicky", 20*time.Millisecond, func() {
		atomic.AddInt64(&panics, 1)
		panic("boom")
	})
	s.AddJob("healthy", 20*time.Millisecond, func() {
		atomic.AddInt64(&healthy, 1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	time.Sleep(150 * time.Millisecond)

	if got := atomic.LoadInt64(&panics); got < 2 {
		t.Errorf("panicking job ran %d times, want at least 2 (loop must survive the panic)", got)
	}
	if got := atomic.LoadInt64(&healthy); got < 2 {
		t.Errorf("healthy job ran %d times, want at least 2", got)
	}
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	var runs int64

	s := New()
	s.AddJob("stopper", 10*time.Millisecond, func() {
		atomic.AddInt64(&runs, 1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	cancel()
	time.Sleep(30 * time.Millisecond)

	frozen := atomic.LoadInt64(&runs)
	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt64(&runs); got != frozen {
		t.Errorf("job ran %d more times after cancel", got-frozen)
	}
}
