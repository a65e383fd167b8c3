package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmpocmkp/kptube-go/internal/model"
)

// slowRunner blocks until released so tests can hold a run in flight.
type slowRunner struct {
	calls   atomic.Int32
	release chan struct{}
}

func (r *slowRunner) Run(ctx context.Context) (*model.Run, error) {
	r.calls.Add(1)
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &model.Run{ID: 1, Status: model.RunSuccess}, nil
}

func newTestWorker(r pipelineRunner) *PipelineWorker {
	return &PipelineWorker{
		pipe:     r,
		interval: time.Hour,
		stopCh:   make(chan struct{}),
	}
}

func TestTriggerNow(t *testing.T) {
	runner := &slowRunner{}
	w := newTestWorker(runner)

	if err := w.TriggerNow(context.Background()); err != nil {
		t.Fatalf("TriggerNow: %v", err)
	}

	waitFor(t, func() bool { return runner.calls.Load() == 1 })
}

func TestTriggerNow_RejectsOverlap(t *testing.T) {
	runner := &slowRunner{release: make(chan struct{})}
	w := newTestWorker(runner)

	if err := w.TriggerNow(context.Background()); err != nil {
		t.Fatalf("first trigger: %v", err)
	}
	waitFor(t, func() bool { return runner.calls.Load() == 1 })

	if err := w.TriggerNow(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("second trigger err = %v, want ErrRunInProgress", err)
	}

	close(runner.release)
	waitFor(t, func() bool { return !w.inFlight.Load() })

	// A new trigger is accepted once the previous run finishes.
	if err := w.TriggerNow(context.Background()); err != nil {
		t.Fatalf("trigger after completion: %v", err)
	}
	waitFor(t, func() bool { return runner.calls.Load() == 2 })
}

func TestTickSkipsWhileInFlight(t *testing.T) {
	runner := &slowRunner{}
	w := newTestWorker(runner)

	w.inFlight.Store(true)
	w.tick(context.Background())
	if got := runner.calls.Load(); got != 0 {
		t.Fatalf("runner called %d times while in flight, want 0", got)
	}

	w.inFlight.Store(false)
	w.tick(context.Background())
	if got := runner.calls.Load(); got != 1 {
		t.Fatalf("runner called %d times, want 1", got)
	}
	if w.inFlight.Load() {
		t.Error("inFlight still set after tick")
	}
}

func TestStartRunOnStart(t *testing.T) {
	runner := &slowRunner{}
	w := newTestWorker(runner)
	w.runOnStart = true

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return runner.calls.Load() == 1 })
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}

func TestStop(t *testing.T) {
	runner := &slowRunner{}
	w := newTestWorker(runner)

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	w.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on Stop")
	}
	if got := runner.calls.Load(); got != 0 {
		t.Errorf("runner called %d times without runOnStart, want 0", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
