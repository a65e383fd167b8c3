package service

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/cmpocmkp/kptube-go/internal/model"
	"github.com/cmpocmkp/kptube-go/internal/pipeline"
)

// ErrRunInProgress is returned by TriggerNow when a pipeline run is
// already executing.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// pipelineRunner is the slice of *pipeline.Pipeline the worker drives.
type pipelineRunner interface {
	Run(ctx context.Context) (*model.Run, error)
}

// PipelineWorker is the periodic background job that drives the
// ingestion pipeline. At most one run executes at a time; overlapping
// ticks and manual triggers are rejected while a run is in flight.
type PipelineWorker struct {
	pipe       pipelineRunner
	interval   time.Duration
	runOnStart bool
	inFlight   atomic.Bool
	stopCh     chan struct{}
}

// NewPipelineWorker creates a worker that ticks every interval.
// When runOnStart is set, one tick runs immediately on Start.
func NewPipelineWorker(pipe *pipeline.Pipeline, interval time.Duration, runOnStart bool) *PipelineWorker {
	return &PipelineWorker{
		pipe:       pipe,
		interval:   interval,
		runOnStart: runOnStart,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the periodic pipeline loop. It blocks until the context
// is cancelled or Stop is called.
func (w *PipelineWorker) Start(ctx context.Context) {
	log.Printf("pipeline-worker: starting (interval=%s, runOnStart=%t)", w.interval, w.runOnStart)

	if w.runOnStart {
		w.tick(ctx)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			log.Println("pipeline-worker: stopping (context cancelled)")
			return
		case <-w.stopCh:
			log.Println("pipeline-worker: stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *PipelineWorker) Stop() {
	close(w.stopCh)
}

// TriggerNow starts a pipeline run in the background, outside the
// schedule. It returns ErrRunInProgress when a run is already executing.
func (w *PipelineWorker) TriggerNow(ctx context.Context) error {
	if !w.inFlight.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}

	go func() {
		defer w.inFlight.Store(false)
		log.Println("pipeline-worker: manual trigger")
		if _, err := w.pipe.Run(ctx); err != nil {
			log.Printf("pipeline-worker: triggered run failed: %v", err)
		}
	}()
	return nil
}

// tick runs one scheduled cycle, skipping when a run is still in flight.
func (w *PipelineWorker) tick(ctx context.Context) {
	if !w.inFlight.CompareAndSwap(false, true) {
		log.Println("pipeline-worker: previous run still in flight, skipping tick")
		return
	}
	defer w.inFlight.Store(false)

	start := time.Now()
	run, err := w.pipe.Run(ctx)
	if err != nil {
		log.Printf("pipeline-worker: run failed: %v", err)
		return
	}

	log.Printf("pipeline-worker: tick complete, %d videos processed (%s)",
		run.VideosProcessed, time.Since(start).Round(time.Millisecond))
}
