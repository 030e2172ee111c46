// Package worker defines worker contracts for asynchronously executing
// evolution trials and recording their results.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/snielsen221b/evotext/internal/domain/model"
	"github.com/snielsen221b/evotext/pkg/logger"
	"github.com/snielsen221b/evotext/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Trial abstracts what workers read off the queue.
type Trial = model.TrialSpec

// Runner executes one evolution trial.
type Runner interface {
	Run(ctx context.Context, spec Trial) (model.Run, error)
}

// Recorder persists a completed run.
type Recorder interface {
	Record(ctx context.Context, run model.Run) (bool, error)
}

// Queue defines how workers receive trials.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Trial
}

// Worker processes trials and records completed runs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// TrialWorker implements Worker for executing evolution trials.
type TrialWorker struct {
	queue    Queue
	runner   Runner
	recorder Recorder
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewTrialWorker creates a new worker with configuration options.
func NewTrialWorker(queue Queue, runner Runner, recorder Recorder, opts ...Option) *TrialWorker {
	w := &TrialWorker{
		queue:    queue,
		runner:   runner,
		recorder: recorder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *TrialWorker) Run(ctx context.Context) {
	defer close(w.done)

	trials := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case trial, ok := <-trials:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			if err := w.processTrial(ctx, trial); err != nil {
				w.logger.Error(ctx, "error processing trial", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *TrialWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processTrial runs a single trial and records the result.
func (w *TrialWorker) processTrial(ctx context.Context, trial Trial) error {
	start := time.Now()

	run, err := w.runner.Run(ctx, trial)
	if err != nil {
		metrics.RecordTrialFailed()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "trial_error")
		w.logger.Error(ctx, "trial failed",
			logger.String("runID", trial.RunID),
			logger.String("experimentID", trial.ExperimentID),
			logger.Error(err),
		)
		return fmt.Errorf("trial %s failed: %w", trial.RunID, err)
	}

	metrics.RecordTrialDuration(float64(time.Since(start).Milliseconds()))
	metrics.RecordGenerations(run.Spec.Generations)
	metrics.RecordEvaluations(run.Evaluations)

	recorded, err := w.recorder.Record(ctx, run)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "record_error")
		w.logger.Error(ctx, "recording run failed",
			logger.String("runID", trial.RunID),
			logger.Error(err),
		)
		return fmt.Errorf("recording run %s failed: %w", trial.RunID, err)
	}

	if recorded {
		metrics.RecordTrialCompleted()
	}

	w.logger.Debug(ctx, "trial completed",
		logger.String("runID", run.Spec.RunID),
		logger.Int("bestDistance", run.BestDistance),
		logger.String("bestText", run.BestText),
		logger.Duration("duration", run.Duration),
	)

	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers  []*TrialWorker
	queue    Queue
	runner   Runner
	recorder Recorder

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, runner Runner, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*TrialWorker, workerCount),
		queue:    queue,
		runner:   runner,
		recorder: recorder,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewTrialWorker(
			queue,
			runner,
			recorder,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	close(p.shutdown)

	ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
	defer cancel()
	for _, worker := range p.workers {
		if err := worker.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker stop timed out", logger.Error(err))
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// Close the queue first so no new trials arrive.
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
