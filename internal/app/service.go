// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	trialqueue "github.com/snielsen221b/evotext/internal/adapters/mq/queue"
	workerpool "github.com/snielsen221b/evotext/internal/adapters/mq/worker"
	repository "github.com/snielsen221b/evotext/internal/adapters/repository"
	"github.com/snielsen221b/evotext/internal/domain/dedupe"
	"github.com/snielsen221b/evotext/internal/domain/evolve"
	"github.com/snielsen221b/evotext/internal/domain/genome"
	"github.com/snielsen221b/evotext/internal/domain/model"
	"github.com/snielsen221b/evotext/internal/domain/stats"
	"github.com/snielsen221b/evotext/internal/domain/types"
	"github.com/snielsen221b/evotext/pkg/logger"
	"github.com/snielsen221b/evotext/pkg/metrics"
)

// Service runs experiments: it expands submissions into trials, feeds
// the worker pool, and answers queries over recorded runs.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	trialQueue trialqueue.Queue
	engine     *evolve.Engine
	workerPool *workerpool.Pool

	// Submitted experiments by id.
	experiments map[string]model.Experiment

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	defaultGoal    string
	defaultTrials  int
	defaultSeed    int64
	engineOptions []evolve.Option

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the trial queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaultGoal sets the goal used by experiments that omit one.
func WithDefaultGoal(goal string) Option {
	return func(s *Service) {
		if goal != "" {
			s.defaultGoal = goal
		}
	}
}

// WithDefaultTrials sets the trial count for experiments that omit it.
func WithDefaultTrials(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultTrials = n
		}
	}
}

// WithDefaultSeed sets the base RNG seed for experiments that omit it.
func WithDefaultSeed(seed int64) Option {
	return func(s *Service) {
		s.defaultSeed = seed
	}
}

// WithEngineOptions forwards options to the evolution engine.
func WithEngineOptions(opts ...evolve.Option) Option {
	return func(s *Service) {
		s.engineOptions = append(s.engineOptions, opts...)
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU(),
		queueSize:     10000,
		dedupeSize:    50000,
		defaultGoal:   "SKYNET IS NOW ONLINE",
		defaultTrials: 1,
		defaultSeed:   evolve.DefaultSeed,
		experiments:   make(map[string]model.Experiment),
		stopCh:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting experiment service...")

	s.store = repository.NewTreapStore(ctx)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.trialQueue = trialqueue.NewInMemoryQueue(
		trialqueue.WithCapacity(s.queueSize),
	)
	s.engine = evolve.New(s.engineOptions...)

	s.workerPool = workerpool.NewPool(s.workerCount, s.trialQueue, s.engine, s.store)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "experiment service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("defaultGoal", s.defaultGoal),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping experiment service...")

	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	if q, ok := s.trialQueue.(*trialqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "experiment service stopped")
}

// SeenAndRecord atomically checks if an experiment id was seen and
// records it if not. Returns true if already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordExperimentDuplicate()
	}
	return seen
}

// Unrecord removes an experiment ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// normalize fills defaults and validates an experiment submission.
func (s *Service) normalize(exp model.Experiment) (model.Experiment, error) {
	if exp.ID == "" {
		exp.ID = uuid.NewString()
	}
	if exp.Goal == "" {
		exp.Goal = s.defaultGoal
	}
	if err := genome.ValidateGoal(exp.Goal); err != nil {
		return exp, err
	}
	if exp.Generations <= 0 {
		exp.Generations = evolve.DefaultGenerations
	}
	if exp.PopulationSize <= 0 {
		exp.PopulationSize = evolve.DefaultPopulationSize
	}
	if exp.Trials <= 0 {
		exp.Trials = s.defaultTrials
	}
	if exp.Seed == 0 {
		exp.Seed = s.defaultSeed
	}
	if exp.Mode == "" {
		exp.Mode = model.InitRandomized
	}
	if !exp.Mode.Valid() {
		return exp, fmt.Errorf("%w: unknown init mode %q", ErrInvalidExperiment, exp.Mode)
	}
	exp.SubmittedAt = time.Now()
	return exp, nil
}

// Submit registers an experiment and enqueues one trial per repetition.
// Returns ErrBackpressure when the queue cannot absorb the batch; in
// that case nothing is registered and the caller should unrecord the id.
func (s *Service) Submit(ctx context.Context, exp model.Experiment) (model.Experiment, error) {
	exp, err := s.normalize(exp)
	if err != nil {
		return exp, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return exp, ErrNotStarted
	}

	// Reject the whole batch up front rather than enqueue half an
	// experiment.
	if s.trialQueue.Len(ctx)+exp.Trials > s.queueSize {
		return exp, ErrBackpressure
	}

	for i := 0; i < exp.Trials; i++ {
		spec := model.TrialSpec{
			RunID:          uuid.NewString(),
			ExperimentID:   exp.ID,
			TrialIndex:     i,
			Goal:           exp.Goal,
			Generations:    exp.Generations,
			PopulationSize: exp.PopulationSize,
			Mode:           exp.Mode,
			Seed:           exp.Seed + int64(i),
			CrossoverProb:  exp.CrossoverProb,
			MutationProb:   exp.MutationProb,
		}
		if !s.trialQueue.Enqueue(ctx, spec) {
			// Capacity raced away between the check and the enqueue.
			// Trials already in the queue will still run; their runs stay
			// queryable by id but the experiment is not registered.
			s.logger.Warn(ctx, "trial enqueue failed mid-batch",
				logger.String("experimentID", exp.ID),
				logger.Int("trialIndex", i),
			)
			return exp, ErrBackpressure
		}
	}

	s.experiments[exp.ID] = exp
	metrics.RecordExperimentAccepted()

	s.logger.Info(ctx, "experiment accepted",
		logger.String("experimentID", exp.ID),
		logger.String("goal", exp.Goal),
		logger.Int("generations", exp.Generations),
		logger.Int("populationSize", exp.PopulationSize),
		logger.String("initMode", string(exp.Mode)),
		logger.Int("trials", exp.Trials),
		logger.Int64("seed", exp.Seed),
	)

	return exp, nil
}

// Experiment returns the submission plus the cross-trial summary of the
// runs completed so far. Returns ErrNotFound for unknown ids.
func (s *Service) Experiment(ctx context.Context, id string) (model.Summary, error) {
	s.mu.RLock()
	exp, ok := s.experiments[id]
	s.mu.RUnlock()
	if !ok {
		return model.Summary{}, repository.ErrNotFound
	}

	runs, err := s.store.ByExperiment(ctx, id)
	if err != nil {
		return model.Summary{}, err
	}

	distances := make([]int, len(runs))
	for i, run := range runs {
		distances[i] = run.BestDistance
	}

	return model.Summary{
		Experiment: exp,
		Completed:  len(runs),
		Distances:  stats.SummarizeInts(distances),
	}, nil
}

// Run returns a completed run by id.
func (s *Service) Run(ctx context.Context, runID string) (model.Run, error) {
	return s.store.Get(ctx, runID)
}

// TopN returns the top N leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	entries, err := s.store.TopN(ctx, n)
	if err != nil {
		return nil, err
	}

	apiEntries := make([]types.Entry, len(entries))
	for i, entry := range entries {
		apiEntries[i] = toAPIEntry(entry)
	}

	return apiEntries, nil
}

// Rank returns the leaderboard position for a given run id.
func (s *Service) Rank(ctx context.Context, runID string) (types.Entry, error) {
	entry, err := s.store.Rank(ctx, runID)
	if err != nil {
		return types.Entry{}, err
	}
	return toAPIEntry(entry), nil
}

func toAPIEntry(entry repository.Entry) types.Entry {
	return types.Entry{
		Rank:         entry.Rank,
		RunID:        entry.RunID,
		ExperimentID: entry.ExperimentID,
		BestDistance: entry.BestDistance,
		BestText:     entry.BestText,
		Generations:  entry.Generations,
		InitMode:     entry.InitMode,
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	statsMap := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"experiments": len(s.experiments),
	}

	if s.started {
		queueLen := s.trialQueue.Len(ctx)
		totalRuns := s.store.Count(ctx)

		statsMap["queueLength"] = queueLen
		statsMap["totalRuns"] = totalRuns

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalRuns(totalRuns)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return statsMap
}
