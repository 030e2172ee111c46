// Package evolve implements the generational evolution loop that drives
// a population of candidate messages toward a goal phrase.
package evolve

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/snielsen221b/evotext/internal/domain/fitness"
	"github.com/snielsen221b/evotext/internal/domain/genome"
	"github.com/snielsen221b/evotext/internal/domain/model"
	"github.com/snielsen221b/evotext/internal/domain/stats"
)

// Default evolution parameters, applied when a TrialSpec leaves the
// corresponding field zero.
const (
	DefaultGenerations    = 500
	DefaultPopulationSize = 300
	DefaultCrossoverProb  = 0.5
	DefaultMutationProb   = 0.2
	DefaultTournamentSize = 3
	DefaultSeed           = 4
)

// Engine runs evolution trials. It is stateless between runs; every run
// owns its RNG seeded from the trial spec, so identical specs produce
// identical results.
type Engine struct {
	generations    int
	populationSize int
	crossoverProb  float64
	mutationProb   float64
	tournamentSize int
	maxGenerations int
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithGenerations sets the default generation count for specs that omit it.
func WithGenerations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.generations = n
		}
	}
}

// WithPopulationSize sets the default population size for specs that omit it.
func WithPopulationSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.populationSize = n
		}
	}
}

// WithCrossoverProb sets the default crossover probability.
func WithCrossoverProb(p float64) Option {
	return func(e *Engine) {
		if p > 0 && p <= 1 {
			e.crossoverProb = p
		}
	}
}

// WithMutationProb sets the default mutation probability.
func WithMutationProb(p float64) Option {
	return func(e *Engine) {
		if p > 0 && p <= 1 {
			e.mutationProb = p
		}
	}
}

// WithTournamentSize sets the default tournament selection size.
func WithTournamentSize(n int) Option {
	return func(e *Engine) {
		if n > 1 {
			e.tournamentSize = n
		}
	}
}

// WithMaxGenerations caps the generation count any spec may request.
func WithMaxGenerations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxGenerations = n
		}
	}
}

// New constructs an Engine with default parameters.
func New(opts ...Option) *Engine {
	e := &Engine{
		generations:    DefaultGenerations,
		populationSize: DefaultPopulationSize,
		crossoverProb:  DefaultCrossoverProb,
		mutationProb:   DefaultMutationProb,
		tournamentSize: DefaultTournamentSize,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// normalize fills spec defaults and validates the result.
func (e *Engine) normalize(spec model.TrialSpec) (model.TrialSpec, error) {
	if err := genome.ValidateGoal(spec.Goal); err != nil {
		return spec, err
	}
	if spec.Generations <= 0 {
		spec.Generations = e.generations
	}
	if e.maxGenerations > 0 && spec.Generations > e.maxGenerations {
		return spec, fmt.Errorf("%w: %d generations exceeds cap %d",
			ErrInvalidSpec, spec.Generations, e.maxGenerations)
	}
	if spec.PopulationSize <= 0 {
		spec.PopulationSize = e.populationSize
	}
	if spec.PopulationSize < 2 {
		return spec, fmt.Errorf("%w: population size must be at least 2", ErrInvalidSpec)
	}
	if spec.CrossoverProb <= 0 {
		spec.CrossoverProb = e.crossoverProb
	}
	if spec.MutationProb <= 0 {
		spec.MutationProb = e.mutationProb
	}
	if spec.TournamentSize <= 1 {
		spec.TournamentSize = e.tournamentSize
	}
	if spec.Mode == "" {
		spec.Mode = model.InitRandomized
	}
	if !spec.Mode.Valid() {
		return spec, fmt.Errorf("%w: unknown init mode %q", ErrInvalidSpec, spec.Mode)
	}
	return spec, nil
}

// Run executes one evolution trial described by spec.
func (e *Engine) Run(ctx context.Context, spec model.TrialSpec) (model.Run, error) {
	spec, err := e.normalize(spec)
	if err != nil {
		return model.Run{}, err
	}

	started := time.Now()
	rng := rand.New(rand.NewSource(spec.Seed)) //nolint:gosec // deterministic seed is the point: trials must be reproducible
	eval := fitness.NewLevenshtein(spec.Goal)

	var pop genome.Population
	switch spec.Mode {
	case model.InitUniform:
		pop = genome.NewUniformPopulation(spec.PopulationSize, rng)
	case model.InitRandomized:
		pop = genome.NewRandomPopulation(spec.PopulationSize, rng)
	}

	run := model.Run{
		Spec:         spec,
		BestDistance: -1,
		Logbook:      make([]stats.GenerationRow, 0, spec.Generations+1),
		StartedAt:    started,
	}

	// Generation 0: evaluate the seed population.
	nevals, err := evaluate(ctx, eval, pop)
	if err != nil {
		return model.Run{}, fmt.Errorf("initial evaluation failed: %w", err)
	}
	run.Evaluations += nevals
	recordGeneration(&run, 0, nevals, pop)

	for gen := 1; gen <= spec.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return model.Run{}, fmt.Errorf("trial %s canceled at generation %d: %w", spec.RunID, gen, err)
		}

		offspring := selectTournament(pop, len(pop), spec.TournamentSize, rng)
		vary(offspring, spec.CrossoverProb, spec.MutationProb, rng)

		nevals, err := evaluate(ctx, eval, offspring)
		if err != nil {
			return model.Run{}, fmt.Errorf("evaluation failed at generation %d: %w", gen, err)
		}
		run.Evaluations += nevals

		pop = offspring
		recordGeneration(&run, gen, nevals, pop)
	}

	run.Duration = time.Since(started)
	return run, nil
}

// evaluate scores every individual whose cached fitness is stale and
// returns how many evaluations it performed.
func evaluate(ctx context.Context, eval fitness.Evaluator, pop genome.Population) (int, error) {
	nevals := 0
	for _, ind := range pop {
		if ind.Valid() {
			continue
		}
		d, err := eval.Evaluate(ctx, ind.Text())
		if err != nil {
			return nevals, err
		}
		ind.SetDistance(d)
		nevals++
	}
	return nevals, nil
}

// recordGeneration appends a logbook row and updates the best-ever
// individual.
func recordGeneration(run *model.Run, gen, nevals int, pop genome.Population) {
	distances := make([]int, len(pop))
	for i, ind := range pop {
		distances[i] = ind.Distance()
		if run.BestDistance < 0 || ind.Distance() < run.BestDistance {
			run.BestDistance = ind.Distance()
			run.BestText = ind.Text()
			run.BestGen = gen
		}
	}
	run.Logbook = append(run.Logbook, stats.GenerationRow{
		Gen:     gen,
		Evals:   nevals,
		Fitness: stats.SummarizeInts(distances),
	})
}
