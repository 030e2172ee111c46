// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/snielsen221b/evotext/internal/domain/stats"
)

// InitMode selects how the initial population is seeded.
type InitMode string

// Supported population initialization modes.
const (
	// InitRandomized draws every individual independently.
	InitRandomized InitMode = "randomized"
	// InitUniform draws one random individual and clones it across the
	// whole population.
	InitUniform InitMode = "uniform"
)

// Valid reports whether the mode is one of the supported values.
func (m InitMode) Valid() bool {
	return m == InitRandomized || m == InitUniform
}

// TrialSpec describes one independent evolution trial. Specs flow from
// the API through the queue to the workers.
type TrialSpec struct {
	RunID          string   // unique id for this trial run
	ExperimentID   string   // owning experiment
	TrialIndex     int      // position within the experiment, 0-based
	Goal           string   // target phrase, Alphabet-only
	Generations    int      // generations to evolve
	PopulationSize int      // individuals per generation
	Mode           InitMode // population seeding strategy
	Seed           int64    // RNG seed for this trial
	CrossoverProb  float64  // probability a selected pair mates
	MutationProb   float64  // probability an offspring mutates
	TournamentSize int      // tournament selection size
}

// Run is the completed result of a trial.
type Run struct {
	Spec TrialSpec `json:"spec"`

	// BestText is the best-ever individual and BestDistance its fitness.
	BestText     string `json:"best_text"`
	BestDistance int    `json:"best_distance"`
	// BestGen is the generation the best individual first appeared in.
	BestGen int `json:"best_gen"`

	// Evaluations counts fitness evaluations across the whole run.
	Evaluations int `json:"evaluations"`

	Logbook []stats.GenerationRow `json:"logbook"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Experiment is a batch of identically-configured independent trials.
type Experiment struct {
	ID             string   `json:"experiment_id"`
	Goal           string   `json:"goal"`
	Generations    int      `json:"generations"`
	PopulationSize int      `json:"population_size"`
	Mode           InitMode `json:"init_mode"`
	Trials         int      `json:"trials"`
	Seed           int64    `json:"seed"`
	CrossoverProb  float64  `json:"crossover_prob"`
	MutationProb   float64  `json:"mutation_prob"`

	SubmittedAt time.Time `json:"submitted_at"`
}

// Summary is the cross-trial aggregate of an experiment: the statistics
// of the trials' final best distances. One Summary corresponds to one
// row of the experiment report.
type Summary struct {
	Experiment Experiment    `json:"experiment"`
	Completed  int           `json:"completed"`
	Distances  stats.Summary `json:"distances"`
}

// Complete reports whether every trial of the experiment has finished.
func (s Summary) Complete() bool {
	return s.Completed >= s.Experiment.Trials
}
