// Package sweep drives a parameter sweep against a running evotext
// service: a matrix of generation counts and population init modes, a
// fixed number of trials each, rendered as a results table once every
// experiment completes.
package sweep

import "time"

// Config holds configuration for a sweep.
type Config struct {
	BaseURL      string        // Base URL of the service
	Goal         string        // Goal phrase; empty uses the service default
	Generations  []int         // Generation counts to sweep over
	Population   int           // Population size for every experiment
	Modes        []string      // Init modes to sweep over
	Trials       int           // Trials per experiment
	Seed         int64         // Base seed; experiments offset from it
	Workers      int           // Concurrent submissions/polls
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Delay between completion polls
	OutputFile   string        // Output file for collected summaries
	LogFile      string        // Log file for sweep output
	Verbose      bool          // Enable verbose logging
}

// ExperimentRequest mirrors POST /experiments.
type ExperimentRequest struct {
	ExperimentID   string  `json:"experiment_id"`
	Goal           string  `json:"goal,omitempty"`
	Generations    int     `json:"generations"`
	PopulationSize int     `json:"population_size"`
	InitMode       string  `json:"init_mode"`
	Trials         int     `json:"trials"`
	Seed           int64   `json:"seed"`
	CrossoverProb  float64 `json:"crossover_prob,omitempty"`
	MutationProb   float64 `json:"mutation_prob,omitempty"`
}

// AckResponse represents the response from experiment submission.
type AckResponse struct {
	Status       string `json:"status"`
	Duplicate    bool   `json:"duplicate"`
	ExperimentID string `json:"experiment_id"`
}

// DistanceStats mirrors the cross-trial distance summary.
type DistanceStats struct {
	Count int     `json:"count"`
	Avg   float64 `json:"avg"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// ExperimentStatus mirrors GET /experiments/{id}.
type ExperimentStatus struct {
	Experiment struct {
		ID             string `json:"experiment_id"`
		Goal           string `json:"goal"`
		Generations    int    `json:"generations"`
		PopulationSize int    `json:"population_size"`
		Mode           string `json:"init_mode"`
		Trials         int    `json:"trials"`
		Seed           int64  `json:"seed"`
	} `json:"experiment"`
	Completed int           `json:"completed"`
	Distances DistanceStats `json:"distances"`
	Status    string        `json:"status"`
	Complete  bool          `json:"complete"`
}

// Entry represents a leaderboard entry.
type Entry struct {
	Rank         int    `json:"rank"`
	RunID        string `json:"run_id"`
	ExperimentID string `json:"experiment_id"`
	BestDistance int    `json:"best_distance"`
	BestText     string `json:"best_text"`
	Generations  int    `json:"generations"`
	InitMode     string `json:"init_mode"`
}

// Stats holds sweep statistics.
type Stats struct {
	ExperimentsPlanned   int
	ExperimentsSubmitted int
	ExperimentsDuplicate int
	ExperimentsFailed    int
	ExperimentsComplete  int
	TrialsCompleted      int
	StartTime            time.Time
	EndTime              time.Time
	Duration             time.Duration
}
