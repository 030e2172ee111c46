// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// TrialQueueSize bounds the in-memory trial queue.
	TrialQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of trial workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the experiment deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// Goal is the default phrase experiments evolve toward.
	Goal string `koanf:"goal"`

	// Generations is the default generation count per trial.
	Generations int `koanf:"generations"`

	// MaxGenerations caps the generation count any submission may request.
	MaxGenerations int `koanf:"max_generations"`

	// PopulationSize is the default number of individuals per generation.
	PopulationSize int `koanf:"population_size"`

	// Trials is the default number of independent trials per experiment.
	Trials int `koanf:"trials"`

	// Seed is the default base RNG seed; trial i runs with Seed+i.
	Seed int64 `koanf:"seed"`

	// CrossoverProb and MutationProb are the default variation rates.
	CrossoverProb float64 `koanf:"crossover_prob"`
	MutationProb  float64 `koanf:"mutation_prob"`

	// TournamentSize sets the selection tournament size.
	TournamentSize int `koanf:"tournament_size"`
}

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		TrialQueueSize:      10_000,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          50_000,
		MaxLeaderboardLimit: 100,
		Goal:                "SKYNET IS NOW ONLINE",
		Generations:         500,
		MaxGenerations:      10_000,
		PopulationSize:      300,
		Trials:              1,
		Seed:                4,
		CrossoverProb:       0.5,
		MutationProb:        0.2,
		TournamentSize:      3,
	}
	return c
}
