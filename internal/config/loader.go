package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/snielsen221b/evotext/internal/domain/genome"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if EVOTEXT_CONFIG is set
//  3. env (prefix EVOTEXT_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("EVOTEXT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: EVOTEXT_ADDR, EVOTEXT_QUEUE_SIZE, ...
	// Map env keys like EVOTEXT_QUEUE_SIZE -> queue_size (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("EVOTEXT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "evotext_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the service cannot run with.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TrialQueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.Generations < 1 || c.Generations > c.MaxGenerations:
		return fmt.Errorf("%w: generations must be in [1, %d]", ErrInvalidConfig, c.MaxGenerations)
	case c.PopulationSize < 2:
		return fmt.Errorf("%w: population_size must be at least 2", ErrInvalidConfig)
	case c.CrossoverProb <= 0 || c.CrossoverProb > 1:
		return fmt.Errorf("%w: crossover_prob must be in (0, 1]", ErrInvalidConfig)
	case c.MutationProb <= 0 || c.MutationProb > 1:
		return fmt.Errorf("%w: mutation_prob must be in (0, 1]", ErrInvalidConfig)
	case c.TournamentSize < 2:
		return fmt.Errorf("%w: tournament_size must be at least 2", ErrInvalidConfig)
	}
	if err := genome.ValidateGoal(c.Goal); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
