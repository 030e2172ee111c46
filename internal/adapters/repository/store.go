// Package repository defines the run ranking store interface and errors.
package repository

import (
	"context"

	"github.com/snielsen221b/evotext/internal/domain/model"
)

// Entry represents one ranked run. Rank 1 is the run whose best
// individual got closest to the goal.
type Entry struct {
	Rank         int
	RunID        string
	ExperimentID string
	BestDistance int
	BestText     string
	Generations  int
	InitMode     string
}

// Store provides read/write access to completed runs and their ranking.
type Store interface {
	// Record stores a completed run. Returns false if the run id was
	// already recorded; runs are immutable once stored.
	Record(ctx context.Context, run model.Run) (bool, error)

	// Get returns a run by id. Returns ErrNotFound if unknown.
	Get(ctx context.Context, runID string) (model.Run, error)

	// ByExperiment returns all recorded runs of an experiment, ordered
	// by trial index.
	ByExperiment(ctx context.Context, experimentID string) ([]model.Run, error)

	// Rank returns the current rank entry for a run.
	// Returns ErrNotFound if the run is unknown.
	Rank(ctx context.Context, runID string) (Entry, error)

	// TopN returns the top-N entries ordered by best distance ascending.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of runs recorded.
	Count(ctx context.Context) int
}
