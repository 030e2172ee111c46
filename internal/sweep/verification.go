package sweep

import (
	"context"
	"fmt"

	"github.com/snielsen221b/evotext/pkg/logger"
)

// Extra characters an individual may carry beyond the goal length at
// initialization, bounding the worst plausible distance.
const maxInitialTailLength = 30

// verifyResults sanity-checks every experiment summary: completeness,
// internally consistent statistics, and distances within the plausible
// range for the goal. Inversions between init modes at the same
// generation count are logged but never fatal.
func verifyResults(ctx context.Context, cfg *Config, results []ExperimentStatus, stats *Stats) error {
	logger.Get().Info(ctx, "verifying results", logger.Int("count", len(results)))

	for _, r := range results {
		id := r.Experiment.ID

		if !r.Complete {
			return fmt.Errorf("experiment %s reported incomplete: %d/%d trials",
				id, r.Completed, r.Experiment.Trials)
		}
		if r.Completed != r.Experiment.Trials {
			return fmt.Errorf("experiment %s: completed %d trials, expected %d",
				id, r.Completed, r.Experiment.Trials)
		}

		d := r.Distances
		if d.Count != r.Completed {
			return fmt.Errorf("experiment %s: summary counts %d distances, expected %d",
				id, d.Count, r.Completed)
		}
		if d.Min > d.Avg || d.Avg > d.Max {
			return fmt.Errorf("experiment %s: inconsistent statistics: min=%g avg=%g max=%g",
				id, d.Min, d.Avg, d.Max)
		}
		if d.Std < 0 {
			return fmt.Errorf("experiment %s: negative standard deviation %g", id, d.Std)
		}

		bound := float64(len(r.Experiment.Goal) + maxInitialTailLength)
		if d.Min < 0 || d.Max > bound {
			return fmt.Errorf("experiment %s: distances [%g, %g] outside plausible range [0, %g]",
				id, d.Min, d.Max, bound)
		}
	}

	compareInitModes(ctx, results)

	logger.Get().Info(ctx, "all results verified")
	return nil
}

// compareInitModes pairs experiments that share a generation count and
// flags any cell where a uniform initial population reached a better
// average distance than a randomized one. Seed clones strip the initial
// diversity that variation has to rebuild, so the expectation is that
// randomized wins; the reverse is worth a look, not an error.
func compareInitModes(ctx context.Context, results []ExperimentStatus) {
	randomized := make(map[int]ExperimentStatus)
	uniform := make(map[int]ExperimentStatus)
	for _, r := range results {
		switch r.Experiment.Mode {
		case "randomized":
			randomized[r.Experiment.Generations] = r
		case "uniform":
			uniform[r.Experiment.Generations] = r
		}
	}

	for gens, u := range uniform {
		r, ok := randomized[gens]
		if !ok {
			continue
		}
		if u.Distances.Avg < r.Distances.Avg {
			logger.Get().Warn(ctx, "uniform init outperformed randomized init",
				logger.Int("generations", gens),
				logger.Float64("uniformAvg", u.Distances.Avg),
				logger.Float64("randomizedAvg", r.Distances.Avg))
		} else if notableGap(u, r) {
			logger.Get().Info(ctx, "randomized init ahead as expected",
				logger.Int("generations", gens),
				logger.Float64("randomizedAvg", r.Distances.Avg),
				logger.Float64("uniformAvg", u.Distances.Avg))
		}
	}
}

// notableGap reports whether the randomized/uniform gap is worth
// logging at info level.
func notableGap(u, r ExperimentStatus) bool {
	return u.Distances.Avg-r.Distances.Avg >= 1
}
