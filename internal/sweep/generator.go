package sweep

import (
	"fmt"
	"time"
)

// Seed spacing between experiments so trial seeds never overlap across
// the matrix (an experiment with T trials uses seeds base..base+T-1).
const seedStride = 1000

// generateMatrix expands the sweep configuration into one experiment
// request per (generations, mode) combination. Experiment ids encode
// the cell so reruns of the same sweep invocation stay idempotent but
// separate invocations do not collide.
func generateMatrix(cfg *Config) []ExperimentRequest {
	stamp := time.Now().Format("20060102-150405")
	requests := make([]ExperimentRequest, 0, len(cfg.Generations)*len(cfg.Modes))

	cell := 0
	for _, gens := range cfg.Generations {
		for _, mode := range cfg.Modes {
			requests = append(requests, ExperimentRequest{
				ExperimentID:   fmt.Sprintf("sweep-%s-g%d-%s", stamp, gens, mode),
				Goal:           cfg.Goal,
				Generations:    gens,
				PopulationSize: cfg.Population,
				InitMode:       mode,
				Trials:         cfg.Trials,
				Seed:           cfg.Seed + int64(cell*seedStride),
			})
			cell++
		}
	}
	return requests
}
