package sweep

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/snielsen221b/evotext/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	resultsPermission   = 0600
)

// renderTable prints the sweep results as an aligned table, one row per
// experiment: the cross-trial distance statistics for each cell of the
// (generations, init mode) matrix.
func renderTable(results []ExperimentStatus) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GENERATIONS\tPOPULATION\tINIT MODE\tTRIALS\tAVG\tSTD\tMIN\tMAX")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%.7g\t%.7g\t%g\t%g\n",
			r.Experiment.Generations,
			r.Experiment.PopulationSize,
			r.Experiment.Mode,
			r.Completed,
			r.Distances.Avg,
			r.Distances.Std,
			r.Distances.Min,
			r.Distances.Max,
		)
	}
	_ = w.Flush()
}

// sweepArtifact is the JSON document saved after a sweep.
type sweepArtifact struct {
	SavedAt     time.Time          `json:"saved_at"`
	Results     []ExperimentStatus `json:"results"`
	Leaderboard []Entry            `json:"leaderboard,omitempty"`
}

// saveResults writes the collected summaries and leaderboard to a file.
func saveResults(ctx context.Context, cfg *Config, results []ExperimentStatus, board []Entry) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to save")
	}

	filename := cfg.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "sweep_results_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(sweepArtifact{
		SavedAt:     time.Now(),
		Results:     results,
		Leaderboard: board,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(filename, data, resultsPermission); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	logger.Get().Info(ctx, "results saved to file", logger.String("filename", filename))
	return nil
}
