package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/snielsen221b/evotext/internal/sweep"
)

// Default configuration constants.
const (
	defaultGenerations  = "100,200,300,400,500"
	defaultPopulation   = 300
	defaultModes        = "randomized,uniform"
	defaultTrials       = 5
	defaultSeed         = 4
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 2 * time.Second
	defaultSweepTimeout = 30 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		goal         = flag.String("goal", "", "Goal phrase (default: service default)")
		generations  = flag.String("gens", defaultGenerations, "Comma-separated generation counts to sweep")
		population   = flag.Int("pop", defaultPopulation, "Population size for every experiment")
		modes        = flag.String("modes", defaultModes, "Comma-separated init modes to sweep")
		trials       = flag.Int("trials", defaultTrials, "Trials per experiment")
		seed         = flag.Int64("seed", defaultSeed, "Base seed; each matrix cell offsets from it")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submissions and polls")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		pollInterval = flag.Duration("poll", defaultPollInterval, "Delay between completion polls")
		outputFile   = flag.String("output", "", "Output file for collected summaries (default: sweep_results_TIMESTAMP.json)")
		logFile      = flag.String("log", "", "Log file for sweep output (default: sweep_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		sweep.ShowHelp()
		return
	}

	gens, err := parseInts(*generations)
	if err != nil || len(gens) == 0 {
		os.Stderr.WriteString("Invalid -gens value: " + *generations + "\n")
		os.Exit(1)
	}

	// Setup logging
	if err := sweep.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultSweepTimeout)
	defer cancel()

	// Create sweep configuration
	config := &sweep.Config{
		BaseURL:      *baseURL,
		Goal:         *goal,
		Generations:  gens,
		Population:   *population,
		Modes:        splitList(*modes),
		Trials:       *trials,
		Seed:         *seed,
		Workers:      *workers,
		Timeout:      *timeout,
		PollInterval: *pollInterval,
		OutputFile:   *outputFile,
		LogFile:      *logFile,
		Verbose:      *verbose,
	}

	// Run the sweep
	if err := sweep.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Sweep failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// parseInts parses a comma-separated list of positive integers.
func parseInts(s string) ([]int, error) {
	parts := splitList(s)
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// splitList splits a comma-separated list, trimming whitespace and
// dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
