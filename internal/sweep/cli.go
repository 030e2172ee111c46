package sweep

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/snielsen221b/evotext/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "sweep_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the sweep tool.
func ShowHelp() {
	os.Stdout.WriteString(`Evotext Sweep Tool
==================

Runs a matrix of string-evolution experiments against a running evotext
service and prints the cross-trial distance statistics as a table.

Usage:
  go run cmd/sweep/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -goal string
        Goal phrase; empty uses the service default
  -gens string
        Comma-separated generation counts to sweep (default "100,200,300,400,500")
  -pop int
        Population size for every experiment (default 300)
  -modes string
        Comma-separated init modes to sweep (default "randomized,uniform")
  -trials int
        Trials per experiment (default 5)
  -seed int
        Base seed; each matrix cell offsets from it (default 4)
  -workers int
        Number of concurrent submissions and polls (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -poll duration
        Delay between completion polls (default 2s)
  -output string
        Output file for collected summaries (default: sweep_results_TIMESTAMP.json)
  -log string
        Log file for sweep output (default: sweep_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Sweep with default settings
  go run cmd/sweep/main.go

  # Sweep a single generation count with more trials
  go run cmd/sweep/main.go -gens 500 -trials 10

  # Sweep a custom goal against a remote service
  go run cmd/sweep/main.go -url http://evotext:9080 -goal "HELLO WORLD"

  # Sweep with verbose output and a custom log file
  go run cmd/sweep/main.go -verbose -log my_sweep.log
`)
}
