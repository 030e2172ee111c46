package sweep

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/snielsen221b/evotext/pkg/logger"
)

// Run executes the complete sweep.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting evotext sweep",
		logger.String("baseURL", cfg.BaseURL),
		logger.Any("generations", cfg.Generations),
		logger.Int("population", cfg.Population),
		logger.Any("modes", cfg.Modes),
		logger.Int("trials", cfg.Trials),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, cfg); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Expand the sweep matrix
	requests := generateMatrix(cfg)
	stats.ExperimentsPlanned = len(requests)

	// Step 3: Submit experiments concurrently
	if err := submitExperiments(ctx, cfg, requests, stats); err != nil {
		return fmt.Errorf("experiment submission failed: %w", err)
	}

	// Step 4: Poll until every experiment completes
	results, err := awaitCompletion(ctx, cfg, requests, stats)
	if err != nil {
		return fmt.Errorf("waiting for completion failed: %w", err)
	}

	// Step 5: Fetch the leaderboard for context
	board, err := fetchLeaderboard(ctx, cfg)
	if err != nil {
		logger.Get().Warn(ctx, "leaderboard fetch failed", logger.Error(err))
	}

	// Step 6: Verify results
	if err := verifyResults(ctx, cfg, results, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 7: Render the results table and save artifacts
	renderTable(results)
	if err := saveResults(ctx, cfg, results, board); err != nil {
		logger.Get().Warn(ctx, "failed to save results", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "sweep completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, cfg *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(cfg.Timeout)
	resp, err := client.Get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// submitExperiments posts the whole matrix with bounded concurrency.
func submitExperiments(ctx context.Context, cfg *Config, requests []ExperimentRequest, stats *Stats) error {
	logger.Get().Info(ctx, "submitting experiments",
		logger.Int("count", len(requests)),
		logger.Int("workers", cfg.Workers))

	client := newHTTPClient(cfg.Timeout)
	url := cfg.BaseURL + "/experiments"

	var submitted, duplicate, failed int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, req := range requests {
		g.Go(func() error {
			resp, err := client.Post(gctx, url, req)
			if err != nil {
				atomic.AddInt64(&failed, 1)
				return fmt.Errorf("submit %s: %w", req.ExperimentID, err)
			}
			defer func() { _ = resp.Body.Close() }()
			_, _ = io.Copy(io.Discard, resp.Body)

			switch resp.StatusCode {
			case http.StatusAccepted:
				atomic.AddInt64(&submitted, 1)
			case http.StatusOK:
				atomic.AddInt64(&duplicate, 1)
			default:
				atomic.AddInt64(&failed, 1)
				return fmt.Errorf("submit %s: unexpected status %d", req.ExperimentID, resp.StatusCode)
			}
			if cfg.Verbose {
				logger.Get().Info(gctx, "experiment submitted",
					logger.String("experimentID", req.ExperimentID),
					logger.Int("status", resp.StatusCode))
			}
			return nil
		})
	}
	err := g.Wait()

	stats.ExperimentsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.ExperimentsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.ExperimentsFailed = int(atomic.LoadInt64(&failed))

	logger.Get().Info(ctx, "experiment submission finished",
		logger.Int("submitted", stats.ExperimentsSubmitted),
		logger.Int("duplicate", stats.ExperimentsDuplicate),
		logger.Int("failed", stats.ExperimentsFailed))

	return err
}

// awaitCompletion polls every experiment until it reports complete and
// returns the final statuses in matrix order.
func awaitCompletion(ctx context.Context, cfg *Config, requests []ExperimentRequest, stats *Stats) ([]ExperimentStatus, error) {
	logger.Get().Info(ctx, "waiting for experiments to complete")

	client := newHTTPClient(cfg.Timeout)
	results := make([]ExperimentStatus, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, req := range requests {
		g.Go(func() error {
			url := cfg.BaseURL + "/experiments/" + req.ExperimentID
			for {
				var status ExperimentStatus
				if _, err := client.getJSON(gctx, url, &status); err != nil {
					return fmt.Errorf("poll %s: %w", req.ExperimentID, err)
				}
				if status.Complete {
					results[i] = status
					if cfg.Verbose {
						logger.Get().Info(gctx, "experiment complete",
							logger.String("experimentID", req.ExperimentID),
							logger.Float64("avg", status.Distances.Avg))
					}
					return nil
				}

				select {
				case <-gctx.Done():
					return fmt.Errorf("poll %s: %w", req.ExperimentID, gctx.Err())
				case <-time.After(cfg.PollInterval):
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, status := range results {
		stats.ExperimentsComplete++
		stats.TrialsCompleted += status.Completed
	}
	return results, nil
}

// fetchLeaderboard retrieves the current top runs.
func fetchLeaderboard(ctx context.Context, cfg *Config) ([]Entry, error) {
	client := newHTTPClient(cfg.Timeout)
	var board []Entry
	if _, err := client.getJSON(ctx, cfg.BaseURL+"/leaderboard?limit=20", &board); err != nil {
		return nil, err
	}
	return board, nil
}

// displayFinalStats logs the final sweep statistics.
func displayFinalStats(stats *Stats) {
	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("experimentsPlanned", stats.ExperimentsPlanned),
		logger.Int("experimentsSubmitted", stats.ExperimentsSubmitted),
		logger.Int("experimentsDuplicate", stats.ExperimentsDuplicate),
		logger.Int("experimentsFailed", stats.ExperimentsFailed),
		logger.Int("experimentsComplete", stats.ExperimentsComplete),
		logger.Int("trialsCompleted", stats.TrialsCompleted),
		logger.String("duration", stats.Duration.String()))
}
