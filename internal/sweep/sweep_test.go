package sweep

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/snielsen221b/evotext/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func sweepConfig() *Config {
	return &Config{
		BaseURL:      "http://localhost:9080",
		Goal:         "HELLO",
		Generations:  []int{100, 500},
		Population:   300,
		Modes:        []string{"randomized", "uniform"},
		Trials:       5,
		Seed:         4,
		Workers:      4,
		Timeout:      time.Second,
		PollInterval: time.Millisecond,
	}
}

func TestGenerateMatrix(t *testing.T) {
	convey.Convey("Given a sweep configuration", t, func() {
		cfg := sweepConfig()

		convey.Convey("When the matrix is expanded", func() {
			requests := generateMatrix(cfg)

			convey.Convey("Then there is one request per cell", func() {
				convey.So(len(requests), convey.ShouldEqual, 4)
			})

			convey.Convey("Then every cell carries the shared settings", func() {
				for _, req := range requests {
					convey.So(req.Goal, convey.ShouldEqual, "HELLO")
					convey.So(req.PopulationSize, convey.ShouldEqual, 300)
					convey.So(req.Trials, convey.ShouldEqual, 5)
					convey.So(req.ExperimentID, convey.ShouldNotBeEmpty)
				}
			})

			convey.Convey("Then generation counts and modes cover the grid", func() {
				type cell struct {
					gens int
					mode string
				}
				seen := make(map[cell]bool)
				for _, req := range requests {
					seen[cell{req.Generations, req.InitMode}] = true
				}
				convey.So(seen[cell{100, "randomized"}], convey.ShouldBeTrue)
				convey.So(seen[cell{100, "uniform"}], convey.ShouldBeTrue)
				convey.So(seen[cell{500, "randomized"}], convey.ShouldBeTrue)
				convey.So(seen[cell{500, "uniform"}], convey.ShouldBeTrue)
			})

			convey.Convey("Then seeds are spaced so trial seeds never overlap", func() {
				seeds := make(map[int64]bool)
				for i, req := range requests {
					convey.So(req.Seed, convey.ShouldEqual, cfg.Seed+int64(i*seedStride))
					seeds[req.Seed] = true
				}
				convey.So(len(seeds), convey.ShouldEqual, len(requests))
			})

			convey.Convey("Then experiment ids are unique", func() {
				ids := make(map[string]bool)
				for _, req := range requests {
					ids[req.ExperimentID] = true
				}
				convey.So(len(ids), convey.ShouldEqual, len(requests))
			})
		})
	})
}

func completeStatus(id string, gens int, mode string, avg, std, lo, hi float64) ExperimentStatus {
	var s ExperimentStatus
	s.Experiment.ID = id
	s.Experiment.Goal = "HELLO"
	s.Experiment.Generations = gens
	s.Experiment.PopulationSize = 300
	s.Experiment.Mode = mode
	s.Experiment.Trials = 5
	s.Completed = 5
	s.Distances = DistanceStats{Count: 5, Avg: avg, Std: std, Min: lo, Max: hi}
	s.Status = "complete"
	s.Complete = true
	return s
}

func TestVerifyResults(t *testing.T) {
	convey.Convey("Given collected experiment summaries", t, func() {
		ctx := context.Background()
		cfg := sweepConfig()
		stats := &Stats{}

		convey.Convey("When every summary is consistent", func() {
			results := []ExperimentStatus{
				completeStatus("a", 100, "randomized", 3, 1, 2, 5),
				completeStatus("b", 100, "uniform", 4, 1, 3, 6),
			}

			convey.So(verifyResults(ctx, cfg, results, stats), convey.ShouldBeNil)
		})

		convey.Convey("When an experiment is incomplete", func() {
			bad := completeStatus("a", 100, "randomized", 3, 1, 2, 5)
			bad.Complete = false
			bad.Completed = 3

			err := verifyResults(ctx, cfg, []ExperimentStatus{bad}, stats)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "incomplete")
		})

		convey.Convey("When the trial count disagrees with the summary", func() {
			bad := completeStatus("a", 100, "randomized", 3, 1, 2, 5)
			bad.Distances.Count = 4

			err := verifyResults(ctx, cfg, []ExperimentStatus{bad}, stats)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the statistics are inconsistent", func() {
			bad := completeStatus("a", 100, "randomized", 1, 1, 2, 5)

			err := verifyResults(ctx, cfg, []ExperimentStatus{bad}, stats)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "inconsistent")
		})

		convey.Convey("When a distance falls outside the plausible range", func() {
			bad := completeStatus("a", 100, "randomized", 50, 1, 40, 60)

			err := verifyResults(ctx, cfg, []ExperimentStatus{bad}, stats)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "plausible range")
		})

		convey.Convey("When uniform beats randomized", func() {
			results := []ExperimentStatus{
				completeStatus("a", 100, "randomized", 5, 1, 4, 7),
				completeStatus("b", 100, "uniform", 3, 1, 2, 5),
			}

			convey.Convey("Then it is reported but not fatal", func() {
				convey.So(verifyResults(ctx, cfg, results, stats), convey.ShouldBeNil)
			})
		})
	})
}

func TestSaveResults(t *testing.T) {
	convey.Convey("Given sweep results to persist", t, func() {
		ctx := context.Background()

		convey.Convey("When results are saved to a file", func() {
			dir := t.TempDir()
			cfg := sweepConfig()
			cfg.OutputFile = filepath.Join(dir, "out", "results.json")

			results := []ExperimentStatus{
				completeStatus("a", 100, "randomized", 3, 1, 2, 5),
			}
			board := []Entry{{Rank: 1, RunID: "run-1", BestDistance: 2, BestText: "HELLO"}}

			convey.So(saveResults(ctx, cfg, results, board), convey.ShouldBeNil)

			convey.Convey("Then the artifact round-trips", func() {
				data, err := os.ReadFile(cfg.OutputFile)
				convey.So(err, convey.ShouldBeNil)

				var artifact struct {
					Results     []ExperimentStatus `json:"results"`
					Leaderboard []Entry            `json:"leaderboard"`
				}
				convey.So(json.Unmarshal(data, &artifact), convey.ShouldBeNil)
				convey.So(len(artifact.Results), convey.ShouldEqual, 1)
				convey.So(artifact.Results[0].Experiment.ID, convey.ShouldEqual, "a")
				convey.So(len(artifact.Leaderboard), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When there is nothing to save", func() {
			cfg := sweepConfig()
			convey.So(saveResults(ctx, cfg, nil, nil), convey.ShouldNotBeNil)
		})
	})
}
