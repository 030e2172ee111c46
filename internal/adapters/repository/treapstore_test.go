package repository_test

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/snielsen221b/evotext/internal/adapters/repository"
	"github.com/snielsen221b/evotext/internal/domain/model"
)

func run(id, experimentID string, trialIndex, distance int) model.Run {
	return model.Run{
		Spec: model.TrialSpec{
			RunID:        id,
			ExperimentID: experimentID,
			TrialIndex:   trialIndex,
			Goal:         "HELLO",
			Generations:  100,
			Mode:         model.InitRandomized,
		},
		BestText:     "HELLO",
		BestDistance: distance,
	}
}

func seededStore(ctx context.Context) *repository.TreapStore {
	return repository.NewTreapStore(ctx, repository.WithPriorityRand(rand.New(rand.NewSource(1))))
}

func TestTreapStoreRecord(t *testing.T) {
	convey.Convey("Given an empty store", t, func() {
		ctx := context.Background()
		store := seededStore(ctx)

		convey.Convey("When a run is recorded", func() {
			ok, err := store.Record(ctx, run("run-1", "exp-1", 0, 5))

			convey.Convey("Then it is stored and counted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(store.Count(ctx), convey.ShouldEqual, 1)
			})

			convey.Convey("And recording the same run id again is rejected", func() {
				again, err := store.Record(ctx, run("run-1", "exp-1", 0, 2))
				convey.So(err, convey.ShouldBeNil)
				convey.So(again, convey.ShouldBeFalse)
				convey.So(store.Count(ctx), convey.ShouldEqual, 1)

				// The original result is immutable.
				got, err := store.Get(ctx, "run-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.BestDistance, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When an unknown run is fetched", func() {
			_, err := store.Get(ctx, "missing")

			convey.Convey("Then it reports not found", func() {
				convey.So(err, convey.ShouldWrap, repository.ErrNotFound)
			})
		})
	})
}

func TestTreapStoreRanking(t *testing.T) {
	convey.Convey("Given a store with ranked runs", t, func() {
		ctx := context.Background()
		store := seededStore(ctx)

		_, _ = store.Record(ctx, run("run-c", "exp-1", 0, 3))
		_, _ = store.Record(ctx, run("run-a", "exp-1", 1, 1))
		_, _ = store.Record(ctx, run("run-b", "exp-2", 0, 2))
		_, _ = store.Record(ctx, run("run-d", "exp-2", 1, 3))

		convey.Convey("When the leaderboard is fetched", func() {
			entries, err := store.TopN(ctx, 10)

			convey.Convey("Then entries are ordered by distance, ties by run id", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(entries), convey.ShouldEqual, 4)

				ids := make([]string, len(entries))
				for i, e := range entries {
					ids[i] = e.RunID
					convey.So(e.Rank, convey.ShouldEqual, i+1)
				}
				convey.So(ids, convey.ShouldResemble, []string{"run-a", "run-b", "run-c", "run-d"})
			})
		})

		convey.Convey("When fewer entries are requested than stored", func() {
			entries, err := store.TopN(ctx, 2)

			convey.So(err, convey.ShouldBeNil)
			convey.So(len(entries), convey.ShouldEqual, 2)
			convey.So(entries[0].RunID, convey.ShouldEqual, "run-a")
			convey.So(entries[1].RunID, convey.ShouldEqual, "run-b")
		})

		convey.Convey("When a non-positive limit is requested", func() {
			_, err := store.TopN(ctx, 0)
			convey.So(err, convey.ShouldWrap, repository.ErrInvalidLimit)
		})

		convey.Convey("When individual ranks are queried", func() {
			for i, id := range []string{"run-a", "run-b", "run-c", "run-d"} {
				entry, err := store.Rank(ctx, id)
				convey.So(err, convey.ShouldBeNil)
				convey.So(entry.Rank, convey.ShouldEqual, i+1)
				convey.So(entry.RunID, convey.ShouldEqual, id)
			}
		})

		convey.Convey("When the rank of an unknown run is queried", func() {
			_, err := store.Rank(ctx, "missing")
			convey.So(err, convey.ShouldWrap, repository.ErrNotFound)
		})
	})
}

func TestTreapStoreByExperiment(t *testing.T) {
	convey.Convey("Given runs across experiments", t, func() {
		ctx := context.Background()
		store := seededStore(ctx)

		// Record out of trial order.
		_, _ = store.Record(ctx, run("run-2", "exp-1", 2, 7))
		_, _ = store.Record(ctx, run("run-0", "exp-1", 0, 4))
		_, _ = store.Record(ctx, run("run-1", "exp-1", 1, 9))
		_, _ = store.Record(ctx, run("other", "exp-2", 0, 1))

		convey.Convey("When an experiment's runs are listed", func() {
			runs, err := store.ByExperiment(ctx, "exp-1")

			convey.Convey("Then they come back ordered by trial index", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(runs), convey.ShouldEqual, 3)
				convey.So(runs[0].Spec.TrialIndex, convey.ShouldEqual, 0)
				convey.So(runs[1].Spec.TrialIndex, convey.ShouldEqual, 1)
				convey.So(runs[2].Spec.TrialIndex, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When an unknown experiment is listed", func() {
			runs, err := store.ByExperiment(ctx, "nope")

			convey.Convey("Then the result is empty, not an error", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(runs, convey.ShouldBeEmpty)
			})
		})
	})
}

func TestTreapStoreLargeOrdering(t *testing.T) {
	convey.Convey("Given many runs with random distances", t, func() {
		ctx := context.Background()
		store := seededStore(ctx)
		rng := rand.New(rand.NewSource(99))

		const total = 1000
		distances := make(map[string]int, total)
		for i := 0; i < total; i++ {
			id := fmt.Sprintf("run-%04d", i)
			d := rng.Intn(50)
			distances[id] = d
			ok, err := store.Record(ctx, run(id, "exp-bulk", i, d))
			convey.So(err, convey.ShouldBeNil)
			convey.So(ok, convey.ShouldBeTrue)
		}

		convey.Convey("When the full ranking is walked", func() {
			entries, err := store.TopN(ctx, total)

			convey.Convey("Then it matches a reference sort", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(entries), convey.ShouldEqual, total)

				ids := make([]string, 0, total)
				for id := range distances {
					ids = append(ids, id)
				}
				sort.Slice(ids, func(i, j int) bool {
					if distances[ids[i]] != distances[ids[j]] {
						return distances[ids[i]] < distances[ids[j]]
					}
					return ids[i] < ids[j]
				})

				for i, e := range entries {
					convey.So(e.RunID, convey.ShouldEqual, ids[i])
					convey.So(e.Rank, convey.ShouldEqual, i+1)
				}
			})
		})

		convey.Convey("When spot ranks are queried", func() {
			entries, _ := store.TopN(ctx, total)
			for _, i := range []int{0, 1, 250, 500, 999} {
				entry, err := store.Rank(ctx, entries[i].RunID)
				convey.So(err, convey.ShouldBeNil)
				convey.So(entry.Rank, convey.ShouldEqual, i+1)
			}
		})
	})
}

func TestTreapStoreConcurrency(t *testing.T) {
	convey.Convey("Given concurrent writers and readers", t, func() {
		ctx := context.Background()
		store := seededStore(ctx)

		const writers = 8
		const perWriter = 50

		var wg sync.WaitGroup
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < perWriter; i++ {
					id := fmt.Sprintf("run-%d-%d", w, i)
					_, _ = store.Record(ctx, run(id, "exp-conc", i, (w+i)%20))
					_, _ = store.TopN(ctx, 5)
				}
			}(w)
		}
		wg.Wait()

		convey.Convey("Then every run is recorded exactly once", func() {
			convey.So(store.Count(ctx), convey.ShouldEqual, writers*perWriter)

			entries, err := store.TopN(ctx, writers*perWriter)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(entries), convey.ShouldEqual, writers*perWriter)

			for i := 1; i < len(entries); i++ {
				convey.So(entries[i].BestDistance, convey.ShouldBeGreaterThanOrEqualTo, entries[i-1].BestDistance)
			}
		})
	})
}
