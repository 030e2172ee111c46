package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/snielsen221b/evotext/internal/domain/dedupe"
)

func TestInMemoryDeduper(t *testing.T) {
	convey.Convey("Given an in-memory deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		convey.Convey("When an id is recorded for the first time", func() {
			seen := d.SeenAndRecord(ctx, "exp-1")

			convey.Convey("Then it should not have been seen", func() {
				convey.So(seen, convey.ShouldBeFalse)
				convey.So(d.Size(), convey.ShouldEqual, 1)
			})

			convey.Convey("And recording it again should report a duplicate", func() {
				convey.So(d.SeenAndRecord(ctx, "exp-1"), convey.ShouldBeTrue)
				convey.So(d.Size(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When an id is unrecorded", func() {
			d.SeenAndRecord(ctx, "exp-1")
			d.Unrecord(ctx, "exp-1")

			convey.Convey("Then it can be recorded again", func() {
				convey.So(d.Size(), convey.ShouldEqual, 0)
				convey.So(d.SeenAndRecord(ctx, "exp-1"), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When an unknown id is unrecorded", func() {
			d.Unrecord(ctx, "never-seen")

			convey.Convey("Then nothing should change", func() {
				convey.So(d.Size(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When distinct ids are recorded", func() {
			for i := 0; i < 100; i++ {
				convey.So(d.SeenAndRecord(ctx, fmt.Sprintf("exp-%d", i)), convey.ShouldBeFalse)
			}

			convey.Convey("Then the size should track them all", func() {
				convey.So(d.Size(), convey.ShouldEqual, 100)
			})
		})
	})
}

func TestInMemoryDeduperEviction(t *testing.T) {
	convey.Convey("Given a deduper bounded to three entries", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		convey.Convey("When the bound is exceeded", func() {
			d.SeenAndRecord(ctx, "a")
			d.SeenAndRecord(ctx, "b")
			d.SeenAndRecord(ctx, "c")
			d.SeenAndRecord(ctx, "d")

			convey.Convey("Then the oldest entry is evicted", func() {
				convey.So(d.Size(), convey.ShouldEqual, 3)
				convey.So(d.SeenAndRecord(ctx, "d"), convey.ShouldBeTrue)
				convey.So(d.SeenAndRecord(ctx, "c"), convey.ShouldBeTrue)
				// "a" was evicted, so it records fresh, which in turn
				// evicts "b".
				convey.So(d.SeenAndRecord(ctx, "a"), convey.ShouldBeFalse)
				convey.So(d.Size(), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When an unrecorded id left a dead queue slot", func() {
			d.SeenAndRecord(ctx, "a")
			d.SeenAndRecord(ctx, "b")
			d.Unrecord(ctx, "a")
			d.SeenAndRecord(ctx, "c")
			d.SeenAndRecord(ctx, "d")
			// Bound reached: the dead "a" slot is skipped and "b" evicts.
			d.SeenAndRecord(ctx, "e")

			convey.Convey("Then eviction skips the dead slot", func() {
				convey.So(d.Size(), convey.ShouldEqual, 3)
				convey.So(d.SeenAndRecord(ctx, "c"), convey.ShouldBeTrue)
				convey.So(d.SeenAndRecord(ctx, "d"), convey.ShouldBeTrue)
				convey.So(d.SeenAndRecord(ctx, "e"), convey.ShouldBeTrue)
			})
		})
	})
}

func TestInMemoryDeduperConcurrency(t *testing.T) {
	convey.Convey("Given concurrent recorders", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		convey.Convey("When many goroutines race on the same id", func() {
			const goroutines = 32

			var wg sync.WaitGroup
			var firsts int64
			var mu sync.Mutex

			for i := 0; i < goroutines; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if !d.SeenAndRecord(ctx, "contended") {
						mu.Lock()
						firsts++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			convey.Convey("Then exactly one should win", func() {
				convey.So(firsts, convey.ShouldEqual, 1)
				convey.So(d.Size(), convey.ShouldEqual, 1)
			})
		})
	})
}
