package queue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/snielsen221b/evotext/internal/adapters/mq/queue"
)

func trial(id string) queue.Trial {
	return queue.Trial{
		RunID:        id,
		ExperimentID: "exp-1",
		Goal:         "HELLO",
	}
}

func TestInMemoryQueue(t *testing.T) {
	convey.Convey("Given an in-memory trial queue", t, func() {
		ctx := context.Background()

		convey.Convey("When trials are enqueued and dequeued", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(10))
			defer func() { _ = q.Close() }()

			convey.So(q.Enqueue(ctx, trial("run-1")), convey.ShouldBeTrue)
			convey.So(q.Enqueue(ctx, trial("run-2")), convey.ShouldBeTrue)
			convey.So(q.Len(ctx), convey.ShouldEqual, 2)

			out := q.Dequeue(ctx)

			convey.Convey("Then trials come out in order", func() {
				first := <-out
				second := <-out
				convey.So(first.RunID, convey.ShouldEqual, "run-1")
				convey.So(second.RunID, convey.ShouldEqual, "run-2")
			})
		})

		convey.Convey("When the queue is full", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(2))
			defer func() { _ = q.Close() }()

			convey.So(q.Enqueue(ctx, trial("run-1")), convey.ShouldBeTrue)
			convey.So(q.Enqueue(ctx, trial("run-2")), convey.ShouldBeTrue)

			convey.Convey("Then further enqueues are rejected without blocking", func() {
				convey.So(q.Enqueue(ctx, trial("run-3")), convey.ShouldBeFalse)
				convey.So(q.Len(ctx), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the queue is closed", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(2))
			convey.So(q.Enqueue(ctx, trial("run-1")), convey.ShouldBeTrue)
			convey.So(q.Close(), convey.ShouldBeNil)

			convey.Convey("Then it reports closed and rejects enqueues", func() {
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				convey.So(q.Enqueue(ctx, trial("run-2")), convey.ShouldBeFalse)
			})

			convey.Convey("Then buffered trials drain and the channel closes", func() {
				out := q.Dequeue(ctx)

				got, ok := <-out
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(got.RunID, convey.ShouldEqual, "run-1")

				_, ok = <-out
				convey.So(ok, convey.ShouldBeFalse)
			})

			convey.Convey("Then closing again is a no-op", func() {
				convey.So(q.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the consumer context is canceled", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(10))

			dequeueCtx, cancel := context.WithCancel(ctx)
			out := q.Dequeue(dequeueCtx)

			convey.So(q.Enqueue(ctx, trial("run-1")), convey.ShouldBeTrue)
			cancel()
			convey.So(q.Close(), convey.ShouldBeNil)

			convey.Convey("Then the dequeue channel terminates", func() {
				deadline := time.After(time.Second)
				for {
					select {
					case _, ok := <-out:
						if !ok {
							return
						}
					case <-deadline:
						t.Fatal("dequeue channel did not terminate")
					}
				}
			})
		})

		convey.Convey("When producers and a consumer run concurrently", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(100))

			const total = 100
			go func() {
				for i := 0; i < total; i++ {
					q.Enqueue(ctx, trial(fmt.Sprintf("run-%d", i)))
				}
				_ = q.Close()
			}()

			received := 0
			for range q.Dequeue(ctx) {
				received++
			}

			convey.Convey("Then every trial is delivered exactly once", func() {
				convey.So(received, convey.ShouldEqual, total)
			})
		})
	})
}
