package fitness_test

import (
	"context"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/snielsen221b/evotext/internal/domain/fitness"
)

func TestDistance(t *testing.T) {
	convey.Convey("Given the Levenshtein distance", t, func() {
		cases := []struct {
			a, b string
			want int
		}{
			{"", "", 0},
			{"", "ABC", 3},
			{"ABC", "", 3},
			{"ABC", "ABC", 0},
			{"KITTEN", "SITTING", 3},
			{"CATCH", "MATCH", 1},
			{"FLAW", "LAWN", 2},
			{"SKYNET IS NOW ONLINE", "SKYNET IS NOW ONLINE", 0},
			{"SKYNET IS NOW ONLINE", "SKYNET WAS NOW ONLINE", 2},
		}

		convey.Convey("Then known pairs should score their edit distance", func() {
			for _, c := range cases {
				got := fitness.Distance([]rune(c.a), []rune(c.b))
				convey.So(got, convey.ShouldEqual, c.want)
			}
		})

		convey.Convey("Then the distance should be symmetric", func() {
			for _, c := range cases {
				forward := fitness.Distance([]rune(c.a), []rune(c.b))
				backward := fitness.Distance([]rune(c.b), []rune(c.a))
				convey.So(forward, convey.ShouldEqual, backward)
			}
		})

		convey.Convey("Then the distance is bounded by the longer string", func() {
			for _, c := range cases {
				got := fitness.Distance([]rune(c.a), []rune(c.b))
				longer := len(c.a)
				if len(c.b) > longer {
					longer = len(c.b)
				}
				convey.So(got, convey.ShouldBeLessThanOrEqualTo, longer)
			}
		})
	})
}

func TestLevenshteinEvaluator(t *testing.T) {
	convey.Convey("Given an evaluator with a goal", t, func() {
		eval := fitness.NewLevenshtein("SKYNET IS NOW ONLINE")
		ctx := context.Background()

		convey.Convey("Then it should expose its goal", func() {
			convey.So(eval.Goal(), convey.ShouldEqual, "SKYNET IS NOW ONLINE")
		})

		convey.Convey("When the goal itself is evaluated", func() {
			d, err := eval.Evaluate(ctx, "SKYNET IS NOW ONLINE")
			convey.So(err, convey.ShouldBeNil)
			convey.So(d, convey.ShouldEqual, 0)
		})

		convey.Convey("When a near miss is evaluated", func() {
			d, err := eval.Evaluate(ctx, "SKYNET IS NOW ONLIN")
			convey.So(err, convey.ShouldBeNil)
			convey.So(d, convey.ShouldEqual, 1)
		})

		convey.Convey("When the empty string is evaluated", func() {
			d, err := eval.Evaluate(ctx, "")
			convey.So(err, convey.ShouldBeNil)
			convey.So(d, convey.ShouldEqual, len("SKYNET IS NOW ONLINE"))
		})

		convey.Convey("When the context is canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := eval.Evaluate(canceled, "ANYTHING")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
