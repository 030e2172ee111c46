package stats_test

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/snielsen221b/evotext/internal/domain/stats"
)

const tolerance = 1e-9

func TestSummarize(t *testing.T) {
	convey.Convey("Given sample summarization", t, func() {
		convey.Convey("When the sample is empty", func() {
			s := stats.Summarize(nil)

			convey.Convey("Then every field should be zero", func() {
				convey.So(s.Count, convey.ShouldEqual, 0)
				convey.So(s.Avg, convey.ShouldEqual, 0)
				convey.So(s.Std, convey.ShouldEqual, 0)
				convey.So(s.Min, convey.ShouldEqual, 0)
				convey.So(s.Max, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the sample has one value", func() {
			s := stats.Summarize([]float64{7})

			convey.Convey("Then avg, min and max collapse to it and std is zero", func() {
				convey.So(s.Count, convey.ShouldEqual, 1)
				convey.So(s.Avg, convey.ShouldEqual, 7)
				convey.So(s.Std, convey.ShouldEqual, 0)
				convey.So(s.Min, convey.ShouldEqual, 7)
				convey.So(s.Max, convey.ShouldEqual, 7)
			})
		})

		convey.Convey("When the sample is uniform", func() {
			s := stats.Summarize([]float64{3, 3, 3, 3})

			convey.Convey("Then the spread should be zero", func() {
				convey.So(s.Std, convey.ShouldEqual, 0)
				convey.So(s.Min, convey.ShouldEqual, 3)
				convey.So(s.Max, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the sample is {2, 4, 4, 4, 5, 5, 7, 9}", func() {
			s := stats.Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})

			convey.Convey("Then the population standard deviation should be 2", func() {
				convey.So(s.Count, convey.ShouldEqual, 8)
				convey.So(s.Avg, convey.ShouldAlmostEqual, 5, tolerance)
				convey.So(s.Std, convey.ShouldAlmostEqual, 2, tolerance)
				convey.So(s.Min, convey.ShouldEqual, 2)
				convey.So(s.Max, convey.ShouldEqual, 9)
			})
		})

		convey.Convey("When the sample contains negatives", func() {
			s := stats.Summarize([]float64{-1, 1})

			convey.Convey("Then avg is zero and std is one", func() {
				convey.So(s.Avg, convey.ShouldAlmostEqual, 0, tolerance)
				convey.So(s.Std, convey.ShouldAlmostEqual, 1, tolerance)
				convey.So(s.Min, convey.ShouldEqual, -1)
				convey.So(s.Max, convey.ShouldEqual, 1)
			})
		})
	})
}

func TestSummarizeInts(t *testing.T) {
	convey.Convey("Given int samples", t, func() {
		s := stats.SummarizeInts([]int{10, 20, 30})

		convey.Convey("Then they should summarize like floats", func() {
			convey.So(s.Count, convey.ShouldEqual, 3)
			convey.So(s.Avg, convey.ShouldAlmostEqual, 20, tolerance)
			convey.So(s.Min, convey.ShouldEqual, 10)
			convey.So(s.Max, convey.ShouldEqual, 30)
		})
	})
}
