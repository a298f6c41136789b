package consensus_test

import (
	"testing"

	"github.com/okian/spreadline/internal/domain/consensus"
	. "github.com/smartystreets/goconvey/convey"
)

func lines(points ...float64) []consensus.Line {
	out := make([]consensus.Line, len(points))
	books := []string{"draftkings", "fanduel", "betmgm", "caesars"}
	for i, p := range points {
		out[i] = consensus.Line{Book: books[i%len(books)], HomePoint: p}
	}
	return out
}

func TestMedian(t *testing.T) {
	Convey("Given sets of bookmaker lines", t, func() {
		Convey("When the count is odd", func() {
			v, ok := consensus.Median(lines(-3.5, -3, -2.5))

			Convey("Then the true median is returned", func() {
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, -3)
			})
		})

		Convey("When the count is even", func() {
			v, ok := consensus.Median(lines(-4, -3))

			Convey("Then the lower median is returned", func() {
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, -4)
			})
		})

		Convey("When four books are on the board", func() {
			v, ok := consensus.Median(lines(-4, -3.5, -3, -2.5))

			Convey("Then the lower of the two middle values wins", func() {
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, -3.5)
			})
		})

		Convey("When input ordering varies", func() {
			a, _ := consensus.Median(lines(-2.5, -3.5, -3))
			b, _ := consensus.Median(lines(-3, -2.5, -3.5))

			Convey("Then the consensus is order-independent", func() {
				So(a, ShouldEqual, b)
				So(a, ShouldEqual, -3)
			})
		})

		Convey("When there is a single line", func() {
			v, ok := consensus.Median(lines(6.5))

			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 6.5)
		})

		Convey("When no lines were collected", func() {
			_, ok := consensus.Median(nil)

			Convey("Then the consensus is absent", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestSort(t *testing.T) {
	Convey("Given unordered lines", t, func() {
		in := []consensus.Line{
			{Book: "fanduel", HomePoint: -2.5},
			{Book: "draftkings", HomePoint: -3.5},
			{Book: "betmgm", HomePoint: -3},
		}
		sorted := consensus.Sort(in)

		Convey("Then the result is ascending by home point", func() {
			So(sorted[0].HomePoint, ShouldEqual, -3.5)
			So(sorted[1].HomePoint, ShouldEqual, -3)
			So(sorted[2].HomePoint, ShouldEqual, -2.5)
		})

		Convey("Then the input slice is left untouched", func() {
			So(in[0].Book, ShouldEqual, "fanduel")
			So(in[0].HomePoint, ShouldEqual, -2.5)
		})

		Convey("And equal points tie-break by book name", func() {
			tied := consensus.Sort([]consensus.Line{
				{Book: "fanduel", HomePoint: -3},
				{Book: "betmgm", HomePoint: -3},
			})
			So(tied[0].Book, ShouldEqual, "betmgm")
		})
	})
}
