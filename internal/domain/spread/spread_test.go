package spread_test

import (
	"testing"

	"github.com/okian/spreadline/internal/domain/spread"
	. "github.com/smartystreets/goconvey/convey"
)

func TestProject(t *testing.T) {
	Convey("Given the spread model", t, func() {
		Convey("When the away side rates higher", func() {
			// home 15 - away 20 + hfa 1.7 = -3.3
			p := spread.Project("Ohio State", "Michigan", 20, 15, 1.7)

			Convey("Then the away team is favored and shown negative", func() {
				So(p.Spread, ShouldEqual, -3.3)
				So(p.Favorite, ShouldEqual, spread.SideAway)
				So(p.FavoriteTeam, ShouldEqual, "Ohio State")
				So(p.PickLine, ShouldEqual, "Ohio State -3.3")
			})
		})

		Convey("When the home side rates higher", func() {
			p := spread.Project("Ohio State", "Michigan", 12, 18, 1.7)

			Convey("Then the home team is favored", func() {
				So(p.Spread, ShouldEqual, 7.7)
				So(p.Favorite, ShouldEqual, spread.SideHome)
				So(p.PickLine, ShouldEqual, "Michigan -7.7")
			})
		})

		Convey("When the model lands on exactly zero", func() {
			p := spread.Project("Army", "Navy", 10, 10, 0)

			Convey("Then it is a pick'em", func() {
				So(p.Spread, ShouldEqual, 0)
				So(p.Favorite, ShouldEqual, spread.SidePickem)
				So(p.FavoriteTeam, ShouldBeEmpty)
				So(p.PickLine, ShouldEqual, spread.PickemLine)
			})
		})

		Convey("When the sides are swapped at a neutral site", func() {
			a := spread.Project("X", "Y", 21.3, 14.9, 0)
			b := spread.Project("Y", "X", 14.9, 21.3, 0)

			Convey("Then the spreads negate each other", func() {
				So(a.Spread, ShouldEqual, -b.Spread)
			})
		})

		Convey("When computed twice with the same inputs", func() {
			a := spread.Project("X", "Y", 7.2, 3.1, 1.7)
			b := spread.Project("X", "Y", 7.2, 3.1, 1.7)

			Convey("Then the result is identical", func() {
				So(a, ShouldResemble, b)
			})
		})

		Convey("When the raw differential needs rounding", func() {
			// 10.25 - 7.11 + 1.7 = 4.84 -> 4.8
			p := spread.Project("A", "B", 7.11, 10.25, 1.7)
			So(p.Spread, ShouldEqual, 4.8)
		})
	})
}

func TestCompare(t *testing.T) {
	Convey("Given a projection and a consensus line", t, func() {
		p := spread.Project("Ohio State", "Michigan", 20, 15, 1.7) // -3.3

		Convey("When the market has the home side closer", func() {
			So(p.Compare(-1.5), ShouldEqual, "model -3.3 vs market -1.5 (edge -1.8)")
		})

		Convey("When model and market agree", func() {
			So(p.Compare(-3.3), ShouldEqual, "model -3.3 vs market -3.3 (edge 0)")
		})

		Convey("When values are whole numbers", func() {
			q := spread.Project("A", "B", 10, 17, 0) // +7
			So(q.Compare(4), ShouldEqual, "model 7 vs market 4 (edge 3)")
		})
	})
}
