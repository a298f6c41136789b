// Package spread prices a matchup from two power ratings.
package spread

import (
	"fmt"
	"math"
)

// Side labels the favored team in a projection.
type Side string

const (
	SideHome   Side = "home"
	SideAway   Side = "away"
	SidePickem Side = "pickem"
)

// PickemLine is the display string used when the model spread is exactly zero.
const PickemLine = "PK"

// Projection is the model's view of a matchup. Spread is from the home
// team's perspective: positive means home is favored.
type Projection struct {
	Spread   float64 `json:"spread"`
	Favorite Side    `json:"favorite"`
	// FavoriteTeam is the display name of the favored side, empty on a pick'em.
	FavoriteTeam string `json:"favorite_team,omitempty"`
	// PickLine renders the favorite with a negative number, per betting
	// convention, e.g. "Ohio State -3.3".
	PickLine string `json:"pick_line"`
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Project computes the model spread for a matchup.
// spread = round1(home - away + hfa); callers pass hfa = 0 for a neutral
// site. Team names are used only for display.
func Project(awayTeam, homeTeam string, awayRating, homeRating, hfa float64) Projection {
	s := Round1(homeRating - awayRating + hfa)
	p := Projection{Spread: s}
	switch {
	case s > 0:
		p.Favorite = SideHome
		p.FavoriteTeam = homeTeam
	case s < 0:
		p.Favorite = SideAway
		p.FavoriteTeam = awayTeam
	default:
		p.Favorite = SidePickem
		p.PickLine = PickemLine
		return p
	}
	p.PickLine = fmt.Sprintf("%s -%s", p.FavoriteTeam, trimFloat(math.Abs(s)))
	return p
}

// Compare reports the model against the market consensus line.
// The edge is spread minus consensus, rounded to one decimal.
func (p Projection) Compare(consensusLine float64) string {
	edge := Round1(p.Spread - consensusLine)
	return fmt.Sprintf("model %s vs market %s (edge %s)",
		trimFloat(p.Spread), trimFloat(consensusLine), trimFloat(edge))
}

// trimFloat formats with at most one decimal and no trailing ".0".
func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
