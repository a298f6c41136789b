// Package consensus reduces a set of bookmaker spread lines to a single
// market number.
package consensus

import (
	"sort"
	"time"
)

// Line is one sportsbook's current home-team point spread for an event.
type Line struct {
	Book       string    `json:"book"`
	HomePoint  float64   `json:"home_point"`
	LastUpdate time.Time `json:"last_update"`
}

// Sort orders lines ascending by home point, ties broken by book name so
// the output is stable regardless of feed ordering.
func Sort(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	sort.Slice(out, func(i, j int) bool {
		if out[i].HomePoint != out[j].HomePoint {
			return out[i].HomePoint < out[j].HomePoint
		}
		return out[i].Book < out[j].Book
	})
	return out
}

// Median returns the consensus home-team line: the lower median of the
// ascending-sorted points. For odd counts this is the true median; for
// even counts it is the lower of the two middle values. The lower-median
// tie-break is load-bearing for the reported edge and must not be
// replaced with an average.
// ok is false when no lines were collected.
func Median(lines []Line) (value float64, ok bool) {
	if len(lines) == 0 {
		return 0, false
	}
	sorted := Sort(lines)
	return sorted[(len(sorted)-1)/2].HomePoint, true
}
