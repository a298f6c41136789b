// Package analysis turns a priced matchup into a short written take.
package analysis

import (
	"context"
	"fmt"
	"strings"
)

// Placeholder is returned whenever no language-model credential is
// configured or the model comes back empty.
const Placeholder = "Analysis unavailable."

// Input is everything the generator gets to reason about.
type Input struct {
	Season       int
	AwayTeam     string
	HomeTeam     string
	NeutralSite  bool
	HomeFieldAdv float64
	AwayRating   float64
	HomeRating   float64
	Spread       float64
	PickLine     string
	// MarketComparison is the model-vs-consensus text, empty when no
	// consensus line was available.
	MarketComparison string
}

// Prompt renders the structured block handed to the model.
func (in Input) Prompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Season: %d\n", in.Season)
	fmt.Fprintf(&b, "Matchup: %s at %s\n", in.AwayTeam, in.HomeTeam)
	fmt.Fprintf(&b, "Neutral site: %t\n", in.NeutralSite)
	fmt.Fprintf(&b, "Home-field advantage used: %.1f\n", in.HomeFieldAdv)
	fmt.Fprintf(&b, "FPI ratings: %s %.1f, %s %.1f\n", in.AwayTeam, in.AwayRating, in.HomeTeam, in.HomeRating)
	fmt.Fprintf(&b, "Model spread (home perspective): %.1f\n", in.Spread)
	fmt.Fprintf(&b, "Model pick: %s\n", in.PickLine)
	if in.MarketComparison != "" {
		fmt.Fprintf(&b, "Market: %s\n", in.MarketComparison)
	} else {
		b.WriteString("Market: no consensus line available\n")
	}
	return b.String()
}

// Provider generates the analysis text. Variants are selected once at
// startup: disabled when no credential is configured, otherwise the LLM.
type Provider interface {
	Analyze(ctx context.Context, in Input) (string, error)
}

// Disabled is the no-credential variant.
type Disabled struct{}

// NewDisabled creates the disabled provider.
func NewDisabled() Disabled { return Disabled{} }

// Analyze returns the fixed placeholder.
func (Disabled) Analyze(ctx context.Context, in Input) (string, error) {
	return Placeholder, nil
}
