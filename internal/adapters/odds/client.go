// Package odds fetches NCAAF spread markets from the odds API and reduces
// them to a consensus line for one matchup.
package odds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/spreadline/internal/domain/consensus"
	"github.com/okian/spreadline/internal/domain/normalize"
	"github.com/okian/spreadline/pkg/logger"
	"github.com/okian/spreadline/pkg/metrics"
)

const (
	providerName = "odds"
	sportKey     = "americanfootball_ncaaf"
	marketKey    = "spreads"
)

// allowedBooks is the fixed sportsbook allow-list feeding the consensus.
var allowedBooks = map[string]bool{
	"draftkings": true,
	"fanduel":    true,
	"betmgm":     true,
}

// Board is the market view of one matchup. Found is false when no upcoming
// event matched the requested teams or the feed was unavailable; Note says
// which. Lines are ascending by home point. Consensus is absent when no
// allow-listed book priced the game.
type Board struct {
	Found        bool             `json:"found"`
	Note         string           `json:"note,omitempty"`
	HomeTeam     string           `json:"home_team,omitempty"`
	AwayTeam     string           `json:"away_team,omitempty"`
	CommenceTime time.Time        `json:"commence_time,omitzero"`
	Lines        []consensus.Line `json:"lines,omitempty"`
	Consensus    *float64         `json:"consensus,omitempty"`
}

// Feed wire types, mirroring the odds API's events/bookmakers/markets/
// outcomes nesting.
type feedOutcome struct {
	Name  string   `json:"name"`
	Point *float64 `json:"point"`
}

type feedMarket struct {
	Key      string        `json:"key"`
	Outcomes []feedOutcome `json:"outcomes"`
}

type feedBookmaker struct {
	Key        string       `json:"key"`
	LastUpdate time.Time    `json:"last_update"`
	Markets    []feedMarket `json:"markets"`
}

type feedEvent struct {
	ID           string          `json:"id"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	CommenceTime time.Time       `json:"commence_time"`
	Bookmakers   []feedBookmaker `json:"bookmakers"`
}

// Client is an odds API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(log logger.Logger) Option {
	return func(cl *Client) {
		if log != nil {
			cl.log = log
		}
	}
}

// NewClient creates an odds client.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Matchup fetches the full upcoming NCAAF slate and reduces it to a Board
// for the requested away/home pairing. Like the ratings fetch, it never
// returns an error: credential, transport, and no-match failures all
// degrade to a Board with a note.
func (c *Client) Matchup(ctx context.Context, awayTeam, homeTeam string) Board {
	if c.apiKey == "" {
		metrics.RecordUpstreamRequest(providerName, "no_credential")
		return Board{Note: "odds API credential not configured"}
	}

	events, note := c.fetchEvents(ctx)
	if note != "" {
		return Board{Note: note}
	}

	ev := matchEvent(events, awayTeam, homeTeam)
	if ev == nil {
		metrics.RecordUpstreamRequest(providerName, "no_match")
		return Board{Note: fmt.Sprintf("no upcoming game found for %s at %s", awayTeam, homeTeam)}
	}
	metrics.RecordUpstreamRequest(providerName, "ok")

	lines := extractLines(*ev)
	board := Board{
		Found:        true,
		HomeTeam:     ev.HomeTeam,
		AwayTeam:     ev.AwayTeam,
		CommenceTime: ev.CommenceTime,
		Lines:        lines,
	}
	if v, ok := consensus.Median(lines); ok {
		board.Consensus = &v
	}
	metrics.RecordConsensusBookCount(len(lines))
	return board
}

// fetchEvents performs the single upstream call. The feed is not
// parameterized by team; matching happens client-side.
func (c *Client) fetchEvents(ctx context.Context) ([]feedEvent, string) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("regions", "us")
	q.Set("markets", marketKey)
	q.Set("oddsFormat", "american")
	q.Set("bookmakers", "draftkings,fanduel,betmgm")

	endpoint := fmt.Sprintf("%s/sports/%s/odds?%s", c.baseURL, sportKey, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		metrics.RecordUpstreamRequest(providerName, "error")
		return nil, "odds request could not be built: " + err.Error()
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordUpstreamLatency(providerName, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordUpstreamRequest(providerName, "error")
		return nil, "odds fetch failed: " + err.Error()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordUpstreamRequest(providerName, "error")
		return nil, fmt.Sprintf("odds API returned status %d", resp.StatusCode)
	}

	// Quota headers from the odds API are worth surfacing in logs.
	if c.log != nil {
		if remaining := resp.Header.Get("X-Requests-Remaining"); remaining != "" {
			c.log.Debug(ctx, "odds API quota",
				logger.String("remaining", remaining),
				logger.String("used", resp.Header.Get("X-Requests-Used")),
			)
		}
	}

	var events []feedEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		metrics.RecordUpstreamRequest(providerName, "malformed")
		return nil, "odds response was malformed: " + err.Error()
	}
	return events, ""
}

// matchEvent finds the event for the requested pairing. The full list is
// scanned for an exact normalized match on both sides before any substring
// fallback runs, so an exact hit later in the feed beats a fuzzy hit
// earlier in it.
func matchEvent(events []feedEvent, awayTeam, homeTeam string) *feedEvent {
	wantAway := normalize.Name(awayTeam)
	wantHome := normalize.Name(homeTeam)
	if wantAway == "" || wantHome == "" {
		return nil
	}

	for i := range events {
		if normalize.Name(events[i].AwayTeam) == wantAway &&
			normalize.Name(events[i].HomeTeam) == wantHome {
			return &events[i]
		}
	}

	// Fuzzy pass: the requested name must be contained in the feed name,
	// which tolerates mascot suffixes like "Ohio State Buckeyes".
	for i := range events {
		if strings.Contains(normalize.Name(events[i].AwayTeam), wantAway) &&
			strings.Contains(normalize.Name(events[i].HomeTeam), wantHome) {
			return &events[i]
		}
	}
	return nil
}

// extractLines collects each allow-listed book's home spread for the event,
// sorted ascending.
func extractLines(ev feedEvent) []consensus.Line {
	home := normalize.Name(ev.HomeTeam)
	var lines []consensus.Line
	for _, bk := range ev.Bookmakers {
		if !allowedBooks[bk.Key] {
			continue
		}
		for _, mkt := range bk.Markets {
			if mkt.Key != marketKey {
				continue
			}
			for _, out := range mkt.Outcomes {
				if out.Point == nil || normalize.Name(out.Name) != home {
					continue
				}
				lines = append(lines, consensus.Line{
					Book:       bk.Key,
					HomePoint:  *out.Point,
					LastUpdate: bk.LastUpdate,
				})
			}
		}
	}
	return consensus.Sort(lines)
}
