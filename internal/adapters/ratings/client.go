// Package ratings fetches FPI power ratings from the college football
// data API.
package ratings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/spreadline/pkg/logger"
	"github.com/okian/spreadline/pkg/metrics"
)

const providerName = "ratings"

// Rating is a per-team, per-season power rating. Value is nil when the
// rating could not be fetched; Note says why.
type Rating struct {
	Team  string   `json:"team"`
	Year  int      `json:"year"`
	Value *float64 `json:"value,omitempty"`
	Note  string   `json:"note,omitempty"`
}

// fpiRecord mirrors one element of the ratings API response.
type fpiRecord struct {
	Team string   `json:"team"`
	Year int      `json:"year"`
	FPI  *float64 `json:"fpi"`
}

// Client is an FPI ratings API client.
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

// NewClient creates a ratings client. An empty apiKey is allowed; fetches
// then degrade with a note instead of calling upstream.
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

// FPI returns the team's FPI for the season. It never returns an error:
// credential, transport, and no-match failures all degrade to an absent
// value with a diagnostic note, which the handler threads into the
// response.
func (c *Client) FPI(ctx context.Context, team string, year int) Rating {
	r := Rating{Team: team, Year: year}

	if c.apiKey == "" {
		r.Note = "ratings API credential not configured"
		metrics.RecordUpstreamRequest(providerName, "no_credential")
		return r
	}

	q := url.Values{}
	q.Set("year", fmt.Sprintf("%d", year))
	q.Set("team", team)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/ratings/fpi?"+q.Encode(), nil)
	if err != nil {
		r.Note = "ratings request could not be built: " + err.Error()
		metrics.RecordUpstreamRequest(providerName, "error")
		return r
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordUpstreamLatency(providerName, float64(time.Since(start).Milliseconds()))
	if err != nil {
		r.Note = fmt.Sprintf("ratings fetch failed for %s: %v", team, err)
		metrics.RecordUpstreamRequest(providerName, "error")
		return r
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.Note = fmt.Sprintf("ratings API returned status %d for %s", resp.StatusCode, team)
		metrics.RecordUpstreamRequest(providerName, "error")
		return r
	}

	var records []fpiRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		r.Note = fmt.Sprintf("ratings response for %s was malformed: %v", team, err)
		metrics.RecordUpstreamRequest(providerName, "malformed")
		return r
	}

	for _, rec := range records {
		if rec.FPI != nil {
			v := *rec.FPI
			r.Value = &v
			metrics.RecordUpstreamRequest(providerName, "ok")
			return r
		}
	}

	r.Note = fmt.Sprintf("no FPI rating found for %s in %d", team, year)
	metrics.RecordUpstreamRequest(providerName, "no_match")
	if c.log != nil {
		c.log.Debug(ctx, "ratings lookup came back empty",
			logger.String("team", team),
			logger.Int("year", year),
		)
	}
	return r
}
