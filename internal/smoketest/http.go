package smoketest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient wraps http.Client with timeout and auth.
type HTTPClient struct {
	client     *http.Client
	licenseKey string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration, licenseKey string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		licenseKey: licenseKey,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// PostSpread prices one matchup and decodes the response envelope.
func (c *HTTPClient) PostSpread(ctx context.Context, url string, m Matchup) (*Envelope, int, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.licenseKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("response is not JSON: %w", err)
	}
	return &env, resp.StatusCode, nil
}

// Envelope mirrors the service's uniform response body.
type Envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *ErrorBody      `json:"error"`
}

// ErrorBody mirrors the error block of a failed response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PricedMatchup is the subset of the response the smoke run inspects.
type PricedMatchup struct {
	League     string   `json:"league"`
	Season     int      `json:"season"`
	AwayTeam   string   `json:"away"`
	HomeTeam   string   `json:"home"`
	Projection *struct {
		Spread   float64 `json:"spread"`
		PickLine string  `json:"pick_line"`
	} `json:"projection"`
	MarketComparison string   `json:"market_comparison"`
	Notes            []string `json:"notes"`
	Analysis         string   `json:"analysis"`
}
