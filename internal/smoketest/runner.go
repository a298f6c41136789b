// Package smoketest drives a live service end to end: it prices a slate
// of matchups over HTTP and reports what came back.
package smoketest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/spreadline/pkg/logger"
)

// Run executes the smoke test against a running service.
func Run(ctx context.Context, config *Config, slate []Matchup) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting spreadline smoke test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("matchups", len(slate)),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("verbose", config.Verbose))

	client := newHTTPClient(config.Timeout, config.LicenseKey)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Price the slate
	for _, m := range slate {
		priceOne(ctx, client, config, m, stats)
	}

	// Step 3: Fetch service stats
	if err := showServiceStats(ctx, client, config); err != nil {
		logger.Get().Warn(ctx, "failed to fetch service stats", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d matchups failed", stats.Failed, stats.Requested)
	}
	return nil
}

// priceOne submits one matchup and classifies the outcome.
func priceOne(ctx context.Context, client *HTTPClient, config *Config, m Matchup, stats *Stats) {
	stats.Requested++

	env, status, err := client.PostSpread(ctx, config.BaseURL+"/v1/spread", m)
	if err != nil {
		stats.Failed++
		logger.Get().Error(ctx, "matchup request failed",
			logger.String("away", m.Away),
			logger.String("home", m.Home),
			logger.Error(err))
		return
	}

	if !env.OK {
		if status == http.StatusUnauthorized {
			stats.Rejected++
		} else {
			stats.Failed++
		}
		logger.Get().Warn(ctx, "matchup rejected",
			logger.String("away", m.Away),
			logger.String("home", m.Home),
			logger.Int("status", status),
			logger.String("code", env.Error.Code),
			logger.String("message", env.Error.Message))
		return
	}

	var priced PricedMatchup
	if err := json.Unmarshal(env.Data, &priced); err != nil {
		stats.Failed++
		logger.Get().Error(ctx, "matchup response malformed", logger.Error(err))
		return
	}

	if priced.Projection == nil {
		stats.Degraded++
	} else {
		stats.Priced++
	}

	logger.Get().Info(ctx, "matchup priced",
		logger.String("away", priced.AwayTeam),
		logger.String("home", priced.HomeTeam),
		logger.Bool("projected", priced.Projection != nil),
		logger.String("market", priced.MarketComparison),
		logger.Int("notes", len(priced.Notes)))

	if config.Verbose {
		if priced.Projection != nil {
			logger.Get().Info(ctx, "pick line", logger.String("line", priced.Projection.PickLine))
		}
		for _, note := range priced.Notes {
			logger.Get().Info(ctx, "note", logger.String("text", note))
		}
		if priced.Analysis != "" {
			logger.Get().Info(ctx, "analysis", logger.String("text", priced.Analysis))
		}
	}
}

// checkServiceHealth verifies the service answers before the run starts.
func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("health endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status %d", resp.StatusCode)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// showServiceStats logs the service's own counters for the run report.
func showServiceStats(ctx context.Context, client *HTTPClient, config *Config) error {
	resp, err := client.Get(ctx, config.BaseURL+"/stats")
	if err != nil {
		return fmt.Errorf("stats endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}
	logger.Get().Info(ctx, "service stats", logger.String("body", string(data)))
	return nil
}

// displayFinalStats logs the run summary.
func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "smoke test complete",
		logger.Int("requested", stats.Requested),
		logger.Int("priced", stats.Priced),
		logger.Int("degraded", stats.Degraded),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.String("duration", stats.Duration.String()))
}
