package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/spreadline/internal/adapters/http/api"
	"github.com/okian/spreadline/internal/adapters/http/swagger"
	"github.com/okian/spreadline/internal/adapters/odds"
	"github.com/okian/spreadline/internal/adapters/ratings"
	"github.com/okian/spreadline/internal/analysis"
	service "github.com/okian/spreadline/internal/app"
	"github.com/okian/spreadline/internal/config"
	"github.com/okian/spreadline/internal/license"
	"github.com/okian/spreadline/pkg/logger"
	"github.com/okian/spreadline/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// deps bundles the pricing service with the license checker behind the
// interface the API handlers consume.
type deps struct {
	*service.Service
	lic license.Checker
}

func (d deps) CheckLicense(ctx context.Context, key string) (license.Verification, error) {
	return d.lic.Check(ctx, key)
}

func main() {
	// Local development convenience; a missing .env file is not an error.
	_ = godotenv.Load()

	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			logger.Error(err)
		}
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// License verification, fronted by the TTL verdict cache.
	cache := license.NewCache(license.WithTTL(cfg.CacheTTL()))
	verifier := license.NewVerifier(cfg.LicenseBaseURL, cfg.LicenseProductID)
	checker := license.NewService(cache, verifier)
	if cfg.LicenseProductID == "" {
		loggerInstance.Warn(ctx, "license_product_id not configured; all requests will fail with a config error")
	}

	// Analysis is capability-gated: no credential, no LLM calls.
	var provider analysis.Provider = analysis.NewDisabled()
	if cfg.OpenAIAPIKey != "" {
		provider = analysis.NewOpenAI(cfg.OpenAIAPIKey, analysis.WithMaxTokens(cfg.AnalysisMaxTokens))
	} else {
		loggerInstance.Info(ctx, "openai_api_key not configured; analysis disabled")
	}

	svc := service.New(
		service.WithLogger(loggerInstance),
		service.WithRatingsFetcher(ratings.NewClient(cfg.RatingsBaseURL, cfg.RatingsAPIKey, ratings.WithLogger(loggerInstance))),
		service.WithOddsFetcher(odds.NewClient(cfg.OddsBaseURL, cfg.OddsAPIKey, odds.WithLogger(loggerInstance))),
		service.WithAnalysisProvider(provider),
		service.WithHomeFieldAdvantage(cfg.HomeFieldAdvantage),
		service.WithSeasonYear(cfg.SeasonYear),
	)

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Register API docs under /api-docs
	swagger.Register(ctx, mux)

	apiServer := api.NewServer(deps{Service: svc, lic: checker}, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
