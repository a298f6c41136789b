package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/okian/spreadline/internal/smoketest"
	"github.com/okian/spreadline/pkg/logger"
)

// Default configuration constants.
const (
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 5 * time.Minute
)

func main() {
	_ = godotenv.Load()

	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		licenseKey = flag.String("key", os.Getenv("SPREADLINE_SMOKE_LICENSE_KEY"), "License key for the bearer token")
		year       = flag.Int("year", 0, "Season year (0 uses the server default)")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose    = flag.Bool("verbose", false, "Log pick lines, notes, and analysis text")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	if *licenseKey == "" {
		os.Stderr.WriteString("a license key is required: pass -key or set SPREADLINE_SMOKE_LICENSE_KEY\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &smoketest.Config{
		BaseURL:    *baseURL,
		LicenseKey: *licenseKey,
		Year:       *year,
		Timeout:    *timeout,
		Verbose:    *verbose,
	}

	if err := smoketest.Run(ctx, config, smoketest.DefaultSlate(*year)); err != nil {
		os.Stderr.WriteString("smoke test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
