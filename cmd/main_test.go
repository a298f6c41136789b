package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/okian/spreadline/internal/adapters/http/api"
	service "github.com/okian/spreadline/internal/app"
	"github.com/okian/spreadline/internal/config"
	"github.com/okian/spreadline/internal/license"
	"github.com/okian/spreadline/pkg/logger"
	"github.com/okian/spreadline/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("SPREADLINE_ADDR", ":8080")
			_ = os.Setenv("SPREADLINE_CACHE_TTL_SECONDS", "120")
			_ = os.Setenv("SPREADLINE_LICENSE_PRODUCT_ID", "prod-abc")
			defer func() {
				_ = os.Unsetenv("SPREADLINE_ADDR")
				_ = os.Unsetenv("SPREADLINE_CACHE_TTL_SECONDS")
				_ = os.Unsetenv("SPREADLINE_LICENSE_PRODUCT_ID")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 120)
				convey.So(cfg.CacheTTL(), convey.ShouldEqual, 2*time.Minute)
				convey.So(cfg.LicenseProductID, convey.ShouldEqual, "prod-abc")
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := service.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := service.New(
					service.WithHomeFieldAdvantage(2.0),
					service.WithSeasonYear(2023),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := service.New()
			checker := license.NewService(license.NewCache(), license.NewVerifier("http://localhost", "prod"))

			convey.Convey("Then HTTP server should be creatable", func() {
				server := api.NewServer(deps{Service: svc, lic: checker}, svc)
				convey.So(server, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				registry := prometheus.NewRegistry()
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(registry))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should stop when the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateSystemMetrics()
				}, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given main application integration", t, func() {
		convey.Convey("When testing full application setup", func() {
			_ = os.Setenv("SPREADLINE_ADDR", ":8080")
			_ = os.Setenv("SPREADLINE_LICENSE_PRODUCT_ID", "prod-abc")
			defer func() {
				_ = os.Unsetenv("SPREADLINE_ADDR")
				_ = os.Unsetenv("SPREADLINE_LICENSE_PRODUCT_ID")
			}()

			convey.Convey("Then all components should work together", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)

				cache := license.NewCache(license.WithTTL(cfg.CacheTTL()))
				checker := license.NewService(cache, license.NewVerifier(cfg.LicenseBaseURL, cfg.LicenseProductID))

				svc := service.New(
					service.WithHomeFieldAdvantage(cfg.HomeFieldAdvantage),
					service.WithSeasonYear(cfg.SeasonYear),
				)
				convey.So(svc, convey.ShouldNotBeNil)

				server := api.NewServer(deps{Service: svc, lic: checker}, svc)
				convey.So(server, convey.ShouldNotBeNil)

				mux := http.NewServeMux()
				server.Register(ctx, mux)
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("SPREADLINE_CACHE_TTL_SECONDS", "0")
			defer func() { _ = os.Unsetenv("SPREADLINE_CACHE_TTL_SECONDS") }()

			convey.Convey("Then configuration loading should fail", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing service creation with zero options", func() {
			convey.Convey("Then option guards keep the defaults", func() {
				svc := service.New(
					service.WithSeasonYear(0),
					service.WithRatingsFetcher(nil),
					service.WithOddsFetcher(nil),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})
	})
}
