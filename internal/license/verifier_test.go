package license_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/spreadline/internal/license"
	. "github.com/smartystreets/goconvey/convey"
)

func TestVerifier(t *testing.T) {
	Convey("Given a license verifier", t, func() {
		ctx := context.Background()

		Convey("When the upstream reports an active purchase", func() {
			var gotForm map[string]string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = r.ParseForm()
				gotForm = map[string]string{
					"product_id":           r.PostFormValue("product_id"),
					"license_key":          r.PostFormValue("license_key"),
					"increment_uses_count": r.PostFormValue("increment_uses_count"),
				}
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success":  true,
					"uses":     3,
					"purchase": map[string]any{"email": "fan@example.com"},
				})
			}))
			defer srv.Close()

			v := license.NewVerifier(srv.URL, "prod-123")
			got, err := v.Verify(ctx, "KEY-AAAA")

			Convey("Then the verdict is active with purchaser details", func() {
				So(err, ShouldBeNil)
				So(got.Verdict, ShouldEqual, license.VerdictActive)
				So(got.Active, ShouldBeTrue)
				So(got.Email, ShouldEqual, "fan@example.com")
				So(got.Uses, ShouldEqual, 3)
			})

			Convey("Then the request is form-encoded with the uses counter frozen", func() {
				So(gotForm["product_id"], ShouldEqual, "prod-123")
				So(gotForm["license_key"], ShouldEqual, "KEY-AAAA")
				So(gotForm["increment_uses_count"], ShouldEqual, "false")
			})
		})

		Convey("When increments are enabled", func() {
			var sawIncrementParam bool
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = r.ParseForm()
				_, sawIncrementParam = r.PostForm["increment_uses_count"]
				_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "purchase": map[string]any{}})
			}))
			defer srv.Close()

			v := license.NewVerifier(srv.URL, "prod-123", license.WithIncrementUses(true))
			_, err := v.Verify(ctx, "KEY-AAAA")

			Convey("Then the freeze parameter is omitted", func() {
				So(err, ShouldBeNil)
				So(sawIncrementParam, ShouldBeFalse)
			})
		})

		Convey("When the upstream returns 404", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			}))
			defer srv.Close()

			got, err := license.NewVerifier(srv.URL, "prod-123").Verify(ctx, "KEY-NOPE")

			Convey("Then the verdict is not_found and inactive", func() {
				So(err, ShouldBeNil)
				So(got.Verdict, ShouldEqual, license.VerdictNotFound)
				So(got.Active, ShouldBeFalse)
			})
		})

		Convey("When the upstream reports success=false", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"message": "that license does not exist",
				})
			}))
			defer srv.Close()

			got, err := license.NewVerifier(srv.URL, "prod-123").Verify(ctx, "KEY-BAD")

			Convey("Then the verdict is invalid with the upstream message", func() {
				So(err, ShouldBeNil)
				So(got.Verdict, ShouldEqual, license.VerdictInvalid)
				So(got.Active, ShouldBeFalse)
				So(got.Reason, ShouldEqual, "that license does not exist")
			})
		})

		Convey("When the purchase record carries a disqualifying flag", func() {
			cases := []struct {
				name     string
				purchase map[string]any
				reason   string
			}{
				{"refunded", map[string]any{"refunded": true}, "purchase was refunded"},
				{"chargebacked", map[string]any{"chargebacked": true}, "purchase was charged back"},
				{"disputed", map[string]any{"disputed": true}, "purchase is disputed"},
				{"subscription ended", map[string]any{"subscription_ended_at": "2025-01-01T00:00:00Z"}, "subscription ended"},
				{"subscription cancelled", map[string]any{"subscription_cancelled_at": "2025-01-01T00:00:00Z"}, "subscription cancelled"},
				{"subscription failed", map[string]any{"subscription_failed_at": "2025-01-01T00:00:00Z"}, "subscription payment failed"},
			}

			for _, tc := range cases {
				Convey("And the flag is "+tc.name, func() {
					srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						_ = json.NewEncoder(w).Encode(map[string]any{
							"success":  true,
							"purchase": tc.purchase,
						})
					}))
					defer srv.Close()

					got, err := license.NewVerifier(srv.URL, "prod-123").Verify(ctx, "KEY-X")

					So(err, ShouldBeNil)
					So(got.Verdict, ShouldEqual, license.VerdictInactive)
					So(got.Active, ShouldBeFalse)
					So(got.Reason, ShouldEqual, tc.reason)
				})
			}
		})

		Convey("When the upstream returns a non-JSON body", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("<html>maintenance</html>"))
			}))
			defer srv.Close()

			got, err := license.NewVerifier(srv.URL, "prod-123").Verify(ctx, "KEY-X")

			Convey("Then it degrades to a malformed verdict, not an error", func() {
				So(err, ShouldBeNil)
				So(got.Verdict, ShouldEqual, license.VerdictMalformed)
				So(got.Active, ShouldBeFalse)
			})
		})

		Convey("When the upstream is unreachable", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			srv.Close() // refuse connections

			_, err := license.NewVerifier(srv.URL, "prod-123").Verify(ctx, "KEY-X")

			Convey("Then a request error is returned", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When no product identifier is configured", func() {
			_, err := license.NewVerifier("http://localhost", "").Verify(ctx, "KEY-X")

			Convey("Then the config error is returned before any request", func() {
				So(errors.Is(err, license.ErrNoProductID), ShouldBeTrue)
			})
		})
	})
}
