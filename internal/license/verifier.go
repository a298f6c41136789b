package license

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/spreadline/pkg/metrics"
)

// Verdict classifies the outcome of a license verification.
type Verdict string

const (
	VerdictActive    Verdict = "active"
	VerdictInactive  Verdict = "inactive"
	VerdictInvalid   Verdict = "invalid"
	VerdictNotFound  Verdict = "not_found"
	VerdictMalformed Verdict = "malformed"
)

// Verification is the interpreted result of a license check.
type Verification struct {
	Verdict Verdict `json:"verdict"`
	Active  bool    `json:"active"`
	Email   string  `json:"email,omitempty"`
	Uses    int     `json:"uses,omitempty"`
	// Reason carries the upstream detail behind a non-active verdict.
	Reason string `json:"reason,omitempty"`
}

// purchaseRecord mirrors the relevant subset of the license API's purchase
// metadata.
type purchaseRecord struct {
	Email                   string `json:"email"`
	Refunded                bool   `json:"refunded"`
	Chargebacked            bool   `json:"chargebacked"`
	Disputed                bool   `json:"disputed"`
	SubscriptionEndedAt     string `json:"subscription_ended_at"`
	SubscriptionCancelledAt string `json:"subscription_cancelled_at"`
	SubscriptionFailedAt    string `json:"subscription_failed_at"`
}

// verifyResponse mirrors the license API's verification body.
type verifyResponse struct {
	Success  bool           `json:"success"`
	Uses     int            `json:"uses"`
	Message  string         `json:"message"`
	Purchase purchaseRecord `json:"purchase"`
}

// Verifier calls the external license verification endpoint.
type Verifier struct {
	baseURL    string
	productID  string
	httpClient *http.Client
	// incrementUses controls whether the upstream "uses" counter advances
	// on each verification.
	incrementUses bool
}

// VerifierOption applies a configuration option to the Verifier.
type VerifierOption func(*Verifier)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) VerifierOption {
	return func(v *Verifier) {
		if c != nil {
			v.httpClient = c
		}
	}
}

// WithIncrementUses controls whether verifications advance the upstream
// uses counter.
func WithIncrementUses(inc bool) VerifierOption {
	return func(v *Verifier) {
		v.incrementUses = inc
	}
}

// NewVerifier creates a Verifier against the given API base URL and product.
func NewVerifier(baseURL, productID string, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		productID:  productID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks key against the license API and interprets the purchase
// record into a verdict. Upstream failures surface as errors; every
// decodable upstream answer, including 404 and malformed bodies, becomes a
// Verification rather than an error.
func (v *Verifier) Verify(ctx context.Context, key string) (Verification, error) {
	if v.productID == "" {
		return Verification{}, ErrNoProductID
	}

	form := url.Values{}
	form.Set("product_id", v.productID)
	form.Set("license_key", key)
	if !v.incrementUses {
		form.Set("increment_uses_count", "false")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		v.baseURL+"/licenses/verify", strings.NewReader(form.Encode()))
	if err != nil {
		return Verification{}, fmt.Errorf("%w: %w", ErrVerifyRequest, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := v.httpClient.Do(req)
	metrics.RecordUpstreamLatency("license", float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordUpstreamRequest("license", "error")
		return Verification{}, fmt.Errorf("%w: %w", ErrVerifyRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.RecordUpstreamRequest("license", "not_found")
		return Verification{Verdict: VerdictNotFound, Reason: "license key not found"}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordUpstreamRequest("license", "error")
		return Verification{}, fmt.Errorf("%w: %w", ErrVerifyRequest, err)
	}

	var decoded verifyResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		// A non-JSON body is a verdict, not a propagated parse failure.
		metrics.RecordUpstreamRequest("license", "malformed")
		return Verification{Verdict: VerdictMalformed, Reason: "license API returned a malformed response"}, nil
	}
	metrics.RecordUpstreamRequest("license", "ok")

	return interpret(decoded), nil
}

// interpret folds the upstream flags into a single verdict.
func interpret(r verifyResponse) Verification {
	if !r.Success {
		reason := r.Message
		if reason == "" {
			reason = "license key is not valid"
		}
		return Verification{Verdict: VerdictInvalid, Reason: reason}
	}

	p := r.Purchase
	switch {
	case p.Refunded:
		return Verification{Verdict: VerdictInactive, Reason: "purchase was refunded"}
	case p.Chargebacked:
		return Verification{Verdict: VerdictInactive, Reason: "purchase was charged back"}
	case p.Disputed:
		return Verification{Verdict: VerdictInactive, Reason: "purchase is disputed"}
	case p.SubscriptionEndedAt != "":
		return Verification{Verdict: VerdictInactive, Reason: "subscription ended"}
	case p.SubscriptionCancelledAt != "":
		return Verification{Verdict: VerdictInactive, Reason: "subscription cancelled"}
	case p.SubscriptionFailedAt != "":
		return Verification{Verdict: VerdictInactive, Reason: "subscription payment failed"}
	}

	return Verification{
		Verdict: VerdictActive,
		Active:  true,
		Email:   p.Email,
		Uses:    r.Uses,
	}
}
