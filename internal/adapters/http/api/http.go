// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/spreadline/internal/app"
	"github.com/okian/spreadline/internal/license"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Price runs the spread model for one matchup. It degrades rather
	// than fails; the returned aggregate carries notes for anything absent.
	Price(ctx context.Context, req Request) Matchup

	// CheckLicense verifies a license key, consulting the verdict cache.
	CheckLicense(ctx context.Context, key string) (license.Verification, error)
}

// Request and Matchup mirror the shapes the pricing service works with.
type (
	Request = service.Request
	Matchup = service.Matchup
)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	spreadHandler *SpreadHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		spreadHandler: NewSpreadHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/v1/spread", RequestID(MetricsMiddleware(s.spreadHandler.HandleSpread, "spread")))
}

// spreadRequest mirrors the public schema for POST /v1/spread.
type spreadRequest struct {
	Away    string `json:"away"`
	Home    string `json:"home"`
	Neutral bool   `json:"neutral"`
	Year    int    `json:"year"`
}

func (r spreadRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Away) == "":
		return errors.New("missing away")
	case strings.TrimSpace(r.Home) == "":
		return errors.New("missing home")
	case r.Year < 0:
		return errors.New("invalid year")
	}
	return nil
}

// envelope is the uniform response body: ok:true with data, or ok:false
// with an error block. Unexpected faults deliberately ship as HTTP 200
// with ok:false so scripted callers always get parsable JSON.
type envelope struct {
	OK        bool        `json:"ok"`
	RequestID string      `json:"request_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *errorBody  `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, r *http.Request, status int, v any) {
	writeJSON(w, status, envelope{OK: true, RequestID: r.Header.Get(requestIDHeader), Data: v})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, envelope{
		OK:        false,
		RequestID: r.Header.Get(requestIDHeader),
		Error:     &errorBody{Code: code, Message: msg},
	})
}
