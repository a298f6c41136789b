// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/spreadline/internal/license"
	"github.com/okian/spreadline/pkg/logger"
)

// SpreadHandler handles matchup pricing requests.
type SpreadHandler struct {
	deps Dependencies
}

// NewSpreadHandler creates a new spread handler.
func NewSpreadHandler(deps Dependencies) *SpreadHandler {
	return &SpreadHandler{deps: deps}
}

// HandleSpread handles POST /v1/spread requests. The request must carry
// the license key as a bearer token; the body names the matchup.
func (h *SpreadHandler) HandleSpread(w http.ResponseWriter, r *http.Request) {
	const op = "api.spread"

	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrBadRequest))
		return
	}

	// Misbehaving upstreams are degraded inside the service; anything
	// that still panics becomes a parsable ok:false body, never a 5xx.
	defer func() {
		if rec := recover(); rec != nil {
			logger.Get().Error(r.Context(), "spread handler panicked", logger.Any("panic", rec))
			writeError(w, r, http.StatusOK, "internal_error", errors.New("unexpected fault while pricing the matchup"))
		}
	}()

	key, ok := bearerToken(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
		return
	}

	verdict, err := h.deps.CheckLicense(r.Context(), key)
	if err != nil {
		if errors.Is(err, license.ErrNoProductID) {
			writeError(w, r, http.StatusInternalServerError, "config_error", WrapKind(op, ErrConfig, err))
			return
		}
		writeError(w, r, http.StatusOK, "license_unavailable", Wrap(op, err))
		return
	}
	if !verdict.Active {
		writeError(w, r, http.StatusUnauthorized, "unauthorized",
			WrapKind(op, ErrUnauthorized, errors.New("license "+string(verdict.Verdict))))
		return
	}

	var req spreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	m := h.deps.Price(r.Context(), Request{
		AwayTeam:    req.Away,
		HomeTeam:    req.Home,
		NeutralSite: req.Neutral,
		Year:        req.Year,
	})
	writeData(w, r, http.StatusOK, m)
}

// bearerToken extracts the license key from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(auth[len(prefix):])
	return token, token != ""
}

// setCORS allows the bookmarklet-style clients this API serves to call
// it cross-origin.
func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}
