// Package service prices matchups: it gathers ratings and market lines,
// runs the spread model, and asks the analysis provider for a take.
package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/spreadline/internal/adapters/odds"
	"github.com/okian/spreadline/internal/adapters/ratings"
	"github.com/okian/spreadline/internal/analysis"
	"github.com/okian/spreadline/internal/domain/spread"
	"github.com/okian/spreadline/pkg/logger"
	"github.com/okian/spreadline/pkg/metrics"
)

// League tag echoed in every response.
const League = "ncaaf"

// RatingsFetcher is the slice of the ratings client the service needs.
type RatingsFetcher interface {
	FPI(ctx context.Context, team string, year int) ratings.Rating
}

// OddsFetcher is the slice of the odds client the service needs.
type OddsFetcher interface {
	Matchup(ctx context.Context, awayTeam, homeTeam string) odds.Board
}

// Request is one priced-matchup request, already validated by the caller.
type Request struct {
	AwayTeam    string
	HomeTeam    string
	NeutralSite bool
	// Year 0 means the configured default season.
	Year int
}

// Matchup aggregates everything the pricing run produced. Projection and
// MarketComparison are absent when either rating was unavailable; Notes
// explains every absence.
type Matchup struct {
	League       string             `json:"league"`
	Season       int                `json:"season"`
	AwayTeam     string             `json:"away"`
	HomeTeam     string             `json:"home"`
	NeutralSite  bool               `json:"neutral"`
	HomeFieldAdv float64            `json:"home_field_advantage"`
	AwayRating   ratings.Rating     `json:"away_rating"`
	HomeRating   ratings.Rating     `json:"home_rating"`
	Projection   *spread.Projection `json:"projection,omitempty"`
	// MarketComparison relates the model spread to the consensus line.
	MarketComparison string     `json:"market_comparison,omitempty"`
	Board            odds.Board `json:"market"`
	Notes            []string   `json:"notes,omitempty"`
	Analysis         string     `json:"analysis,omitempty"`
}

// Service implements the pricing flow behind the HTTP API.
type Service struct {
	ratings  RatingsFetcher
	odds     OddsFetcher
	analysis analysis.Provider

	hfa        float64
	seasonYear int

	priced   atomic.Int64
	degraded atomic.Int64

	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRatingsFetcher sets the ratings client.
func WithRatingsFetcher(f RatingsFetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.ratings = f
		}
	}
}

// WithOddsFetcher sets the odds client.
func WithOddsFetcher(f OddsFetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.odds = f
		}
	}
}

// WithAnalysisProvider sets the analysis provider.
func WithAnalysisProvider(p analysis.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.analysis = p
		}
	}
}

// WithHomeFieldAdvantage sets the fixed HFA constant.
func WithHomeFieldAdvantage(hfa float64) Option {
	return func(s *Service) {
		s.hfa = hfa
	}
}

// WithSeasonYear sets the default season for requests that omit the year.
func WithSeasonYear(year int) Option {
	return func(s *Service) {
		if year > 0 {
			s.seasonYear = year
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Service. Callers must supply ratings, odds, and
// analysis via options; the zero fetchers would panic on first use.
func New(opts ...Option) *Service {
	s := &Service{
		analysis:   analysis.NewDisabled(),
		hfa:        1.7,
		seasonYear: 2024,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	return s
}

// Price runs one request end to end. Upstream degradation never fails the
// run; each absent input is reported in Notes and the dependent outputs
// are simply omitted.
func (s *Service) Price(ctx context.Context, req Request) Matchup {
	year := req.Year
	if year == 0 {
		year = s.seasonYear
	}
	hfa := s.hfa
	if req.NeutralSite {
		hfa = 0
	}

	m := Matchup{
		League:       League,
		Season:       year,
		AwayTeam:     req.AwayTeam,
		HomeTeam:     req.HomeTeam,
		NeutralSite:  req.NeutralSite,
		HomeFieldAdv: hfa,
	}

	// Both rating fetches and the odds fetch are independent; run all
	// three concurrently and wait for the lot.
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		m.AwayRating = s.ratings.FPI(ctx, req.AwayTeam, year)
	}()
	go func() {
		defer wg.Done()
		m.HomeRating = s.ratings.FPI(ctx, req.HomeTeam, year)
	}()
	go func() {
		defer wg.Done()
		m.Board = s.odds.Matchup(ctx, req.AwayTeam, req.HomeTeam)
	}()
	wg.Wait()

	if m.AwayRating.Note != "" {
		m.Notes = append(m.Notes, m.AwayRating.Note)
	}
	if m.HomeRating.Note != "" {
		m.Notes = append(m.Notes, m.HomeRating.Note)
	}
	if m.Board.Note != "" {
		m.Notes = append(m.Notes, m.Board.Note)
	}

	if m.AwayRating.Value != nil && m.HomeRating.Value != nil {
		p := spread.Project(req.AwayTeam, req.HomeTeam, *m.AwayRating.Value, *m.HomeRating.Value, hfa)
		m.Projection = &p
		if m.Board.Consensus != nil {
			m.MarketComparison = p.Compare(*m.Board.Consensus)
			metrics.RecordModelEdge(spread.Round1(p.Spread - *m.Board.Consensus))
		}
		s.priced.Add(1)
		metrics.RecordMatchupPriced()
	} else {
		m.Notes = append(m.Notes, "model spread unavailable without both ratings")
	}

	if len(m.Notes) > 0 {
		s.degraded.Add(1)
		metrics.RecordMatchupDegraded()
	}

	m.Analysis = s.analyze(ctx, m)

	s.log.Info(ctx, "matchup priced",
		logger.String("away", req.AwayTeam),
		logger.String("home", req.HomeTeam),
		logger.Int("season", year),
		logger.Bool("projected", m.Projection != nil),
		logger.Bool("consensus", m.Board.Consensus != nil),
	)

	return m
}

// analyze asks the provider for a take when there is a projection to talk
// about. An analysis failure is a note, never a request failure.
func (s *Service) analyze(ctx context.Context, m Matchup) string {
	if m.Projection == nil {
		return ""
	}
	text, err := s.analysis.Analyze(ctx, analysis.Input{
		Season:           m.Season,
		AwayTeam:         m.AwayTeam,
		HomeTeam:         m.HomeTeam,
		NeutralSite:      m.NeutralSite,
		HomeFieldAdv:     m.HomeFieldAdv,
		AwayRating:       *m.AwayRating.Value,
		HomeRating:       *m.HomeRating.Value,
		Spread:           m.Projection.Spread,
		PickLine:         m.Projection.PickLine,
		MarketComparison: m.MarketComparison,
	})
	if err != nil {
		s.log.Warn(ctx, "analysis generation failed", logger.Error(err))
		return analysis.Placeholder
	}
	return text
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"league":           League,
		"seasonYear":       s.seasonYear,
		"homeFieldAdv":     s.hfa,
		"matchupsPriced":   s.priced.Load(),
		"matchupsDegraded": s.degraded.Load(),
	}
}
