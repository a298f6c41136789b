// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "time"

// Default external endpoints. Each is overridable, which also lets tests
// point the clients at an httptest server.
const (
	defaultLicenseBaseURL = "https://api.gumroad.com/v2"
	defaultRatingsBaseURL = "https://api.collegefootballdata.com"
	defaultOddsBaseURL    = "https://api.the-odds-api.com/v4"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CacheTTLSeconds bounds how long a license verification is reused
	// before the upstream is asked again.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// HomeFieldAdvantage is the fixed point adjustment added to the rating
	// differential unless the game is at a neutral site.
	HomeFieldAdvantage float64 `koanf:"home_field_advantage"`

	// SeasonYear is used when a request omits the year.
	SeasonYear int `koanf:"season_year"`

	// LicenseProductID identifies the product on the license API. Required.
	LicenseProductID string `koanf:"license_product_id"`

	// LicenseBaseURL points at the license verification API.
	LicenseBaseURL string `koanf:"license_base_url"`

	// RatingsAPIKey authenticates against the ratings API. When absent the
	// ratings fetch degrades with a note instead of failing requests.
	RatingsAPIKey  string `koanf:"ratings_api_key"`
	RatingsBaseURL string `koanf:"ratings_base_url"`

	// OddsAPIKey authenticates against the odds API.
	OddsAPIKey  string `koanf:"odds_api_key"`
	OddsBaseURL string `koanf:"odds_base_url"`

	// OpenAIAPIKey enables LLM analysis when present.
	OpenAIAPIKey string `koanf:"openai_api_key"`

	// AnalysisMaxTokens bounds the analysis output length.
	AnalysisMaxTokens int `koanf:"analysis_max_tokens"`
}

// CacheTTL returns the license cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// New creates a Config with defaults. Loading from file and env layers on
// top of this in Load.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		CacheTTLSeconds:    600,
		HomeFieldAdvantage: 1.7,
		SeasonYear:         time.Now().Year(),
		LicenseBaseURL:     defaultLicenseBaseURL,
		RatingsBaseURL:     defaultRatingsBaseURL,
		OddsBaseURL:        defaultOddsBaseURL,
		AnalysisMaxTokens:  400,
	}
}
