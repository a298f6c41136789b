package smoketest

import "time"

// Config holds configuration for the smoke run.
type Config struct {
	BaseURL    string        // Base URL of the service
	LicenseKey string        // License key sent as the bearer token
	Year       int           // Season year; 0 uses the server default
	Timeout    time.Duration // HTTP request timeout
	Verbose    bool          // Enable verbose logging
}

// Matchup names one game to price.
type Matchup struct {
	Away    string `json:"away"`
	Home    string `json:"home"`
	Neutral bool   `json:"neutral,omitempty"`
	Year    int    `json:"year,omitempty"`
}

// Stats holds smoke run statistics.
type Stats struct {
	Requested int
	Priced    int
	Degraded  int
	Rejected  int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// DefaultSlate is a handful of rivalry games that exercise exact and
// fuzzy team matching against the odds feed.
func DefaultSlate(year int) []Matchup {
	return []Matchup{
		{Away: "Ohio State", Home: "Michigan", Year: year},
		{Away: "Alabama", Home: "Auburn", Year: year},
		{Away: "Texas", Home: "Oklahoma", Neutral: true, Year: year},
		{Away: "Miami (FL)", Home: "Florida State", Year: year},
		{Away: "Army", Home: "Navy", Neutral: true, Year: year},
	}
}
