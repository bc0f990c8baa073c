package domain

import "time"

// AnalyticsDaily aggregates per-day generation metrics.
type AnalyticsDaily struct {
	Day             string
	VideosRequested int
	VideosGenerated int
	VideosFailed    int
	EditsRequested  int
	CreditsSpent    int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CountryCount is the number of generation requests attributed to one
// country on a given day. Countries come from the request's resolved
// ISO code.
type CountryCount struct {
	Country  string `json:"country"`
	Requests int    `json:"requests"`
}

// Counter keys accepted by AnalyticsRepository.IncrementCounters.
const (
	CounterVideosRequested = "videos_requested"
	CounterVideosGenerated = "videos_generated"
	CounterVideosFailed    = "videos_failed"
	CounterEditsRequested  = "edits_requested"
	CounterCreditsSpent    = "credits_spent"
)
