package ingest

import (
	"time"

	"github.com/fortuna/goaliestats/internal/club"
	"github.com/fortuna/goaliestats/internal/scrape"
)

// FetchRequest is one page of matches to fetch.
type FetchRequest struct {
	URL string
	// Category is set when the page belongs to a single known category, so
	// rows are not classified from their text.
	Category club.Code
	// IDPrefix keeps external ids from different pages of the same category
	// apart, for example the competition id of a fan-out source.
	IDPrefix string
	// Label names the request in logs.
	Label string
}

// StandingsRequest is one competition table to fetch.
type StandingsRequest struct {
	URL           string
	CompetitionID string
	Category      club.Code
}

// Profile bundles what differs between source sites: URL dialect, table
// layout and the per-site matching and completion rules. Everything else
// goes through the shared pipeline.
type Profile interface {
	// Name tags every record the profile produces.
	Name() string
	// MatchRequests returns one request for a pre-filtered source, or many
	// for a fan-out source. An empty category asks for every category.
	MatchRequests(season Season, category club.Code) []FetchRequest
	MatchLayout() scrape.Layout
	ParseScore(text string) *scrape.Score
	Completed(score *scrape.Score, kickoff, now time.Time) bool
	// RequiresTrackedClub drops rows in which neither team is the tracked
	// club. Sources whose URL already filters by team return false.
	RequiresTrackedClub() bool
	StandingsRequests(season Season, category club.Code) []StandingsRequest
	StandingsLayout() scrape.StandingsLayout
}

// CompletedByScore treats a match as played exactly when it has a score.
func CompletedByScore(score *scrape.Score, _, _ time.Time) bool {
	return score != nil
}

// CompletedByScoreOrElapsed falls back to the kickoff time for sources
// without a reliable status cell. A postponed match dated in the past is
// reported as completed with no score; the source gives nothing to tell
// the two apart.
func CompletedByScoreOrElapsed(score *scrape.Score, kickoff, now time.Time) bool {
	return score != nil || kickoff.Before(now)
}
