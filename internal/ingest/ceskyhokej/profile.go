// Package ceskyhokej reads the national federation's match listing, which
// filters by season, team, league and region on the server and returns the
// whole season in one table.
package ceskyhokej

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/goaliestats/internal/club"
	"github.com/fortuna/goaliestats/internal/ingest"
	"github.com/fortuna/goaliestats/internal/scrape"
)

// Name identifies the source in ids, logs and ENABLED_SOURCES.
const (
	Name = "ceskyhokej"

	// DefaultBaseURL is the federation match listing.
	DefaultBaseURL = "https://www.ceskyhokej.cz/competition/matches"
	DefaultRegion  = "ustecky"
)

// leagueParams maps category codes to the site's league filter values.
var leagueParams = map[club.Code]string{
	club.StarsiZaciA: "lsz-a",
	club.StarsiZaciB: "lsz-b",
	club.MladsiZaciA: "lmz-a",
	club.MladsiZaciB: "lmz-b",
}

// matchLayout: checkbox, icon, date, time, venue, league, round, match
// number, home, away, result.
var matchLayout = scrape.Layout{
	RowSelector: "table tbody tr",
	MinCells:    11,
	Columns: scrape.ColumnMap{
		Date:        2,
		Time:        3,
		Venue:       4,
		Category:    5,
		Round:       6,
		MatchNumber: 7,
		Home:        8,
		Away:        9,
		Status:      10,
	},
}

// Config holds the federation query parameters. Empty fields take the
// defaults.
type Config struct {
	BaseURL string
	TeamID  string
	Region  string
}

var _ ingest.Profile = (*Profile)(nil)

// Profile is the single filtered fetch source.
type Profile struct {
	cfg Config
}

// New returns the federation profile for cfg.
func New(cfg Config) *Profile {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	return &Profile{cfg: cfg}
}

func (p *Profile) Name() string { return Name }

// MatchRequests builds the one filtered URL. Without a category the league
// filter is left out and the site returns every league of the team.
func (p *Profile) MatchRequests(season ingest.Season, category club.Code) []ingest.FetchRequest {
	q := url.Values{}
	q.Set("season", strconv.Itoa(season.StartYear))
	if p.cfg.TeamID != "" {
		q.Set("team", p.cfg.TeamID)
	}
	q.Set("region", p.cfg.Region)
	label := "all leagues"
	if league, ok := leagueParams[category]; ok {
		q.Set("league", league)
		label = "league " + league
	}

	return []ingest.FetchRequest{{
		URL:   strings.TrimRight(p.cfg.BaseURL, "?") + "?" + q.Encode(),
		Label: label,
	}}
}

func (p *Profile) MatchLayout() scrape.Layout { return matchLayout }

func (p *Profile) ParseScore(text string) *scrape.Score { return scrape.ParseScore(text) }

func (p *Profile) Completed(score *scrape.Score, kickoff, now time.Time) bool {
	return ingest.CompletedByScore(score, kickoff, now)
}

// RequiresTrackedClub is false: the team filter is applied by the site.
func (p *Profile) RequiresTrackedClub() bool { return false }

// StandingsRequests is empty; tables come from the regional source.
func (p *Profile) StandingsRequests(ingest.Season, club.Code) []ingest.StandingsRequest {
	return nil
}

func (p *Profile) StandingsLayout() scrape.StandingsLayout { return scrape.StandingsLayout{} }
