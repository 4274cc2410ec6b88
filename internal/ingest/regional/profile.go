// Package regional reads the regional association's site, which serves one
// page per competition and round plus a standings page per competition.
package regional

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
	Name = "regional"

	// DefaultBaseURL is the regional association site.
	DefaultBaseURL = "https://www.hokejusti.cz"
	// DefaultMaxRounds is how many rounds are requested per competition.
	DefaultMaxRounds = 12
)

// Competition is a fixed competition id on the regional site.
type Competition struct {
	ID       string
	Category club.Code
}

// DefaultCompetitions are the tracked club's competitions this season.
var DefaultCompetitions = []Competition{
	{ID: "2481", Category: club.StarsiZaciA},
	{ID: "2482", Category: club.StarsiZaciB},
	{ID: "2490", Category: club.MladsiZaciA},
	{ID: "2491", Category: club.MladsiZaciB},
}

// matchLayout: round, date, time, home, away, result, venue.
var matchLayout = scrape.Layout{
	RowSelector: "table.zapasy tr",
	MinCells:    6,
	Columns: scrape.ColumnMap{
		Round:       0,
		Date:        1,
		Time:        2,
		Home:        3,
		Away:        4,
		Status:      5,
		Venue:       6,
		Category:    scrape.Absent,
		MatchNumber: scrape.Absent,
	},
}

var standingsLayout = scrape.StandingsLayout{
	RowSelector: "table.tabulka tr",
	MinCells:    6,
}

// Config selects the site, the rounds fetched per competition and the
// competitions. Empty fields take the defaults.
type Config struct {
	BaseURL      string
	MaxRounds    int
	Competitions []Competition
}

var _ ingest.Profile = (*Profile)(nil)

// Profile is the fan-out source.
type Profile struct {
	cfg Config
}

// New returns the regional profile for cfg.
func New(cfg Config) *Profile {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	if len(cfg.Competitions) == 0 {
		cfg.Competitions = DefaultCompetitions
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Profile{cfg: cfg}
}

func (p *Profile) Name() string { return Name }

func (p *Profile) competitions(category club.Code) []Competition {
	if category == "" {
		return p.cfg.Competitions
	}
	var out []Competition
	for _, c := range p.cfg.Competitions {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out
}

// MatchRequests returns one request per competition and round. Rounds past
// the end of a competition come back as empty tables.
func (p *Profile) MatchRequests(season ingest.Season, category club.Code) []ingest.FetchRequest {
	comps := p.competitions(category)
	reqs := make([]ingest.FetchRequest, 0, len(comps)*p.cfg.MaxRounds)
	for _, c := range comps {
		for round := 1; round <= p.cfg.MaxRounds; round++ {
			q := url.Values{}
			q.Set("sezona", strconv.Itoa(season.StartYear))
			q.Set("soutez", c.ID)
			q.Set("kolo", strconv.Itoa(round))
			reqs = append(reqs, ingest.FetchRequest{
				URL:      p.cfg.BaseURL + "/zapasy?" + q.Encode(),
				Category: c.Category,
				IDPrefix: c.ID,
				Label:    "competition " + c.ID + " round " + strconv.Itoa(round),
			})
		}
	}
	return reqs
}

func (p *Profile) StandingsRequests(season ingest.Season, category club.Code) []ingest.StandingsRequest {
	comps := p.competitions(category)
	reqs := make([]ingest.StandingsRequest, 0, len(comps))
	for _, c := range comps {
		q := url.Values{}
		q.Set("sezona", strconv.Itoa(season.StartYear))
		q.Set("soutez", c.ID)
		reqs = append(reqs, ingest.StandingsRequest{
			URL:           p.cfg.BaseURL + "/tabulka?" + q.Encode(),
			CompetitionID: c.ID,
			Category:      c.Category,
		})
	}
	return reqs
}

func (p *Profile) MatchLayout() scrape.Layout { return matchLayout }

func (p *Profile) StandingsLayout() scrape.StandingsLayout { return standingsLayout }

func (p *Profile) ParseScore(text string) *scrape.Score { return scrape.ParseScore(text) }

// Completed falls back to the kickoff time: the result cell stays empty
// for some played matches.
func (p *Profile) Completed(score *scrape.Score, kickoff, now time.Time) bool {
	return ingest.CompletedByScoreOrElapsed(score, kickoff, now)
}

// RequiresTrackedClub is true: round pages list every match of the round.
func (p *Profile) RequiresTrackedClub() bool { return true }
