package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/goaliestats/internal/club"
	"github.com/fortuna/goaliestats/internal/scrape"
)

// federationLayout mirrors the eleven-cell federation listing.
var federationLayout = scrape.Layout{
	RowSelector: "table tbody tr",
	MinCells:    11,
	Columns: scrape.ColumnMap{
		Date: 2, Time: 3, Venue: 4, Category: 5, Round: 6, MatchNumber: 7, Home: 8, Away: 9, Status: 10,
	},
}

const federationPage = `<html><body><table>
<thead><tr><th></th><th></th><th>Datum</th><th>Čas</th><th>Místo</th><th>Soutěž</th><th>Kolo</th><th>Číslo</th><th>Domácí</th><th>Hosté</th><th>Výsledek</th></tr></thead>
<tbody>
<tr><td><input type="checkbox"></td><td></td><td>17.01.2026 - 18.01.2026</td><td>10:00</td><td>Arena X</td><td>Liga starších žáků "A" sk. 2</td><td>5</td><td>12</td><td>Slovan Ústí</td><td>HC Jiný</td><td>[3:2]</td></tr>
<tr><td><input type="checkbox"></td><td></td><td>24.01.2026</td><td>12:30</td><td>Zimní stadion</td><td>Liga mladších žáků "B" sk. 14</td><td>6</td><td>31</td><td>HC Jiný</td><td>HC Slovan Ústí nad Labem</td><td></td></tr>
</tbody></table></body></html>`

const emptyPage = `<html><body><p>Nebyly nalezeny žádné zápasy.</p></body></html>`

type stubProfile struct {
	name           string
	requests       []FetchRequest
	standings      []StandingsRequest
	layout         scrape.Layout
	standingsRows  scrape.StandingsLayout
	requireTracked bool
	elapsedRule    bool
}

func (p *stubProfile) Name() string { return p.name }

func (p *stubProfile) MatchRequests(Season, club.Code) []FetchRequest { return p.requests }

func (p *stubProfile) MatchLayout() scrape.Layout { return p.layout }

func (p *stubProfile) ParseScore(text string) *scrape.Score { return scrape.ParseScore(text) }

func (p *stubProfile) Completed(score *scrape.Score, kickoff, now time.Time) bool {
	if p.elapsedRule {
		return CompletedByScoreOrElapsed(score, kickoff, now)
	}
	return CompletedByScore(score, kickoff, now)
}

func (p *stubProfile) RequiresTrackedClub() bool { return p.requireTracked }

func (p *stubProfile) StandingsRequests(Season, club.Code) []StandingsRequest { return p.standings }

func (p *stubProfile) StandingsLayout() scrape.StandingsLayout { return p.standingsRows }

// fakeFetcher serves canned pages keyed by URL; unknown URLs fail.
type fakeFetcher struct {
	pages map[string]string
	errs  map[string]error

	mu    sync.Mutex
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	if err, ok := f.errs[url]; ok {
		return "", err
	}
	if html, ok := f.pages[url]; ok {
		return html, nil
	}
	return "", errors.Wrapf(ErrUnexpectedStatus, "GET %s returned 404", url)
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
