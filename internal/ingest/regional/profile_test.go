package regional

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/goaliestats/internal/club"
	"github.com/fortuna/goaliestats/internal/ingest"
	"github.com/fortuna/goaliestats/internal/scrape"
)

func TestProfile_FanOutRequests(t *testing.T) {
	p := New(Config{BaseURL: "https://example.test/"})
	season := ingest.Season{StartYear: 2025}

	all := p.MatchRequests(season, "")
	assert.Len(t, all, len(DefaultCompetitions)*DefaultMaxRounds)

	one := p.MatchRequests(season, club.StarsiZaciB)
	require.Len(t, one, DefaultMaxRounds)
	for i, req := range one {
		u, err := url.Parse(req.URL)
		require.NoError(t, err)
		assert.Equal(t, "/zapasy", u.Path)
		assert.Equal(t, "2482", u.Query().Get("soutez"))
		assert.Equal(t, "2025", u.Query().Get("sezona"))
		assert.Equal(t, strconv.Itoa(i+1), u.Query().Get("kolo"))
		assert.Equal(t, club.StarsiZaciB, req.Category)
		assert.Equal(t, "2482", req.IDPrefix)
	}
}

func TestProfile_MaxRounds(t *testing.T) {
	p := New(Config{MaxRounds: 3, Competitions: []Competition{{ID: "9", Category: club.MladsiZaciA}}})
	reqs := p.MatchRequests(ingest.Season{StartYear: 2025}, "")
	assert.Len(t, reqs, 3)
	assert.Empty(t, p.MatchRequests(ingest.Season{StartYear: 2025}, club.StarsiZaciA))
}

func TestProfile_StandingsRequests(t *testing.T) {
	p := New(Config{BaseURL: "https://example.test"})
	reqs := p.StandingsRequests(ingest.Season{StartYear: 2025}, "")
	require.Len(t, reqs, len(DefaultCompetitions))
	u, err := url.Parse(reqs[0].URL)
	require.NoError(t, err)
	assert.Equal(t, "/tabulka", u.Path)
	assert.Equal(t, DefaultCompetitions[0].ID, reqs[0].CompetitionID)
	assert.Equal(t, DefaultCompetitions[0].Category, reqs[0].Category)
}

func TestProfile_Rules(t *testing.T) {
	p := New(Config{})
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, p.RequiresTrackedClub())
	assert.True(t, p.Completed(nil, now.Add(-time.Hour), now))
	assert.False(t, p.Completed(nil, now.Add(time.Hour), now))
	assert.True(t, p.Completed(&scrape.Score{Home: 2, Away: 2}, now.Add(time.Hour), now))
}

func TestProfile_Layouts(t *testing.T) {
	html := `<table class="zapasy">
<tr><th>Kolo</th><th>Datum</th></tr>
<tr><td>3</td><td>6.12.2025</td><td>9:00</td><td>HC Most</td><td>Slovan Ústí B</td><td>1:7</td><td>ZS Most</td></tr>
</table>
<table class="tabulka">
<tr><td>1.</td><td>HC Slovan Ústí</td><td>10</td><td>7</td><td>1</td><td>0</td><td>2</td><td>45:20</td><td>23</td></tr>
</table>`
	doc, err := scrape.ParseDocument(html)
	require.NoError(t, err)
	p := New(Config{})

	var rows []scrape.Row
	for _, row := range scrape.Rows(doc, p.MatchLayout()) {
		rows = append(rows, row)
	}
	require.Len(t, rows, 1)
	cols := p.MatchLayout().Columns
	assert.Equal(t, "Slovan Ústí B", rows[0].At(cols.Away))
	assert.Equal(t, "1:7", rows[0].At(cols.Status))
	assert.Empty(t, rows[0].At(cols.Category))

	table, err := scrape.ParseStandings(doc, p.StandingsLayout(), nil)
	require.NoError(t, err)
	require.Len(t, table, 1)
	require.NotNil(t, table[0].WinsOT)
	assert.Equal(t, 1, *table[0].WinsOT)
}
