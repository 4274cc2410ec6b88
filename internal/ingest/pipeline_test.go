package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/goaliestats/internal/club"
	"github.com/fortuna/goaliestats/internal/scrape"
)

func extractPage(t *testing.T, p Profile, req FetchRequest, html string, filter club.Code) ([]ScrapedMatch, int) {
	t.Helper()
	doc, err := scrape.ParseDocument(html)
	require.NoError(t, err)
	e := NewExtractor(nil, nil)
	e.now = fixedClock(time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC))
	return e.Extract(doc, p, req, filter)
}

func TestExtract_DateRangeRowWithCategoryFilter(t *testing.T) {
	p := &stubProfile{name: "federation", layout: federationLayout}

	matches, rows := extractPage(t, p, FetchRequest{}, federationPage, club.StarsiZaciA)

	assert.Equal(t, 2, rows)
	require.Len(t, matches, 2)

	assert.Equal(t, "starsi-zaci-a-12-0-1", matches[0].ExternalID)
	assert.Equal(t, "starsi-zaci-a-12-0-2", matches[1].ExternalID)
	assert.Equal(t, "2026-01-17T10:00:00", matches[0].DateTime)
	assert.Equal(t, "2026-01-18T10:00:00", matches[1].DateTime)

	for _, m := range matches {
		assert.True(t, m.Completed)
		require.NotNil(t, m.HomeScore)
		require.NotNil(t, m.AwayScore)
		assert.Equal(t, 3, *m.HomeScore)
		assert.Equal(t, 2, *m.AwayScore)
		assert.Equal(t, "Starší žáci A", m.Category)
		assert.Equal(t, club.StarsiZaciA, m.CategoryCode)
		assert.Equal(t, "Arena X", m.Venue)
		assert.Equal(t, "federation", m.Source)
	}
}

func TestExtract_NoFilterKeepsEveryCategory(t *testing.T) {
	p := &stubProfile{name: "federation", layout: federationLayout}

	matches, _ := extractPage(t, p, FetchRequest{}, federationPage, "")

	require.Len(t, matches, 3)
	last := matches[2]
	assert.Equal(t, "mladsi-zaci-b-31-1", last.ExternalID)
	assert.Equal(t, club.MladsiZaciB, last.CategoryCode)
	assert.Nil(t, last.HomeScore)
	assert.False(t, last.Completed)
}

func TestExtract_FilterDropsMismatchedAndUnclassifiedRows(t *testing.T) {
	html := `<table><tbody>
<tr><td></td><td></td><td>1.2.2026</td><td>9:00</td><td></td><td>Liga starších žáků "A"</td><td>1</td><td>1</td><td>Slovan Ústí</td><td>A</td><td></td></tr>
<tr><td></td><td></td><td>2.2.2026</td><td>9:00</td><td></td><td>Liga starších žáků "B"</td><td>1</td><td>2</td><td>Slovan Ústí</td><td>B</td><td></td></tr>
<tr><td></td><td></td><td>3.2.2026</td><td>9:00</td><td></td><td>Přátelský turnaj</td><td>1</td><td>3</td><td>Slovan Ústí</td><td>C</td><td></td></tr>
</tbody></table>`
	p := &stubProfile{name: "federation", layout: federationLayout}

	filtered, _ := extractPage(t, p, FetchRequest{}, html, club.StarsiZaciA)
	require.Len(t, filtered, 1)
	assert.Equal(t, "A", filtered[0].Away)

	all, _ := extractPage(t, p, FetchRequest{}, html, "")
	require.Len(t, all, 3)
	assert.Equal(t, "Přátelský turnaj", all[2].Category)
	assert.Empty(t, all[2].CategoryCode)
	assert.Equal(t, "pratelsky-turnaj-3-2", all[2].ExternalID)
}

func TestExtract_RequestCategoryAndTrackedClub(t *testing.T) {
	layout := scrape.Layout{
		RowSelector: "table tr",
		MinCells:    6,
		Columns: scrape.ColumnMap{
			Round: 0, Date: 1, Time: 2, Home: 3, Away: 4, Status: 5, Venue: 6,
			Category: scrape.Absent, MatchNumber: scrape.Absent,
		},
	}
	html := `<table>
<tr><td>4</td><td>10.1.2026</td><td>8:00</td><td>HC Slovan Ústí B</td><td>HC Most</td><td></td><td>Ústí</td></tr>
<tr><td>4</td><td>10.1.2026</td><td>10:00</td><td>HC Most</td><td>HC Litvínov</td><td>2:2</td><td>Most</td></tr>
<tr><td>4</td><td>3.3.2026</td><td>10:00</td><td>HC Chomutov</td><td>Slovan Usti</td><td></td><td>Chomutov</td></tr>
<tr><td>4</td><td>neznámé</td><td>10:00</td><td>HC Chomutov</td><td>Slovan Usti</td><td></td><td>Chomutov</td></tr>
</table>`
	p := &stubProfile{name: "regional", layout: layout, requireTracked: true, elapsedRule: true}
	req := FetchRequest{Category: club.MladsiZaciA, IDPrefix: "2490"}

	matches, rows := extractPage(t, p, req, html, "")

	assert.Equal(t, 4, rows)
	require.Len(t, matches, 2)
	assert.Equal(t, "2490-mladsi-zaci-a-r4-0", matches[0].ExternalID)
	assert.Equal(t, "Mladší žáci A", matches[0].Category)
	// Past kickoff without a score counts as played for this rule.
	assert.True(t, matches[0].Completed)
	assert.Nil(t, matches[0].HomeScore)
	assert.Equal(t, "2490-mladsi-zaci-a-r4-2", matches[1].ExternalID)
	assert.False(t, matches[1].Completed)
}

func TestExtract_EmptyPage(t *testing.T) {
	p := &stubProfile{name: "federation", layout: federationLayout}
	matches, rows := extractPage(t, p, FetchRequest{}, emptyPage, "")
	assert.Empty(t, matches)
	assert.Zero(t, rows)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Liga starších žáků \"B\"": "liga-starsich-zaku-b",
		"  Ústí nad Labem ":        "usti-nad-labem",
		"r12":                      "r12",
		"--":                       "",
		"":                         "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
