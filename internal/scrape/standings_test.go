package scrape

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/goaliestats/internal/store"
)

var standingsLayout = StandingsLayout{RowSelector: "table.standings tr", MinCells: 6}

func isSlovan(name string) bool { return name == "HC Slovan Ústí" }

func parseStandingsHTML(t *testing.T, html string) ([]store.StandingsRow, error) {
	t.Helper()
	doc, err := ParseDocument(html)
	require.NoError(t, err)
	return ParseStandings(doc, standingsLayout, isSlovan)
}

func TestParseStandings_OvertimeLayout(t *testing.T) {
	html := `<table class="standings">
	<tr><th>#</th><th>Tým</th><th>Z</th><th>V</th><th>VP</th><th>PP</th><th>P</th><th>Skóre</th><th>B</th></tr>
	<tr><td>1.</td><td>HC Slovan Ústí</td><td>10</td><td>7</td><td>1</td><td>0</td><td>2</td><td>45:20</td><td>23</td></tr>
	<tr><td>2.</td><td>HC Jiný</td><td>10</td><td>6</td><td>0</td><td>2</td><td>2</td><td>30:25</td><td>20</td></tr>
	</table>`

	rows, err := parseStandingsHTML(t, html)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, "HC Slovan Ústí", first.TeamName)
	assert.Equal(t, 10, first.GamesPlayed)
	assert.Equal(t, 7, first.Wins)
	require.NotNil(t, first.WinsOT)
	require.NotNil(t, first.LossesOT)
	assert.Equal(t, 1, *first.WinsOT)
	assert.Equal(t, 0, *first.LossesOT)
	assert.Equal(t, 2, first.Losses)
	assert.Nil(t, first.Draws)
	assert.Equal(t, 45, first.GoalsFor)
	assert.Equal(t, 20, first.GoalsAgainst)
	assert.Equal(t, 25, first.GoalDifference)
	assert.Equal(t, 23, first.Points)
	assert.True(t, first.IsOurTeam)

	assert.Equal(t, 2, *rows[1].LossesOT)
	assert.False(t, rows[1].IsOurTeam)
}

func TestParseStandings_RegulationLayout(t *testing.T) {
	html := `<table class="standings">
	<tr><td>1</td><td>HC Jiný</td><td>8</td><td>6</td><td>1</td><td>1</td><td>40:12</td><td>13</td></tr>
	<tr><td>2</td><td>HC Slovan Ústí</td><td>8</td><td>5</td><td>0</td><td>3</td><td>33 : 21</td><td>10</td></tr>
	</table>`

	rows, err := parseStandingsHTML(t, html)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	for _, row := range rows {
		assert.NotNil(t, row.Draws)
		assert.Nil(t, row.WinsOT)
		assert.Nil(t, row.LossesOT)
	}
	assert.Equal(t, 1, *rows[0].Draws)
	assert.Equal(t, 13, rows[0].Points)
	assert.Equal(t, 12, rows[1].GoalDifference)
	assert.True(t, rows[1].IsOurTeam)
}

func TestParseStandings_SeparateGoalCells(t *testing.T) {
	html := `<table class="standings">
	<tr><td>1.</td><td>HC Jiný</td><td>8</td><td>6</td><td>1</td><td>1</td><td>40</td><td>12</td><td>13</td></tr>
	</table>`

	rows, err := parseStandingsHTML(t, html)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 40, rows[0].GoalsFor)
	assert.Equal(t, 12, rows[0].GoalsAgainst)
	assert.Equal(t, 28, rows[0].GoalDifference)
	assert.Equal(t, 13, rows[0].Points)
	require.NotNil(t, rows[0].Draws)
	assert.Equal(t, 1, *rows[0].Draws)
}

func TestParseStandings_SortsAndReassignsPositions(t *testing.T) {
	html := `<table class="standings">
	<tr><td>3.</td><td>Tým C</td><td>8</td><td>2</td><td>0</td><td>6</td><td>10:30</td><td>4</td></tr>
	<tr><td></td><td>Tým X</td><td>8</td><td>0</td><td>0</td><td>8</td><td>1:50</td><td>0</td></tr>
	<tr><td>1.</td><td>Tým A</td><td>8</td><td>7</td><td>0</td><td>1</td><td>30:5</td><td>14</td></tr>
	<tr><td>1.</td><td>Tým B</td><td>8</td><td>6</td><td>1</td><td>1</td><td>25:9</td><td>13</td></tr>
	</table>`

	rows, err := parseStandingsHTML(t, html)
	require.NoError(t, err)

	var names []string
	for i, row := range rows {
		names = append(names, row.TeamName)
		assert.Equal(t, i+1, row.Position)
	}
	assert.Equal(t, []string{"Tým A", "Tým B", "Tým C", "Tým X"}, names)
}

func TestParseStandings_GoalDifferenceAlwaysRecomputed(t *testing.T) {
	html := `<table class="standings">
	<tr><td>1.</td><td>Tým A</td><td>8</td><td>7</td><td>0</td><td>1</td><td>30:5</td><td>14</td></tr>
	<tr><td>2.</td><td>Tým B</td><td>8</td><td>1</td><td>0</td><td>7</td><td>4:31</td><td>2</td></tr>
	</table>`

	rows, err := parseStandingsHTML(t, html)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 25, rows[0].GoalDifference)
	assert.Equal(t, -27, rows[1].GoalDifference)
}

func TestParseStandings_SkipsShortAndHeaderRows(t *testing.T) {
	html := `<table class="standings">
	<tr><td>#</td><td>Tým</td><td>Z</td><td>V</td><td>R</td><td>P</td><td>Skóre</td><td>B</td></tr>
	<tr><td colspan="8">Základní část</td></tr>
	<tr><td>1.</td><td>Tým A</td><td>8</td></tr>
	<tr><td>1.</td><td>Tým A</td><td>8</td><td>7</td><td>0</td><td>1</td><td>30:5</td><td>14</td></tr>
	</table>`

	rows, err := parseStandingsHTML(t, html)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Tým A", rows[0].TeamName)
}

func TestParseStandings_EmptyIsUnavailable(t *testing.T) {
	_, err := parseStandingsHTML(t, `<table class="standings"><tr><th>Tým</th></tr></table>`)
	assert.True(t, errors.Is(err, ErrStandingsUnavailable))

	_, err = parseStandingsHTML(t, `<p>nic</p>`)
	assert.True(t, errors.Is(err, ErrStandingsUnavailable))
}

func TestParseStandings_ZeroPointsIsNotUnavailable(t *testing.T) {
	html := `<table class="standings">
	<tr><td>1.</td><td>Tým A</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0:0</td><td>0</td></tr>
	</table>`

	rows, err := parseStandingsHTML(t, html)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].Points)
}
