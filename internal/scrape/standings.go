package scrape

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"

	"github.com/fortuna/goaliestats/internal/store"
)

// ErrStandingsUnavailable means the page carried no standings rows at all,
// which is different from a table in which a team has zero points.
var ErrStandingsUnavailable = errors.New("standings unavailable")

// StandingsLayout selects the rows of a standings table.
type StandingsLayout struct {
	RowSelector string
	MinCells    int
}

var goalsPattern = regexp.MustCompile(`^(\d+)\s*:\s*(\d+)$`)

// rawStandingsRow is a row split into its fixed head, the variable stat span
// between games played and goals, and its tail.
type rawStandingsRow struct {
	position     int
	teamName     string
	gamesPlayed  int
	stats        []int
	goalsFor     int
	goalsAgainst int
	points       int
}

// ParseStandings reads a standings table. Sites differ in two ways: goals
// are either one "F:A" cell or two cells, and overtime tables replace the
// draws column with overtime wins and losses, which shifts points right.
// The layout is decided once for the whole row set from the width of the
// stat span. Positions are reassigned 1..N after sorting, and goal
// difference is always recomputed.
func ParseStandings(doc *goquery.Document, layout StandingsLayout, isOurTeam func(string) bool) ([]store.StandingsRow, error) {
	var raws []rawStandingsRow
	for _, cells := range Rows(doc, Layout{RowSelector: layout.RowSelector, MinCells: layout.MinCells}) {
		if raw, ok := splitStandingsRow(cells); ok {
			raws = append(raws, raw)
		}
	}
	if len(raws) == 0 {
		return nil, ErrStandingsUnavailable
	}

	overtime := false
	for _, raw := range raws {
		if len(raw.stats) >= 4 {
			overtime = true
			break
		}
	}

	rows := make([]store.StandingsRow, 0, len(raws))
	for _, raw := range raws {
		row := store.StandingsRow{
			Position:       raw.position,
			TeamName:       raw.teamName,
			GamesPlayed:    raw.gamesPlayed,
			GoalsFor:       raw.goalsFor,
			GoalsAgainst:   raw.goalsAgainst,
			GoalDifference: raw.goalsFor - raw.goalsAgainst,
			Points:         raw.points,
		}
		stat := func(i int) int {
			if i < len(raw.stats) {
				return raw.stats[i]
			}
			return 0
		}
		if overtime {
			winsOT, lossesOT := stat(1), stat(2)
			row.Wins = stat(0)
			row.WinsOT = &winsOT
			row.LossesOT = &lossesOT
			row.Losses = stat(3)
		} else {
			draws := stat(1)
			row.Wins = stat(0)
			row.Draws = &draws
			row.Losses = stat(2)
		}
		if isOurTeam != nil {
			row.IsOurTeam = isOurTeam(row.TeamName)
		}
		rows = append(rows, row)
	}

	slices.SortStableFunc(rows, func(a, b store.StandingsRow) int {
		return rankKey(a.Position) - rankKey(b.Position)
	})
	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows, nil
}

// rankKey puts rows without a readable position after all ranked rows.
func rankKey(pos int) int {
	if pos <= 0 {
		return 1 << 30
	}
	return pos
}

func splitStandingsRow(cells Row) (rawStandingsRow, bool) {
	if len(cells) < 6 {
		return rawStandingsRow{}, false
	}
	team := cells.At(1)
	played, ok := atoi(cells.At(2))
	if team == "" || !ok {
		// Header rows rendered with td cells land here.
		return rawStandingsRow{}, false
	}

	raw := rawStandingsRow{teamName: team, gamesPlayed: played}
	raw.position, _ = atoi(strings.TrimSuffix(cells.At(0), "."))

	goalsIdx := -1
	for i := 3; i < len(cells); i++ {
		if goalsPattern.MatchString(cells[i]) {
			goalsIdx = i
			break
		}
	}

	var statCells []string
	if goalsIdx >= 0 {
		m := goalsPattern.FindStringSubmatch(cells[goalsIdx])
		raw.goalsFor, _ = strconv.Atoi(m[1])
		raw.goalsAgainst, _ = strconv.Atoi(m[2])
		raw.points, _ = atoi(cells.At(goalsIdx + 1))
		statCells = cells[3:goalsIdx]
	} else {
		n := len(cells)
		raw.goalsFor, _ = atoi(cells[n-3])
		raw.goalsAgainst, _ = atoi(cells[n-2])
		raw.points, _ = atoi(cells[n-1])
		statCells = cells[3 : n-3]
	}

	raw.stats = make([]int, len(statCells))
	for i, c := range statCells {
		raw.stats[i], _ = atoi(c)
	}
	return raw, true
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
