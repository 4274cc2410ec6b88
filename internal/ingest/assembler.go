package ingest

import (
	"cmp"
	"slices"

	"github.com/fortuna/goaliestats/internal/club"
	"github.com/fortuna/goaliestats/internal/store"
)

// MatchIDPrefix is prepended to the external id to form the stored id.
const MatchIDPrefix = "imported-"

// AssembleResult is the deduplicated, sorted match list with its counters.
type AssembleResult struct {
	Matches   []store.Match
	Total     int
	Completed int
	Upcoming  int
}

// Assemble deduplicates scraped matches by external id, the later entry
// winning, maps them to stored matches and sorts by kickoff. Ties are
// broken by id so the order is the same on every run.
func Assemble(scraped []ScrapedMatch, season Season, identity *club.Matcher) AssembleResult {
	if identity == nil {
		identity = club.NewMatcher()
	}

	byID := make(map[string]ScrapedMatch, len(scraped))
	for _, m := range scraped {
		byID[m.ExternalID] = m
	}

	matches := make([]store.Match, 0, len(byID))
	for _, m := range byID {
		matches = append(matches, toMatch(m, season, identity))
	}
	slices.SortFunc(matches, func(a, b store.Match) int {
		if c := cmp.Compare(a.DateTime, b.DateTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	res := AssembleResult{Matches: matches, Total: len(matches)}
	for _, m := range matches {
		if m.Completed() {
			res.Completed++
		}
	}
	res.Upcoming = res.Total - res.Completed
	return res
}

func toMatch(m ScrapedMatch, season Season, identity *club.Matcher) store.Match {
	isHome := identity.IsTrackedClub(m.Home)
	opponent := m.Home
	if isHome {
		opponent = m.Away
	}

	out := store.Match{
		ID:           MatchIDPrefix + m.ExternalID,
		ExternalID:   m.ExternalID,
		Source:       m.Source,
		SeasonID:     season.String(),
		HomeTeam:     m.Home,
		AwayTeam:     m.Away,
		Opponent:     opponent,
		IsHome:       isHome,
		HomeScore:    m.HomeScore,
		AwayScore:    m.AwayScore,
		DateTime:     m.DateTime,
		Venue:        m.Venue,
		Category:     m.Category,
		CategoryCode: string(m.CategoryCode),
		Status:       store.StatusScheduled,
	}
	if m.Completed {
		out.Status = store.StatusCompleted
		out.GoalieStats = &store.GoalieStats{}
	}
	return out
}
