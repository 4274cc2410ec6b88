// Package club holds the tracked club's identity and the age-category table.
//
// Both are data tables consumed by one containment matcher: adding a spelling
// of the club name or a league alias is a change to a list, not to code.
package club

import (
	"strings"
)

// DefaultVariants are known spellings of the tracked club as they appear on
// league sites. Entries are lowercase; matching is by containment.
var DefaultVariants = []string{
	"slovan ústí",
	"slovan usti",
	"slovan ú.",
	"slovan u.",
	"slovan ústí nad labem",
	"slovan usti nad labem",
	"slovan ústí n.l.",
	"slovan usti n.l.",
	"hc slovan ústí",
	"hc slovan usti",
	"ústečtí lvi",
	"ustecti lvi",
	"slovan ústí b",
	"slovan usti b",
}

// Matcher answers whether a team name refers to the tracked club.
type Matcher struct {
	variants []string
}

// NewMatcher builds a Matcher from DefaultVariants plus any extras.
func NewMatcher(extra ...string) *Matcher {
	variants := make([]string, 0, len(DefaultVariants)+len(extra))
	seen := make(map[string]bool)
	for _, v := range append(append([]string{}, DefaultVariants...), extra...) {
		v = Normalize(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		variants = append(variants, v)
	}
	return &Matcher{variants: variants}
}

// IsTrackedClub reports whether name contains any known variant. An unseen
// spelling is a gap in the variant list, not something to guess around.
func (m *Matcher) IsTrackedClub(name string) bool {
	return containsAny(Normalize(name), m.variants)
}

// Variants returns a copy of the normalized variant list.
func (m *Matcher) Variants() []string {
	return append([]string(nil), m.variants...)
}

// StandingsMatcher is the looser check used for standings tables: a single
// lowercase term, no variant list.
type StandingsMatcher struct {
	term string
}

func NewStandingsMatcher(term string) StandingsMatcher {
	return StandingsMatcher{term: Normalize(term)}
}

// IsOurTeam reports whether the team name contains the term.
func (s StandingsMatcher) IsOurTeam(name string) bool {
	if s.term == "" {
		return false
	}
	return strings.Contains(Normalize(name), s.term)
}

// Normalize lowercases, collapses whitespace runs and trims.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func containsAny(text string, needles []string) bool {
	if text == "" {
		return false
	}
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
