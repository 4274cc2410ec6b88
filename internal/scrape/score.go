package scrape

import (
	"regexp"
	"strconv"
)

// Score is a parsed home/away result.
type Score struct {
	Home int
	Away int
}

var scorePattern = regexp.MustCompile(`(\d+)\s*[:\-]\s*(\d+)`)

// ParseScore finds the first "<n>:<n>" or "<n>-<n>" in text, bracketed or
// not. nil means the score is unknown, usually because the match has not
// been played.
func ParseScore(text string) *Score {
	m := scorePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	home, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	away, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	return &Score{Home: home, Away: away}
}
