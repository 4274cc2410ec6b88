package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrInvalidSeason is returned for season strings that are not two
// consecutive years written as YYYY-YYYY.
var ErrInvalidSeason = errors.New("invalid season")

var seasonPattern = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

// seasonStartMonth is the month a new hockey season begins in.
const seasonStartMonth = time.August

// Season is a hockey season spanning two calendar years.
type Season struct {
	StartYear int
}

// ParseSeason reads "2025-2026". Empty input is an error; callers wanting a
// default use CurrentSeason.
func ParseSeason(s string) (Season, error) {
	m := seasonPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Season{}, errors.Wrapf(ErrInvalidSeason, "%q is not YYYY-YYYY", s)
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if end != start+1 {
		return Season{}, errors.Wrapf(ErrInvalidSeason, "%q does not span consecutive years", s)
	}
	return Season{StartYear: start}, nil
}

// CurrentSeason returns the season in progress at now.
func CurrentSeason(now time.Time) Season {
	if now.Month() >= seasonStartMonth {
		return Season{StartYear: now.Year()}
	}
	return Season{StartYear: now.Year() - 1}
}

// EndYear is the calendar year the season finishes in.
func (s Season) EndYear() int {
	return s.StartYear + 1
}

func (s Season) String() string {
	return fmt.Sprintf("%d-%d", s.StartYear, s.EndYear())
}
