package scrape

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the zone-less ISO-8601 form used for match datetimes.
const TimestampLayout = "2006-01-02T15:04:05"

// SourceLocation is the wall-clock zone the league sites publish in. Parsed
// times are built in it without any conversion.
var SourceLocation = loadSourceLocation()

func loadSourceLocation() *time.Location {
	loc, err := time.LoadLocation("Europe/Prague")
	if err != nil {
		return time.UTC
	}
	return loc
}

var (
	datePattern = regexp.MustCompile(`^(\d{1,2})\.\s*(\d{1,2})\.\s*(\d{4})$`)
	timePattern = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// ParseDateTime combines a D.M.YYYY date and an HH:MM (or HH:MM - HH:MM)
// time. A missing or unreadable time means midnight. ok is false when the
// date does not match the pattern or names a day that does not exist.
func ParseDateTime(dateText, timeText string) (time.Time, bool) {
	m := datePattern.FindStringSubmatch(strings.TrimSpace(dateText))
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, SourceLocation)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, false
	}

	hour, minute := parseClock(timeText)
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, SourceLocation), true
}

// parseClock takes the first HH:MM in text, so a range yields its start.
func parseClock(text string) (int, int) {
	m := timePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0
	}
	return hour, minute
}

// ParseDateRange reads a date cell that may hold "D1 - D2". Each fragment
// that parses yields one time sharing timeCell's time of day, in the order
// written. When no fragment parses the whole cell is tried as one date.
func ParseDateRange(dateCell, timeCell string) []time.Time {
	var out []time.Time
	for _, frag := range strings.Split(dateCell, "-") {
		if t, ok := ParseDateTime(frag, timeCell); ok {
			out = append(out, t)
		}
	}
	if len(out) > 0 {
		return out
	}
	if t, ok := ParseDateTime(dateCell, timeCell); ok {
		return []time.Time{t}
	}
	return nil
}

// FormatTimestamp renders t as wall clock, zero-padded, without a zone.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
