package ingest

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/fortuna/goaliestats/internal/club"
	"github.com/fortuna/goaliestats/internal/scrape"
)

// ScrapedMatch is one match instance read from a source table, before it
// is mapped onto the stored schema.
type ScrapedMatch struct {
	ExternalID   string
	Source       string
	Home         string
	Away         string
	HomeScore    *int
	AwayScore    *int
	DateTime     string
	Kickoff      time.Time
	Venue        string
	Category     string
	CategoryCode club.Code
	Completed    bool
	StatusText   string
}

// Extractor turns table rows into ScrapedMatch values using a profile's
// layout and rules.
type Extractor struct {
	identity   *club.Matcher
	classifier *club.Classifier
	now        func() time.Time
}

// NewExtractor builds an extractor. nil arguments fall back to the default
// variant list and category table.
func NewExtractor(identity *club.Matcher, classifier *club.Classifier) *Extractor {
	if identity == nil {
		identity = club.NewMatcher()
	}
	if classifier == nil {
		classifier = club.NewClassifier()
	}
	return &Extractor{identity: identity, classifier: classifier, now: time.Now}
}

// Extract reads every data row of doc. rows counts the table rows seen,
// before any filtering, so callers can tell an empty page from a page
// whose rows were all filtered out.
func (e *Extractor) Extract(doc *goquery.Document, p Profile, req FetchRequest, filter club.Code) (matches []ScrapedMatch, rows int) {
	layout := p.MatchLayout()
	cols := layout.Columns
	now := e.now()

	for idx, row := range scrape.Rows(doc, layout) {
		rows++

		home, away := row.At(cols.Home), row.At(cols.Away)
		if home == "" || away == "" {
			continue
		}
		if p.RequiresTrackedClub() && !e.identity.IsTrackedClub(home) && !e.identity.IsTrackedClub(away) {
			continue
		}

		rawCategory := row.At(cols.Category)
		category, known := e.resolveCategory(req, rawCategory)
		if filter != "" && (!known || category.Code != filter) {
			continue
		}

		kickoffs := scrape.ParseDateRange(row.At(cols.Date), row.At(cols.Time))
		if len(kickoffs) == 0 {
			continue
		}

		statusText := row.At(cols.Status)
		score := p.ParseScore(statusText)

		display, code := rawCategory, club.Code("")
		if known {
			display, code = category.Name, category.Code
		}
		categoryKey := string(code)
		if categoryKey == "" {
			categoryKey = rawCategory
		}
		baseID := externalID(req.IDPrefix, categoryKey, rowKey(row.At(cols.MatchNumber), row.At(cols.Round)), idx)

		for i, kickoff := range kickoffs {
			id := baseID
			if len(kickoffs) > 1 {
				id = joinID(baseID, strconv.Itoa(i+1))
			}
			m := ScrapedMatch{
				ExternalID:   id,
				Source:       p.Name(),
				Home:         home,
				Away:         away,
				DateTime:     scrape.FormatTimestamp(kickoff),
				Kickoff:      kickoff,
				Venue:        row.At(cols.Venue),
				Category:     display,
				CategoryCode: code,
				Completed:    p.Completed(score, kickoff, now),
				StatusText:   statusText,
			}
			if score != nil {
				homeScore, awayScore := score.Home, score.Away
				m.HomeScore, m.AwayScore = &homeScore, &awayScore
			}
			matches = append(matches, m)
		}
	}
	return matches, rows
}

// resolveCategory prefers the category the request was issued for and
// otherwise classifies the row's label.
func (e *Extractor) resolveCategory(req FetchRequest, label string) (club.Category, bool) {
	if req.Category != "" {
		return e.classifier.Lookup(req.Category)
	}
	return e.classifier.Classify(label)
}

func rowKey(matchNumber, round string) string {
	if matchNumber != "" {
		return matchNumber
	}
	if round != "" {
		return "r" + round
	}
	return ""
}

func externalID(prefix, category, key string, idx int) string {
	return joinID(prefix, category, key, strconv.Itoa(idx))
}

func joinID(parts ...string) string {
	var slugs []string
	for _, p := range parts {
		if s := Slugify(p); s != "" {
			slugs = append(slugs, s)
		}
	}
	return strings.Join(slugs, "-")
}

// Slugify lowercases s, strips diacritics and joins alphanumeric runs with
// single hyphens.
func Slugify(s string) string {
	// Chained transformers keep state, so each call builds its own.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
