package ingest

import (
	"context"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/iter"

	"github.com/fortuna/goaliestats/internal/club"
	"github.com/fortuna/goaliestats/internal/logging"
	"github.com/fortuna/goaliestats/internal/scrape"
	"github.com/fortuna/goaliestats/internal/store"
)

// standingsNamespace scopes the name-based standings ids.
var standingsNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("goaliestats/standings"))

// StandingsID is stable for a source, season and competition, so a
// re-import replaces the previous table.
func StandingsID(source string, season Season, externalCompetitionID string) string {
	name := source + "|" + season.String() + "|" + externalCompetitionID
	return uuid.NewSHA1(standingsNamespace, []byte(name)).String()
}

// Orchestrator issues a profile's requests concurrently and gathers what
// succeeded. A failed request contributes nothing and is only logged.
type Orchestrator struct {
	fetcher     Fetcher
	extractor   *Extractor
	standings   club.StandingsMatcher
	diagnostics *Diagnostics
	logger      *logging.Logger
	now         func() time.Time
}

// NewOrchestrator wires a fetcher to the extraction pipeline. diagnostics
// may be nil.
func NewOrchestrator(fetcher Fetcher, extractor *Extractor, standings club.StandingsMatcher, diagnostics *Diagnostics, logger *logging.Logger) *Orchestrator {
	if extractor == nil {
		extractor = NewExtractor(nil, nil)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{
		fetcher:     fetcher,
		extractor:   extractor,
		standings:   standings,
		diagnostics: diagnostics,
		logger:      logger.Component("orchestrator"),
		now:         time.Now,
	}
}

type pageResult struct {
	req     FetchRequest
	matches []ScrapedMatch
	rows    int
	html    string
	fetched bool
}

// FetchMatches runs every match request of p at once and concatenates the
// per-page results after all of them finish. When no fetched page held a
// single table row, the first page is kept as a diagnostic capture.
func (o *Orchestrator) FetchMatches(ctx context.Context, p Profile, season Season, category club.Code) []ScrapedMatch {
	reqs := p.MatchRequests(season, category)
	if len(reqs) == 0 {
		return nil
	}
	logger := o.logger.With("source", p.Name())

	// One worker per request: the whole batch is in flight at once.
	pages := iter.Mapper[FetchRequest, pageResult]{MaxGoroutines: len(reqs)}.Map(reqs, func(req *FetchRequest) pageResult {
		html, err := o.fetcher.Fetch(ctx, req.URL)
		if err != nil {
			logger.Warn("match fetch failed", "request", req.Label, "url", req.URL, "error", err)
			return pageResult{req: *req}
		}
		doc, err := scrape.ParseDocument(html)
		if err != nil {
			logger.Warn("unparsable match page", "request", req.Label, "url", req.URL, "error", err)
			return pageResult{req: *req, html: html, fetched: true}
		}
		matches, rows := o.extractor.Extract(doc, p, *req, category)
		return pageResult{req: *req, matches: matches, rows: rows, html: html, fetched: true}
	})

	var (
		batches  = make([][]ScrapedMatch, 0, len(pages))
		rows     int
		fetched  int
		firstHit = -1
	)
	for i, page := range pages {
		batches = append(batches, page.matches)
		rows += page.rows
		if page.fetched {
			fetched++
			if firstHit < 0 {
				firstHit = i
			}
		}
	}
	matches := slices.Concat(batches...)

	logger.Info("match pages fetched",
		"requests", len(reqs), "succeeded", fetched, "rows", rows, "matches", len(matches))
	if rows == 0 && firstHit >= 0 {
		first := pages[firstHit]
		o.diagnostics.Capture(p.Name(), first.req.URL, first.html)
	}
	return matches
}

// FetchStandings fetches and parses each competition table of p at once.
// Competitions without a table are skipped.
func (o *Orchestrator) FetchStandings(ctx context.Context, p Profile, season Season, category club.Code) []store.CompetitionStandings {
	reqs := p.StandingsRequests(season, category)
	if len(reqs) == 0 {
		return nil
	}
	logger := o.logger.With("source", p.Name())
	layout := p.StandingsLayout()

	tables := iter.Mapper[StandingsRequest, *store.CompetitionStandings]{MaxGoroutines: len(reqs)}.Map(reqs, func(req *StandingsRequest) *store.CompetitionStandings {
		html, err := o.fetcher.Fetch(ctx, req.URL)
		if err != nil {
			logger.Warn("standings fetch failed", "competition", req.CompetitionID, "url", req.URL, "error", err)
			return nil
		}
		doc, err := scrape.ParseDocument(html)
		if err != nil {
			logger.Warn("unparsable standings page", "competition", req.CompetitionID, "error", err)
			return nil
		}
		rows, err := scrape.ParseStandings(doc, layout, o.standings.IsOurTeam)
		if err != nil {
			if errors.Is(err, scrape.ErrStandingsUnavailable) {
				logger.Info("standings unavailable", "competition", req.CompetitionID, "url", req.URL)
				o.diagnostics.Capture(p.Name()+"-standings", req.URL, html)
			} else {
				logger.Warn("standings parse failed", "competition", req.CompetitionID, "error", err)
			}
			return nil
		}

		competitionID := string(req.Category)
		if competitionID == "" {
			competitionID = req.CompetitionID
		}
		return &store.CompetitionStandings{
			ID:                    StandingsID(p.Name(), season, req.CompetitionID),
			CompetitionID:         competitionID,
			SeasonID:              season.String(),
			ExternalCompetitionID: req.CompetitionID,
			Source:                p.Name(),
			UpdatedAt:             o.now().UTC(),
			Rows:                  rows,
		}
	})

	out := make([]store.CompetitionStandings, 0, len(tables))
	for _, t := range tables {
		if t != nil {
			out = append(out, *t)
		}
	}
	logger.Info("standings fetched", "requests", len(reqs), "tables", len(out))
	return out
}
