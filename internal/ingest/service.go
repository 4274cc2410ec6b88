package ingest

import (
	"context"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/fortuna/goaliestats/internal/club"
	"github.com/fortuna/goaliestats/internal/logging"
	"github.com/fortuna/goaliestats/internal/store"
)

// Request is an import trigger. Both fields are optional: the season
// defaults to the current one and an empty category imports all of them.
type Request struct {
	Season   string `json:"season,omitempty" validate:"omitempty,season"`
	Category string `json:"category,omitempty" validate:"omitempty,category"`
}

// Result is what an import returns to its caller.
type Result struct {
	Success        bool                         `json:"success"`
	ImportID       string                       `json:"importId"`
	Season         string                       `json:"season"`
	Category       string                       `json:"category,omitempty"`
	Matches        []store.Match                `json:"matches"`
	Standings      []store.CompetitionStandings `json:"standings"`
	TotalCount     int                          `json:"totalCount"`
	CompletedCount int                          `json:"completedCount"`
	UpcomingCount  int                          `json:"upcomingCount"`
	// Elapsed is the wall time of the import in milliseconds.
	Elapsed     int64     `json:"elapsed"`
	CompletedAt time.Time `json:"completedAt"`
}

// Summary is the import notification payload.
type Summary struct {
	ImportID       string    `json:"importId"`
	Season         string    `json:"season"`
	Category       string    `json:"category,omitempty"`
	TotalCount     int       `json:"totalCount"`
	CompletedCount int       `json:"completedCount"`
	UpcomingCount  int       `json:"upcomingCount"`
	StandingsCount int       `json:"standingsCount"`
	Elapsed        int64     `json:"elapsed"`
	CompletedAt    time.Time `json:"completedAt"`
}

// Summary drops the record lists from r.
func (r *Result) Summary() Summary {
	return Summary{
		ImportID:       r.ImportID,
		Season:         r.Season,
		Category:       r.Category,
		TotalCount:     r.TotalCount,
		CompletedCount: r.CompletedCount,
		UpcomingCount:  r.UpcomingCount,
		StandingsCount: len(r.Standings),
		Elapsed:        r.Elapsed,
		CompletedAt:    r.CompletedAt,
	}
}

// Cache keeps recent results for read-only triggers. A miss is reported
// as (nil, false, nil).
type Cache interface {
	GetResult(ctx context.Context, key string) (*Result, bool, error)
	SetResult(ctx context.Context, key string, result *Result, ttl time.Duration) error
}

// Sink stores import output. It never feeds back into an import.
type Sink interface {
	SaveImport(ctx context.Context, importID string, matches []store.Match, standings []store.CompetitionStandings) error
}

// Notifier announces finished imports.
type Notifier interface {
	PublishImport(ctx context.Context, summary Summary) error
}

// Importer is the operation behind the HTTP triggers and the CLI.
type Importer interface {
	Import(ctx context.Context, req Request) (*Result, error)
	CachedImport(ctx context.Context, req Request) (*Result, error)
}

// DefaultCacheTTL is used when WithCache is given a non-positive TTL.
const DefaultCacheTTL = 2 * time.Minute

// Service runs imports across every configured profile.
type Service struct {
	profiles     []Profile
	orchestrator *Orchestrator
	identity     *club.Matcher
	cache        Cache
	cacheTTL     time.Duration
	sink         Sink
	notifiers    []Notifier
	logger       *logging.Logger
	now          func() time.Time
}

type Option func(*Service)

func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		s.cache, s.cacheTTL = c, ttl
	}
}

func WithSink(sink Sink) Option {
	return func(s *Service) { s.sink = sink }
}

func WithNotifiers(notifiers ...Notifier) Option {
	return func(s *Service) { s.notifiers = append(s.notifiers, notifiers...) }
}

func WithLogger(logger *logging.Logger) Option {
	return func(s *Service) { s.logger = logger.Component("import") }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds an import service. Profiles later in the list win
// external id collisions with earlier ones.
func NewService(orchestrator *Orchestrator, identity *club.Matcher, profiles []Profile, opts ...Option) *Service {
	if identity == nil {
		identity = club.NewMatcher()
	}
	s := &Service{
		profiles:     profiles,
		orchestrator: orchestrator,
		identity:     identity,
		logger:       logging.Default().Component("import"),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveRequest validates req and fills in the default season.
func (s *Service) ResolveRequest(req Request) (Season, club.Code, error) {
	season := CurrentSeason(s.now())
	if req.Season != "" {
		var err error
		if season, err = ParseSeason(req.Season); err != nil {
			return Season{}, "", err
		}
	}
	category, err := club.ParseCode(req.Category)
	if err != nil {
		return Season{}, "", err
	}
	return season, category, nil
}

// CacheKey is the cache entry for one season and category.
func CacheKey(season Season, category club.Code) string {
	c := string(category)
	if c == "" {
		c = "all"
	}
	return "import:" + season.String() + ":" + c
}

// Import fetches every profile, assembles the result and hands it to the
// cache, sink and notifiers. Only an invalid request is an error; failing
// sources and failing side effects are logged.
func (s *Service) Import(ctx context.Context, req Request) (*Result, error) {
	season, category, err := s.ResolveRequest(req)
	if err != nil {
		return nil, err
	}
	if s.orchestrator == nil {
		return nil, errors.New("import service has no orchestrator")
	}

	start := s.now()
	importID := uuid.NewString()
	logger := s.logger.With("import_id", importID, "season", season.String(), "category", string(category))
	logger.Info("import started", "sources", len(s.profiles))

	// Each task writes only its own slot.
	scraped := make([][]ScrapedMatch, len(s.profiles))
	standings := make([][]store.CompetitionStandings, len(s.profiles))
	var wg conc.WaitGroup
	for i, p := range s.profiles {
		wg.Go(func() {
			scraped[i] = s.orchestrator.FetchMatches(ctx, p, season, category)
		})
		wg.Go(func() {
			standings[i] = s.orchestrator.FetchStandings(ctx, p, season, category)
		})
	}
	wg.Wait()

	assembled := Assemble(slices.Concat(scraped...), season, s.identity)
	tables := slices.Concat(standings...)
	if tables == nil {
		tables = []store.CompetitionStandings{}
	}

	finished := s.now()
	result := &Result{
		Success:        true,
		ImportID:       importID,
		Season:         season.String(),
		Category:       string(category),
		Matches:        assembled.Matches,
		Standings:      tables,
		TotalCount:     assembled.Total,
		CompletedCount: assembled.Completed,
		UpcomingCount:  assembled.Upcoming,
		Elapsed:        finished.Sub(start).Milliseconds(),
		CompletedAt:    finished.UTC(),
	}
	logger.Info("import finished",
		"matches", result.TotalCount,
		"completed", result.CompletedCount,
		"upcoming", result.UpcomingCount,
		"standings", len(result.Standings),
		"elapsed_ms", result.Elapsed)

	s.afterImport(ctx, logger, CacheKey(season, category), result)
	return result, nil
}

// CachedImport serves a fresh cached result when there is one and runs an
// import otherwise.
func (s *Service) CachedImport(ctx context.Context, req Request) (*Result, error) {
	season, category, err := s.ResolveRequest(req)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		key := CacheKey(season, category)
		cached, ok, err := s.cache.GetResult(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("cache read failed", "key", key, "error", err)
		case ok:
			s.logger.Debug("serving cached import", "key", key, "import_id", cached.ImportID)
			return cached, nil
		}
	}
	return s.Import(ctx, Request{Season: season.String(), Category: string(category)})
}

func (s *Service) afterImport(ctx context.Context, logger *logging.Logger, key string, result *Result) {
	if s.cache != nil {
		if err := s.cache.SetResult(ctx, key, result, s.cacheTTL); err != nil {
			logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	if s.sink != nil {
		if err := s.sink.SaveImport(ctx, result.ImportID, result.Matches, result.Standings); err != nil {
			logger.Warn("saving import failed", "error", err)
		}
	}
	summary := result.Summary()
	for _, n := range s.notifiers {
		if err := n.PublishImport(ctx, summary); err != nil {
			logger.Warn("import notification failed", "error", err)
		}
	}
}
