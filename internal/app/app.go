// Package app wires configuration into a running import service.
package app

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/goaliestats/internal/api/rest"
	"github.com/fortuna/goaliestats/internal/api/websocket"
	"github.com/fortuna/goaliestats/internal/cache"
	"github.com/fortuna/goaliestats/internal/club"
	"github.com/fortuna/goaliestats/internal/config"
	"github.com/fortuna/goaliestats/internal/ingest"
	"github.com/fortuna/goaliestats/internal/logging"
	"github.com/fortuna/goaliestats/internal/publisher"
	"github.com/fortuna/goaliestats/internal/store"
	"github.com/fortuna/goaliestats/internal/store/repository"
)

const (
	connectAttempts = 5
	connectDelay    = 2 * time.Second
)

// App holds the import service and the backends it was built with.
type App struct {
	Service      *ingest.Service
	Events       *websocket.Server
	HealthChecks map[string]rest.HealthCheck

	closers []func()
}

// Options selects optional parts of the wiring.
type Options struct {
	// Events enables the websocket notifier.
	Events bool
	// DisableBackends skips Redis and Postgres even when configured.
	DisableBackends bool
}

// New builds the service. Redis and Postgres are only connected when their
// URLs are set; a configured backend that cannot be reached is an error.
func New(ctx context.Context, cfg *config.Config, logger *logging.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	a := &App{HealthChecks: map[string]rest.HealthCheck{}}

	fetcher, err := a.fetcher(cfg, logger)
	if err != nil {
		return nil, err
	}

	identity := club.NewMatcher(cfg.ClubExtraVariants...)
	extractor := ingest.NewExtractor(identity, club.NewClassifier())
	diagnostics := ingest.NewDiagnostics(cfg.DebugDir, logger)
	orchestrator := ingest.NewOrchestrator(fetcher, extractor, club.NewStandingsMatcher(cfg.StandingsTeamTerm), diagnostics, logger)

	serviceOpts := []ingest.Option{ingest.WithLogger(logger)}
	var notifiers []ingest.Notifier

	if cfg.RedisURL != "" && !opts.DisableBackends {
		rc, err := connect(ctx, logger, "redis", func(ctx context.Context) (*cache.RedisCache, error) {
			return cache.NewRedisCache(ctx, cfg.RedisURL)
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.onClose(func() { _ = rc.Close() })
		a.HealthChecks["redis"] = rc.HealthCheck
		serviceOpts = append(serviceOpts, ingest.WithCache(rc, cfg.CacheTTL))
		notifiers = append(notifiers, publisher.NewRedisStreamPublisher(rc.Client()))
		logger.Info("redis connected", "cache_ttl", cfg.CacheTTL.String())
	}

	if cfg.DatabaseURL != "" && !opts.DisableBackends {
		db, err := connect(ctx, logger, "postgres", func(ctx context.Context) (*store.Database, error) {
			return store.NewDatabase(ctx, cfg.DatabaseURL, logger)
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.onClose(func() { _ = db.Close() })
		if err := db.RunMigrations(ctx); err != nil {
			a.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
		a.HealthChecks["postgres"] = db.HealthCheck
		serviceOpts = append(serviceOpts, ingest.WithSink(repository.NewImportRepository(db)))
		logger.Info("postgres connected")
	}

	if opts.Events {
		a.Events = websocket.NewServer(logger)
		notifiers = append(notifiers, a.Events)
	}
	if len(notifiers) > 0 {
		serviceOpts = append(serviceOpts, ingest.WithNotifiers(notifiers...))
	}

	profiles := cfg.Profiles()
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name())
	}
	logger.Info("import service ready", "sources", names, "fetch_mode", cfg.FetchMode)

	a.Service = ingest.NewService(orchestrator, identity, profiles, serviceOpts...)
	return a, nil
}

func (a *App) fetcher(cfg *config.Config, logger *logging.Logger) (ingest.Fetcher, error) {
	opts := cfg.FetcherOptions(logger)
	switch cfg.FetchMode {
	case config.FetchModeBrowser:
		b := ingest.NewBrowserFetcher(opts)
		a.onClose(b.Close)
		return b, nil
	case config.FetchModeHTTP, "":
		return ingest.NewHTTPFetcher(opts), nil
	default:
		return nil, errors.Newf("unknown fetch mode %q", cfg.FetchMode)
	}
}

func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close releases backends in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// connect retries dial a few times so the service survives backends that
// start after it.
func connect[T any](ctx context.Context, logger *logging.Logger, name string, dial func(context.Context) (T, error)) (T, error) {
	var (
		out T
		err error
	)
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		out, err = dial(ctx)
		if err == nil {
			return out, nil
		}
		if attempt == connectAttempts {
			break
		}
		logger.Warn("backend connection failed, retrying",
			"backend", name, "attempt", attempt, "max_attempts", connectAttempts, "error", err)
		select {
		case <-ctx.Done():
			return out, errors.Wrapf(ctx.Err(), "connect %s", name)
		case <-time.After(connectDelay):
		}
	}
	return out, errors.Wrapf(err, "connect %s after %d attempts", name, connectAttempts)
}
