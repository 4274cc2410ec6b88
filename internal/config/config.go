// Package config loads service configuration from environment variables.
// Both cmd/goaliestats and cmd/import use it.
package config

import (
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"

	"github.com/fortuna/goaliestats/internal/ingest"
	"github.com/fortuna/goaliestats/internal/ingest/ceskyhokej"
	"github.com/fortuna/goaliestats/internal/ingest/regional"
	"github.com/fortuna/goaliestats/internal/logging"
)

// Fetch modes.
const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// Config is populated from environment variables.
type Config struct {
	// HTTP server
	HTTPPort           string
	CORSAllowedOrigins []string
	LogLevel           logging.Level

	// Fetching
	FetchTimeout time.Duration
	FetchMode    string
	UserAgent    string
	FetchRate    float64
	FetchBurst   int
	DebugDir     string

	// Optional backends; empty disables them.
	RedisURL    string
	CacheTTL    time.Duration
	DatabaseURL string

	// Sources
	EnabledSources []string
	CeskyHokej     ceskyhokej.Config
	Regional       regional.Config

	// Club identity
	ClubExtraVariants []string
	StandingsTeamTerm string
}

// LoadDotEnv loads the first .env file found. A missing file is fine.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err == nil {
			return
		}
	}
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads configuration through getenv. Every invalid value is
// reported, not only the first.
func LoadFrom(getenv func(string) string) (*Config, error) {
	l := loader{getenv: getenv}

	cfg := &Config{
		HTTPPort:           l.str("HTTP_PORT", "8080"),
		CORSAllowedOrigins: l.list("CORS_ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:           l.level("LOG_LEVEL", logging.LevelInfo),

		FetchTimeout: l.duration("FETCH_TIMEOUT", ingest.DefaultTimeout),
		FetchMode:    l.oneOf("FETCH_MODE", FetchModeHTTP, FetchModeHTTP, FetchModeBrowser),
		UserAgent:    l.str("USER_AGENT", ingest.DefaultUserAgent),
		FetchRate:    l.float("FETCH_RATE", 20),
		FetchBurst:   l.integer("FETCH_BURST", ingest.DefaultBurst),
		DebugDir:     l.str("DEBUG_DIR", ""),

		RedisURL:    l.str("REDIS_URL", ""),
		CacheTTL:    l.duration("CACHE_TTL", ingest.DefaultCacheTTL),
		DatabaseURL: l.str("DATABASE_URL", ""),

		EnabledSources: l.list("ENABLED_SOURCES", []string{ceskyhokej.Name, regional.Name}),
		CeskyHokej: ceskyhokej.Config{
			BaseURL: l.str("CESKYHOKEJ_BASE_URL", ceskyhokej.DefaultBaseURL),
			TeamID:  l.str("CESKYHOKEJ_TEAM_ID", ""),
			Region:  l.str("CESKYHOKEJ_REGION", ceskyhokej.DefaultRegion),
		},
		Regional: regional.Config{
			BaseURL:   l.str("REGIONAL_BASE_URL", regional.DefaultBaseURL),
			MaxRounds: l.integer("REGIONAL_MAX_ROUNDS", regional.DefaultMaxRounds),
		},

		ClubExtraVariants: l.list("CLUB_EXTRA_VARIANTS", nil),
		StandingsTeamTerm: l.str("STANDINGS_TEAM_TERM", "slovan"),
	}

	for _, s := range cfg.EnabledSources {
		if s != ceskyhokej.Name && s != regional.Name {
			l.fail("ENABLED_SOURCES", errors.Newf("unknown source %q", s))
		}
	}
	if cfg.FetchTimeout <= 0 {
		l.fail("FETCH_TIMEOUT", errors.New("must be positive"))
	}
	if cfg.Regional.MaxRounds <= 0 {
		l.fail("REGIONAL_MAX_ROUNDS", errors.New("must be positive"))
	}

	if len(l.problems) > 0 {
		return nil, errors.Newf("invalid configuration: %s", strings.Join(l.problems, "; "))
	}
	return cfg, nil
}

// Profiles builds the enabled source profiles in ENABLED_SOURCES order.
// Later profiles win external id collisions.
func (c *Config) Profiles() []ingest.Profile {
	var out []ingest.Profile
	for _, s := range c.EnabledSources {
		switch s {
		case ceskyhokej.Name:
			out = append(out, ceskyhokej.New(c.CeskyHokej))
		case regional.Name:
			out = append(out, regional.New(c.Regional))
		}
	}
	return out
}

// FetcherOptions maps the fetch settings onto ingest options.
func (c *Config) FetcherOptions(logger *logging.Logger) ingest.FetcherOptions {
	return ingest.FetcherOptions{
		Timeout:       c.FetchTimeout,
		UserAgent:     c.UserAgent,
		RatePerSecond: c.FetchRate,
		Burst:         c.FetchBurst,
		Logger:        logger,
	}
}

type loader struct {
	getenv   func(string) string
	problems []string
}

func (l *loader) fail(key string, err error) {
	l.problems = append(l.problems, key+": "+err.Error())
}

func (l *loader) raw(key string) string {
	return strings.TrimSpace(l.getenv(key))
}

func (l *loader) str(key, fallback string) string {
	if v := l.raw(key); v != "" {
		return v
	}
	return fallback
}

func (l *loader) integer(key string, fallback int) int {
	v := l.raw(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.fail(key, err)
		return fallback
	}
	return n
}

func (l *loader) float(key string, fallback float64) float64 {
	v := l.raw(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		l.fail(key, err)
		return fallback
	}
	return f
}

func (l *loader) duration(key string, fallback time.Duration) time.Duration {
	v := l.raw(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.fail(key, err)
		return fallback
	}
	return d
}

func (l *loader) level(key string, fallback logging.Level) logging.Level {
	v := l.raw(key)
	if v == "" {
		return fallback
	}
	lvl, ok := logging.ParseLevel(v)
	if !ok {
		l.fail(key, errors.Newf("unknown level %q", v))
		return fallback
	}
	return lvl
}

func (l *loader) oneOf(key, fallback string, allowed ...string) string {
	v := strings.ToLower(l.raw(key))
	if v == "" {
		return fallback
	}
	if !slices.Contains(allowed, v) {
		l.fail(key, errors.Newf("%q is not one of %v", v, allowed))
		return fallback
	}
	return v
}

func (l *loader) list(key string, fallback []string) []string {
	v := l.raw(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
