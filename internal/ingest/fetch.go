package ingest

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/fortuna/goaliestats/internal/logging"
)

const (
	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent identifies the importer to league sites.
	DefaultUserAgent = "goaliestats-importer/1.0 (+https://github.com/fortuna/goaliestats)"

	// DefaultBurst lets a whole fan-out batch start at once.
	DefaultBurst = 64

	maxBodyBytes = 8 << 20
)

// ErrUnexpectedStatus is returned for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Fetcher returns the HTML of a page. Implementations apply their own
// per-call deadline on top of ctx.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherOptions configures both fetcher kinds.
type FetcherOptions struct {
	Timeout   time.Duration
	UserAgent string
	// RatePerSecond of zero or less disables limiting.
	RatePerSecond float64
	Burst         int
	Logger        *logging.Logger
}

func (o FetcherOptions) withDefaults() FetcherOptions {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Burst <= 0 {
		o.Burst = DefaultBurst
	}
	if o.Logger == nil {
		o.Logger = logging.Default()
	}
	return o
}

func (o FetcherOptions) limiter() *rate.Limiter {
	if o.RatePerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, o.Burst)
	}
	return rate.NewLimiter(rate.Limit(o.RatePerSecond), o.Burst)
}

// HTTPFetcher fetches pages with net/http.
type HTTPFetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	limiter   *rate.Limiter
	logger    *logging.Logger
}

// NewHTTPFetcher creates a rate-limited HTTP fetcher.
func NewHTTPFetcher(opts FetcherOptions) *HTTPFetcher {
	opts = opts.withDefaults()
	return &HTTPFetcher{
		client:    &http.Client{},
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		limiter:   opts.limiter(),
		logger:    opts.Logger.Component("http-fetcher"),
	}
}

// Fetch GETs url within the fetcher's timeout. The deadline covers the
// rate-limit wait, the request and reading the body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := f.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "cs-CZ,cs;q=0.9,en;q=0.5")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "GET %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Wrapf(ErrUnexpectedStatus, "GET %s returned %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", errors.Wrapf(err, "read body of %s", url)
	}

	f.logger.Debug("fetched page", "url", url, "bytes", len(body), "duration", time.Since(start))
	return string(body), nil
}
