package ingest

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/fortuna/goaliestats/internal/logging"
)

// BrowserFetcher renders pages in headless Chrome for sites that build
// their tables with JavaScript.
type BrowserFetcher struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	limiter  *rate.Limiter
	logger   *logging.Logger
}

// NewBrowserFetcher starts a Chrome allocator shared by every fetch. Close
// releases it.
func NewBrowserFetcher(opts FetcherOptions) *BrowserFetcher {
	opts = opts.withDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(opts.UserAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	return &BrowserFetcher{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  opts.Timeout,
		limiter:  opts.limiter(),
		logger:   opts.Logger.Component("browser-fetcher"),
	}
}

// Close shuts the browser down.
func (b *BrowserFetcher) Close() {
	if b.cancel != nil {
		b.cancel()
	}
}

// Fetch navigates to url and returns the rendered document.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if err := b.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "rate limit wait")
	}

	// Tabs hang off the allocator, so the caller's deadline is tied in
	// separately.
	browserCtx, cancelTab := chromedp.NewContext(b.allocCtx)
	defer cancelTab()
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, b.timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
		chromedp.OuterHTML(`html`, &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", errors.Wrapf(err, "render %s", url)
	}
	if html == "" {
		return "", errors.Newf("empty document from %s", url)
	}

	b.logger.Debug("rendered page", "url", url, "bytes", len(html))
	return html, nil
}
