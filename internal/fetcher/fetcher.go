// Package fetcher loads rendered review listing pages.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IshaanNene/ReviewGoat/internal/config"
	"github.com/IshaanNene/ReviewGoat/internal/observability"
	"github.com/IshaanNene/ReviewGoat/internal/parser"
	"github.com/IshaanNene/ReviewGoat/internal/types"
)

// New returns the Launcher selected by cfg.Fetcher.Type.
func New(cfg *config.Config, logger *slog.Logger) (Launcher, error) {
	switch cfg.Fetcher.Type {
	case "browser", "":
		return NewBrowserLauncher(&cfg.Fetcher, logger), nil
	case "http":
		return NewHTTPLauncher(&cfg.Fetcher, logger), nil
	default:
		return nil, fmt.Errorf("unknown fetcher type %q", cfg.Fetcher.Type)
	}
}

// PageFetcher loads a single listing page in a fresh session.
type PageFetcher struct {
	launcher Launcher
	site     config.SiteConfig
	wait     time.Duration
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewPageFetcher creates a fetcher that launches sessions with l.
func NewPageFetcher(l Launcher, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *PageFetcher {
	return &PageFetcher{
		launcher: l,
		site:     cfg.Site,
		wait:     cfg.Scraper.WaitTimeout,
		metrics:  metrics,
		logger:   logger.With("component", "page_fetcher"),
	}
}

// Fetch loads one listing page of product id and reports whether a later
// page exists. Navigation failures, wait timeouts and pages without review
// elements all yield a nil page and a nil error; only context cancellation
// is returned as an error. The session is closed on every path.
func (f *PageFetcher) Fetch(ctx context.Context, id types.ProductID, number int) (*types.Page, bool, error) {
	pageURL := id.ListingURL(f.site.ListingURL, number)
	start := time.Now()

	session, err := f.launcher.Launch(ctx)
	if err != nil {
		return f.noDocument(ctx, &types.FetchError{URL: pageURL, Page: number, Reason: "launch", Err: err})
	}
	defer session.Close()

	if err := OpenListing(ctx, session, pageURL, AgeGateCookie(f.site), f.wait); err != nil {
		fe := &types.FetchError{URL: pageURL, Page: number, Reason: "navigate", Err: err}
		if fe.IsTimeout() {
			fe.Reason = "timeout"
		}
		return f.noDocument(ctx, fe)
	}

	page, err := ReadPage(ctx, session, pageURL, number)
	if err != nil {
		return f.noDocument(ctx, &types.FetchError{URL: pageURL, Page: number, Reason: "read", Err: err})
	}
	page.FetchDuration = time.Since(start)

	doc, err := page.Document()
	if err != nil {
		return f.noDocument(ctx, &types.FetchError{URL: pageURL, Page: number, Reason: "parse", Err: err})
	}
	elements, legacy := parser.ReviewElements(doc)
	if elements.Length() == 0 {
		return f.noDocument(ctx, &types.FetchError{URL: pageURL, Page: number, Reason: "no_reviews", Err: types.ErrNoReviews})
	}
	if legacy {
		f.logger.Debug("using legacy review selector", "url", pageURL, "count", elements.Length())
	}

	f.metrics.PageFetched(page.FetchDuration)
	f.logger.Info("page fetched",
		"url", pageURL,
		"reviews", elements.Length(),
		"total", page.Total.N,
		"total_known", page.Total.Known,
		"duration", page.FetchDuration,
	)

	return page, page.HasNext(), nil
}

// noDocument logs a fetch failure and converts it to the "no document"
// result, unless the context was canceled.
func (f *PageFetcher) noDocument(ctx context.Context, fe *types.FetchError) (*types.Page, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	f.metrics.PageFailed(fe.Reason)
	f.logger.Warn("no document", "page", fe.Page, "reason", fe.Reason, "error", fe)
	return nil, false, nil
}
