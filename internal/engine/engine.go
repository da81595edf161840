// Package engine drives multi-page review scrapes over one browser session.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/IshaanNene/ReviewGoat/internal/config"
	"github.com/IshaanNene/ReviewGoat/internal/fetcher"
	"github.com/IshaanNene/ReviewGoat/internal/observability"
	"github.com/IshaanNene/ReviewGoat/internal/parser"
	"github.com/IshaanNene/ReviewGoat/internal/types"
)

// State represents the scraper's current lifecycle state.
type State int32

const (
	StateIdle    State = 0
	StateRunning State = 1
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Scraper paginates through a product's review listing.
// Scrapes on one Scraper may run concurrently; each owns its session.
type Scraper struct {
	launcher  fetcher.Launcher
	extractor *parser.Extractor
	site      config.SiteConfig
	wait      time.Duration
	delay     time.Duration
	metrics   *observability.Metrics
	logger    *slog.Logger

	running atomic.Int32
}

// NewScraper creates a Scraper that opens sessions with l.
func NewScraper(l fetcher.Launcher, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Scraper {
	return &Scraper{
		launcher:  l,
		extractor: parser.NewExtractor(logger),
		site:      cfg.Site,
		wait:      cfg.Scraper.WaitTimeout,
		delay:     cfg.Scraper.PageDelay,
		metrics:   metrics,
		logger:    logger.With("component", "scraper"),
	}
}

// State reports whether any scrape is in progress.
func (s *Scraper) State() State {
	if s.running.Load() > 0 {
		return StateRunning
	}
	return StateIdle
}

// RequiredPages returns how many listing pages to visit: the pages implied
// by total capped at maxPages, or maxPages when total is unknown. It is
// never negative.
func RequiredPages(total types.ReviewCount, maxPages int) int {
	if maxPages <= 0 {
		return 0
	}
	if !total.Known {
		return maxPages
	}
	return min(maxPages, total.Pages())
}

// ScrapeAll collects the reviews of id from up to maxPages listing pages.
//
// One session serves the whole scrape and is closed on every path. A wait
// timeout, a page without review elements or cancellation ends pagination
// early; what was collected so far is returned with a nil error. Only a
// failure to launch the session or to load the first page is returned as
// an error, alongside an empty result.
func (s *Scraper) ScrapeAll(ctx context.Context, id types.ProductID, maxPages int) (*types.Result, error) {
	res := &types.Result{
		ProductID: id,
		Reviews:   []types.Review{},
		MaxPages:  maxPages,
		StartedAt: time.Now(),
	}
	defer s.finish(res)

	if maxPages <= 0 {
		res.StopReason = types.StopCompleted
		return res, nil
	}

	s.running.Add(1)
	defer s.running.Add(-1)

	session, err := s.launcher.Launch(ctx)
	if err != nil {
		res.StopReason = types.StopFetchError
		return res, &types.FetchError{URL: id.ListingURL(s.site.ListingURL, 1), Page: 1, Reason: "launch", Err: err}
	}
	defer session.Close()

	first, err := s.openFirst(ctx, session, id)
	if err != nil {
		res.StopReason = stopReasonFor(ctx, err)
		return res, err
	}

	res.Total = first.Total
	res.RequiredPages = RequiredPages(first.Total, maxPages)
	if !first.Total.Known {
		s.logger.Warn("review total unknown, using page cap",
			"product", id, "title", first.Title, "max_pages", maxPages)
	}
	s.logger.Info("scrape planned",
		"product", id,
		"total", first.Total.N,
		"required_pages", res.RequiredPages,
	)

	res.StopReason = types.StopCompleted
	for number := 1; number <= res.RequiredPages; number++ {
		page := first
		if number > 1 {
			page, err = s.loadPage(ctx, session, id, number)
			if err != nil {
				res.StopReason = stopReasonFor(ctx, err)
				s.metrics.PageFailed(string(res.StopReason))
				s.logger.Warn("stopping pagination", "page", number, "reason", res.StopReason, "error", err)
				break
			}
		}

		n, err := s.collect(page, res)
		if err != nil {
			res.StopReason = types.StopNoReviews
			s.metrics.PageFailed(string(res.StopReason))
			s.logger.Warn("stopping pagination", "page", number, "reason", res.StopReason, "error", err)
			break
		}
		s.logger.Info("page scraped", "page", number, "reviews", n, "collected", len(res.Reviews))

		if number < res.RequiredPages {
			if err := sleep(ctx, s.delay); err != nil {
				res.StopReason = types.StopCanceled
				break
			}
		}
	}

	return res, nil
}

// openFirst loads page 1 with the age gate cookie and reads it.
func (s *Scraper) openFirst(ctx context.Context, session fetcher.Session, id types.ProductID) (*types.Page, error) {
	pageURL := id.ListingURL(s.site.ListingURL, 1)
	start := time.Now()

	if err := fetcher.OpenListing(ctx, session, pageURL, fetcher.AgeGateCookie(s.site), s.wait); err != nil {
		return nil, loadError(pageURL, 1, err)
	}
	page, err := fetcher.ReadPage(ctx, session, pageURL, 1)
	if err != nil {
		return nil, &types.FetchError{URL: pageURL, Page: 1, Reason: "read", Err: err}
	}
	page.FetchDuration = time.Since(start)
	return page, nil
}

// loadPage navigates the prepared session to a later page and reads it.
func (s *Scraper) loadPage(ctx context.Context, session fetcher.Session, id types.ProductID, number int) (*types.Page, error) {
	pageURL := id.ListingURL(s.site.ListingURL, number)
	start := time.Now()

	if err := fetcher.LoadListing(ctx, session, pageURL, s.wait); err != nil {
		return nil, loadError(pageURL, number, err)
	}
	page, err := fetcher.ReadPage(ctx, session, pageURL, number)
	if err != nil {
		return nil, &types.FetchError{URL: pageURL, Page: number, Reason: "read", Err: err}
	}
	page.FetchDuration = time.Since(start)
	return page, nil
}

// collect extracts the reviews of page into res and returns how many were
// added. It fails with types.ErrNoReviews when the page has none.
func (s *Scraper) collect(page *types.Page, res *types.Result) (int, error) {
	doc, err := page.Document()
	if err != nil {
		return 0, err
	}
	reviews := s.extractor.ExtractAll(doc)
	if len(reviews) == 0 {
		return 0, types.ErrNoReviews
	}

	res.Reviews = append(res.Reviews, reviews...)
	res.PageCounts = append(res.PageCounts, len(reviews))
	s.metrics.PageFetched(page.FetchDuration)
	s.metrics.ReviewsAdded(len(reviews))
	return len(reviews), nil
}

func (s *Scraper) finish(res *types.Result) {
	res.FinishedAt = time.Now()
	s.metrics.ScrapeFinished(string(res.StopReason), res.Duration())
	s.logger.Info("scrape finished",
		"product", res.ProductID,
		"reviews", len(res.Reviews),
		"pages", res.PagesVisited(),
		"stop_reason", res.StopReason,
		"duration", res.Duration(),
	)
}

// loadError wraps a navigation or wait failure, labelled for metrics.
func loadError(pageURL string, number int, err error) *types.FetchError {
	fe := &types.FetchError{URL: pageURL, Page: number, Reason: "navigate", Err: err}
	switch {
	case fe.IsTimeout():
		fe.Reason = "timeout"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		fe.Reason = "canceled"
	}
	return fe
}

func stopReasonFor(ctx context.Context, err error) types.StopReason {
	switch {
	case ctx.Err() != nil:
		return types.StopCanceled
	case errors.Is(err, types.ErrWaitTimeout):
		return types.StopTimeout
	default:
		return types.StopFetchError
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
