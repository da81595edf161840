package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/IshaanNene/ReviewGoat/internal/config"
	"github.com/IshaanNene/ReviewGoat/internal/observability"
	"github.com/IshaanNene/ReviewGoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeSession serves canned documents keyed by URL.
type fakeSession struct {
	docs      map[string]string
	navErr    error
	calls     []string
	current   string
	cookieSet bool
	closed    int
}

func (s *fakeSession) Navigate(_ context.Context, url string) error {
	s.calls = append(s.calls, "navigate")
	if s.navErr != nil {
		return s.navErr
	}
	s.current = url
	return nil
}

func (s *fakeSession) SetCookie(_ context.Context, c Cookie) error {
	s.calls = append(s.calls, "cookie:"+c.Name+"="+c.Value+"@"+c.Domain)
	s.cookieSet = true
	return nil
}

func (s *fakeSession) WaitForSelector(ctx context.Context, selector string, _ time.Duration) error {
	s.calls = append(s.calls, "wait")
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.Contains(s.docs[s.current], "review_") {
		return fmt.Errorf("%w: %s", types.ErrWaitTimeout, selector)
	}
	return nil
}

func (s *fakeSession) HTML(context.Context) (string, error) { return s.docs[s.current], nil }

func (s *fakeSession) Title(context.Context) (string, error) { return "", nil }

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

type fakeLauncher struct {
	session *fakeSession
	err     error
}

func (l *fakeLauncher) Launch(context.Context) (Session, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.session, nil
}

func (l *fakeLauncher) Type() string { return "fake" }

func listingPage(title string, n int, class string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><head><title>%s</title></head><body>", title)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<div class="%s"><div class="reveiw_title_item">r%d</div></div>`, class, i)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Scraper.WaitTimeout = time.Second
	return cfg
}

func TestPageFetcherFetch(t *testing.T) {
	cfg := testConfig()
	id := types.ProductID("RJ323439")
	url := id.ListingURL(cfg.Site.ListingURL, 1)

	session := &fakeSession{docs: map[string]string{url: listingPage("Work (42)", 10, "review_item")}}
	metrics := observability.NewMetrics()
	f := NewPageFetcher(&fakeLauncher{session: session}, cfg, metrics, testLogger)

	page, hasNext, err := f.Fetch(context.Background(), id, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page == nil {
		t.Fatal("expected a page")
	}
	if !hasNext {
		t.Error("page 1 of 5 should have a next page")
	}
	if page.Total.N != 42 || !page.Total.Known {
		t.Errorf("unexpected total: %+v", page.Total)
	}
	if page.Title != "Work (42)" {
		t.Errorf("title should fall back to <title>, got %q", page.Title)
	}
	if session.closed != 1 {
		t.Errorf("session should be closed once, got %d", session.closed)
	}

	want := []string{"navigate", "cookie:adultchecked=1@.dlsite.com", "navigate", "wait"}
	if strings.Join(session.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", session.calls, want)
	}
	if metrics.Snapshot()["pages_fetched"] != 1 {
		t.Error("expected page fetch to be counted")
	}
}

func TestPageFetcherLastPage(t *testing.T) {
	cfg := testConfig()
	id := types.ProductID("RJ1")
	url := id.ListingURL(cfg.Site.ListingURL, 5)

	session := &fakeSession{docs: map[string]string{url: listingPage("Work (42)", 2, "review_item")}}
	f := NewPageFetcher(&fakeLauncher{session: session}, cfg, nil, testLogger)

	page, hasNext, err := f.Fetch(context.Background(), id, 5)
	if err != nil || page == nil {
		t.Fatalf("expected page, got %v (%v)", page, err)
	}
	if hasNext {
		t.Error("page 5 of 5 should not have a next page")
	}
}

func TestPageFetcherUnknownTotal(t *testing.T) {
	cfg := testConfig()
	id := types.ProductID("RJ1")
	url := id.ListingURL(cfg.Site.ListingURL, 1)

	session := &fakeSession{docs: map[string]string{url: listingPage("Work reviews", 3, "review_contents")}}
	f := NewPageFetcher(&fakeLauncher{session: session}, cfg, nil, testLogger)

	page, hasNext, err := f.Fetch(context.Background(), id, 1)
	if err != nil || page == nil {
		t.Fatalf("expected page from legacy markup, got %v (%v)", page, err)
	}
	if hasNext {
		t.Error("unknown total should never report a next page")
	}
	if page.Total.Known {
		t.Error("expected unknown total")
	}
}

func TestPageFetcherNoDocument(t *testing.T) {
	cfg := testConfig()
	id := types.ProductID("RJ1")
	url := id.ListingURL(cfg.Site.ListingURL, 1)

	tests := []struct {
		name     string
		launcher *fakeLauncher
	}{
		{"launch failure", &fakeLauncher{err: errors.New("no chromium")}},
		{"navigation failure", &fakeLauncher{session: &fakeSession{navErr: errors.New("dns")}}},
		{"wait timeout", &fakeLauncher{session: &fakeSession{docs: map[string]string{url: "<html><title>(5)</title></html>"}}}},
		{"no review elements", &fakeLauncher{session: &fakeSession{docs: map[string]string{url: `<div class="review_summary"></div>`}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := observability.NewMetrics()
			f := NewPageFetcher(tt.launcher, cfg, metrics, testLogger)
			page, hasNext, err := f.Fetch(context.Background(), id, 1)
			if page != nil || hasNext || err != nil {
				t.Errorf("expected no document, got page=%v hasNext=%v err=%v", page, hasNext, err)
			}
			if tt.launcher.session != nil && tt.launcher.session.closed != 1 {
				t.Errorf("session should be closed, got %d", tt.launcher.session.closed)
			}
			if metrics.Snapshot()["page_failures"] != 1 {
				t.Error("expected failure to be counted")
			}
		})
	}
}

func TestPageFetcherCanceled(t *testing.T) {
	cfg := testConfig()
	id := types.ProductID("RJ1")
	url := id.ListingURL(cfg.Site.ListingURL, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session := &fakeSession{docs: map[string]string{url: listingPage("(1)", 1, "review_item")}}
	f := NewPageFetcher(&fakeLauncher{session: session}, cfg, nil, testLogger)

	_, _, err := f.Fetch(ctx, id, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if session.closed != 1 {
		t.Error("session should be closed on cancellation")
	}
}

func TestNewLauncher(t *testing.T) {
	cfg := config.DefaultConfig()

	l, err := New(cfg, testLogger)
	if err != nil || l.Type() != "browser" {
		t.Errorf("expected browser launcher, got %v (%v)", l, err)
	}

	cfg.Fetcher.Type = "http"
	l, err = New(cfg, testLogger)
	if err != nil || l.Type() != "http" {
		t.Errorf("expected http launcher, got %v (%v)", l, err)
	}

	cfg.Fetcher.Type = "carrier-pigeon"
	if _, err := New(cfg, testLogger); err == nil {
		t.Error("expected error for unknown fetcher type")
	}
}
