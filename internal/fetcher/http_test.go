package fetcher

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/jarcoal/httpmock"

	"github.com/IshaanNene/ReviewGoat/internal/config"
	"github.com/IshaanNene/ReviewGoat/internal/observability"
	"github.com/IshaanNene/ReviewGoat/internal/types"
)

const ageGateHTML = `<html><head><title>Age check</title></head><body><div class="adult_check_box"></div></body></html>`

// gatedResponder serves body only when the age gate cookie is present.
func gatedResponder(body string, encoding string) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		if c, err := req.Cookie("adultchecked"); err != nil || c.Value != "1" {
			return httpmock.NewStringResponse(200, ageGateHTML), nil
		}
		if encoding == "br" {
			var buf bytes.Buffer
			w := brotli.NewWriter(&buf)
			_, _ = w.Write([]byte(body))
			_ = w.Close()
			resp := httpmock.NewBytesResponse(200, buf.Bytes())
			resp.Header.Set("Content-Encoding", "br")
			return resp, nil
		}
		return httpmock.NewStringResponse(200, body), nil
	}
}

func TestHTTPSessionAgeGateAndBrotli(t *testing.T) {
	cfg := config.DefaultConfig()
	id := types.ProductID("RJ323439")
	url := id.ListingURL(cfg.Site.ListingURL, 1)

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", url, gatedResponder(listingPage("Some Work (12)", 10, "review_item"), "br"))

	l := NewHTTPLauncher(&cfg.Fetcher, testLogger, WithTransport(transport))
	f := NewPageFetcher(l, cfg, observability.NewMetrics(), testLogger)

	page, hasNext, err := f.Fetch(context.Background(), id, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page == nil {
		t.Fatal("expected a page behind the age gate")
	}
	if !hasNext {
		t.Error("12 reviews should span two pages")
	}
	if page.Title != "Some Work (12)" {
		t.Errorf("unexpected title %q", page.Title)
	}
	if got := transport.GetCallCountInfo()["GET "+url]; got != 2 {
		t.Errorf("expected 2 requests (before and after cookie), got %d", got)
	}
}

func TestHTTPSessionWaitMiss(t *testing.T) {
	cfg := config.DefaultConfig()
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://www.dlsite.com/empty", httpmock.NewStringResponder(200, ageGateHTML))

	l := NewHTTPLauncher(&cfg.Fetcher, testLogger, WithTransport(transport))
	s, err := l.Launch(context.Background())
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	defer s.Close()

	if err := s.Navigate(context.Background(), "https://www.dlsite.com/empty"); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	err = s.WaitForSelector(context.Background(), "div.review_item", cfg.Scraper.WaitTimeout)
	if !errors.Is(err, types.ErrWaitTimeout) {
		t.Errorf("expected ErrWaitTimeout, got %v", err)
	}
}

func TestHTTPSessionErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://www.dlsite.com/missing", httpmock.NewStringResponder(404, "not found"))

	l := NewHTTPLauncher(&cfg.Fetcher, testLogger, WithTransport(transport))
	s, err := l.Launch(context.Background())
	if err != nil {
		t.Fatalf("launch: %v", err)
	}

	if err := s.Navigate(context.Background(), "https://www.dlsite.com/missing"); err == nil {
		t.Error("expected error for 404")
	}
	if err := s.SetCookie(context.Background(), Cookie{Name: "x", Value: "1"}); err == nil {
		t.Error("expected error for cookie without domain")
	}

	_ = s.Close()
	_ = s.Close()
	if err := s.Navigate(context.Background(), "https://www.dlsite.com/missing"); !errors.Is(err, types.ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
}

func TestHTTPSessionBodyLimitAppliesToDecodedHTML(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Fetcher.MaxBodySize = 1024

	decoded := strings.Repeat("<p>review</p>", 400)
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, _ = w.Write([]byte(decoded))
	_ = w.Close()
	if buf.Len() >= 1024 {
		t.Fatalf("fixture should compress below the limit, got %d bytes", buf.Len())
	}

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://www.dlsite.com/big", func(*http.Request) (*http.Response, error) {
		resp := httpmock.NewBytesResponse(200, buf.Bytes())
		resp.Header.Set("Content-Encoding", "br")
		return resp, nil
	})

	l := NewHTTPLauncher(&cfg.Fetcher, testLogger, WithTransport(transport))
	s, err := l.Launch(context.Background())
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	defer s.Close()

	if err := s.Navigate(context.Background(), "https://www.dlsite.com/big"); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	html, err := s.HTML(context.Background())
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	if len(html) != 1024 {
		t.Errorf("expected decoded body capped at 1024 bytes, got %d", len(html))
	}
}
