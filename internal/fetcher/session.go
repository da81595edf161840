package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/IshaanNene/ReviewGoat/internal/config"
	"github.com/IshaanNene/ReviewGoat/internal/parser"
	"github.com/IshaanNene/ReviewGoat/internal/types"
)

// Cookie is a cookie injected into a session before navigation.
type Cookie struct {
	Name   string
	Value  string
	Domain string
	Path   string
}

// AgeGateCookie returns the cookie that confirms the age check for site.
func AgeGateCookie(site config.SiteConfig) Cookie {
	return Cookie{
		Name:   site.CookieName,
		Value:  site.CookieValue,
		Domain: site.CookieDomain,
		Path:   "/",
	}
}

// Session is one exclusively owned browsing session.
// A session is not safe for concurrent use.
type Session interface {
	// Navigate loads url and waits for the document to load.
	Navigate(ctx context.Context, url string) error

	// SetCookie adds a cookie for subsequent navigations.
	SetCookie(ctx context.Context, c Cookie) error

	// WaitForSelector blocks until an element matching selector exists or
	// timeout elapses, in which case the error wraps types.ErrWaitTimeout.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error

	// HTML returns the current rendered document.
	HTML(ctx context.Context) (string, error)

	// Title returns the current document title.
	Title(ctx context.Context) (string, error)

	// Close releases the session. It is safe to call more than once.
	Close() error
}

// Launcher starts new sessions.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)

	// Type returns the launcher type identifier.
	Type() string
}

// OpenListing performs the first load of a listing: navigate, set the age
// gate cookie, navigate again so the cookie applies, then wait for review
// content.
func OpenListing(ctx context.Context, s Session, url string, cookie Cookie, wait time.Duration) error {
	if err := s.Navigate(ctx, url); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	if err := s.SetCookie(ctx, cookie); err != nil {
		return fmt.Errorf("set cookie: %w", err)
	}
	return LoadListing(ctx, s, url, wait)
}

// LoadListing navigates an already prepared session to url and waits for
// review content.
func LoadListing(ctx context.Context, s Session, url string, wait time.Duration) error {
	if err := s.Navigate(ctx, url); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	return s.WaitForSelector(ctx, parser.ContentSelector, wait)
}

// ReadPage snapshots the session's current document as a Page.
// When the session reports no title, the <title> element is used.
func ReadPage(ctx context.Context, s Session, url string, number int) (*types.Page, error) {
	markup, err := s.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}

	title, err := s.Title(ctx)
	if err != nil || title == "" {
		title, _ = parser.TitleFromHTML(markup)
	}

	return &types.Page{
		URL:       url,
		Number:    number,
		HTML:      markup,
		Title:     title,
		Total:     parser.ParseTotalCount(title),
		FetchedAt: time.Now(),
	}, nil
}
