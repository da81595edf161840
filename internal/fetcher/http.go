package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
	"golang.org/x/net/publicsuffix"

	"github.com/IshaanNene/ReviewGoat/internal/config"
	"github.com/IshaanNene/ReviewGoat/internal/parser"
	"github.com/IshaanNene/ReviewGoat/internal/types"
)

// HTTPLauncher starts static sessions over net/http. No JavaScript runs, so
// it only works when the listing is server-rendered.
type HTTPLauncher struct {
	cfg       *config.FetcherConfig
	transport http.RoundTripper
	logger    *slog.Logger
}

// HTTPOption configures the HTTPLauncher.
type HTTPOption func(*HTTPLauncher)

// WithTransport sets the round tripper used by launched sessions.
func WithTransport(rt http.RoundTripper) HTTPOption {
	return func(hl *HTTPLauncher) { hl.transport = rt }
}

// NewHTTPLauncher creates a new static session launcher.
func NewHTTPLauncher(cfg *config.FetcherConfig, logger *slog.Logger, opts ...HTTPOption) *HTTPLauncher {
	hl := &HTTPLauncher{
		cfg:    cfg,
		logger: logger.With("component", "http_launcher"),
	}
	for _, opt := range opts {
		opt(hl)
	}
	if hl.transport == nil {
		hl.transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        4,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			DisableCompression:  true, // decoded in decompressReader, brotli included
		}
	}
	return hl
}

// Type returns the launcher type identifier.
func (hl *HTTPLauncher) Type() string {
	return "http"
}

// Launch creates a session with its own cookie jar.
func (hl *HTTPLauncher) Launch(ctx context.Context) (Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &httpSession{
		client: &http.Client{
			Transport: hl.transport,
			Jar:       jar,
		},
		cfg:    hl.cfg,
		logger: hl.logger,
	}, nil
}

// httpSession is a Session that holds the last fetched document.
type httpSession struct {
	client *http.Client
	cfg    *config.FetcherConfig
	logger *slog.Logger

	html   string
	closed bool
}

func (s *httpSession) Navigate(ctx context.Context, target string) error {
	if s.closed {
		return types.ErrSessionClosed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.9,en;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	reader, err := decompressReader(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if s.cfg.MaxBodySize > 0 {
		reader = io.LimitReader(reader, s.cfg.MaxBodySize)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	s.html = string(body)

	s.logger.Debug("fetch complete",
		"url", target,
		"status", resp.StatusCode,
		"size", len(body),
		"duration", time.Since(start),
	)
	return nil
}

func (s *httpSession) SetCookie(_ context.Context, c Cookie) error {
	if s.closed {
		return types.ErrSessionClosed
	}
	host := strings.TrimPrefix(c.Domain, ".")
	if host == "" {
		return fmt.Errorf("cookie %q has no domain", c.Name)
	}
	s.client.Jar.SetCookies(&url.URL{Scheme: "https", Host: host, Path: "/"}, []*http.Cookie{{
		Name:   c.Name,
		Value:  c.Value,
		Domain: c.Domain,
		Path:   c.Path,
	}})
	return nil
}

// WaitForSelector checks the fetched document once. A static document will
// not change, so a missing selector is reported as a timeout right away.
func (s *httpSession) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.html == "" {
		return fmt.Errorf("%w: no document loaded", types.ErrWaitTimeout)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.html))
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s not present", types.ErrWaitTimeout, selector)
	}
	return nil
}

func (s *httpSession) HTML(_ context.Context) (string, error) {
	if s.closed {
		return "", types.ErrSessionClosed
	}
	return s.html, nil
}

func (s *httpSession) Title(_ context.Context) (string, error) {
	if s.closed {
		return "", types.ErrSessionClosed
	}
	return parser.TitleFromHTML(s.html)
}

func (s *httpSession) Close() error {
	if !s.closed {
		s.closed = true
		s.client.CloseIdleConnections()
	}
	return nil
}

// decompressReader wraps a reader with the decoder for encoding.
func decompressReader(encoding string, reader io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}
