package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/ReviewGoat/internal/config"
	"github.com/IshaanNene/ReviewGoat/internal/types"
)

// BrowserLauncher starts headless Chromium sessions via Rod.
type BrowserLauncher struct {
	cfg    *config.FetcherConfig
	logger *slog.Logger
}

// NewBrowserLauncher creates a new headless browser launcher.
func NewBrowserLauncher(cfg *config.FetcherConfig, logger *slog.Logger) *BrowserLauncher {
	return &BrowserLauncher{
		cfg:    cfg,
		logger: logger.With("component", "browser_launcher"),
	}
}

// Type returns the launcher type identifier.
func (bl *BrowserLauncher) Type() string {
	return "browser"
}

// Launch starts a browser and opens a single page configured with the
// desktop user agent and viewport.
func (bl *BrowserLauncher) Launch(ctx context.Context) (Session, error) {
	l := bl.newLauncher(ctx)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		release(l)
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := bl.newPage(browser)
	if err != nil {
		_ = browser.Close()
		release(l)
		return nil, err
	}

	bl.logger.Debug("browser session ready",
		"headless", bl.cfg.Headless,
		"stealth", bl.cfg.Stealth,
	)

	return &browserSession{
		launcher: l,
		browser:  browser,
		page:     page,
		logger:   bl.logger,
	}, nil
}

// newLauncher configures Chromium flags.
func (bl *BrowserLauncher) newLauncher(ctx context.Context) *launcher.Launcher {
	l := launcher.New().
		Context(ctx).
		Headless(bl.cfg.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", fmt.Sprintf("%d,%d", bl.cfg.ViewportWidth, bl.cfg.ViewportHeight))

	if bl.cfg.NoSandbox {
		l = l.NoSandbox(true)
	}
	if bl.cfg.BrowserBin != "" {
		l = l.Bin(bl.cfg.BrowserBin)
	}
	return l
}

// newPage opens the session page, applying stealth patches if configured.
func (bl *BrowserLauncher) newPage(browser *rod.Browser) (*rod.Page, error) {
	var (
		page *rod.Page
		err  error
	)
	if bl.cfg.Stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent: bl.cfg.UserAgent,
	}); err != nil {
		bl.logger.Warn("failed to set user agent", "error", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             bl.cfg.ViewportWidth,
		Height:            bl.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		bl.logger.Warn("failed to set viewport", "error", err)
	}

	return page, nil
}

// chromeProcess tears down a launched Chromium.
type chromeProcess interface {
	Kill()
	Cleanup()
}

// release kills the browser process and removes its user-data dir.
func release(p chromeProcess) {
	p.Kill()
	p.Cleanup()
}

// browserSession is a Session backed by one Rod page.
type browserSession struct {
	launcher chromeProcess
	browser  *rod.Browser
	page     *rod.Page
	logger   *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

func (s *browserSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return err
	}
	return p.WaitLoad()
}

func (s *browserSession) SetCookie(ctx context.Context, c Cookie) error {
	return s.page.Context(ctx).SetCookies([]*proto.NetworkCookieParam{{
		Name:   c.Name,
		Value:  c.Value,
		Domain: c.Domain,
		Path:   c.Path,
	}})
}

func (s *browserSession) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	_, err := s.page.Context(ctx).Timeout(timeout).Element(selector)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s", types.ErrWaitTimeout, selector, timeout)
	}
	return err
}

func (s *browserSession) HTML(ctx context.Context) (string, error) {
	return s.page.Context(ctx).HTML()
}

func (s *browserSession) Title(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

func (s *browserSession) Close() error {
	s.closeOnce.Do(func() {
		if err := s.browser.Close(); err != nil {
			s.closeErr = err
			s.logger.Warn("browser close failed", "error", err)
		}
		release(s.launcher)
	})
	return s.closeErr
}
