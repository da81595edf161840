package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if err := ValidateListingURL(cfg.Site.ListingURL); err != nil {
		return fmt.Errorf("site.listing_url: %w", err)
	}
	if cfg.Site.CookieName == "" {
		return fmt.Errorf("site.cookie_name must not be empty")
	}

	if cfg.Fetcher.Type != "browser" && cfg.Fetcher.Type != "http" {
		return fmt.Errorf("fetcher.type must be 'browser' or 'http', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.UserAgent == "" {
		return fmt.Errorf("fetcher.user_agent must not be empty")
	}
	if cfg.Fetcher.ViewportWidth < 1 || cfg.Fetcher.ViewportHeight < 1 {
		return fmt.Errorf("fetcher viewport must be positive, got %dx%d",
			cfg.Fetcher.ViewportWidth, cfg.Fetcher.ViewportHeight)
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}

	if cfg.Scraper.WaitTimeout <= 0 {
		return fmt.Errorf("scraper.wait_timeout must be > 0")
	}
	if cfg.Scraper.PageDelay < 0 {
		return fmt.Errorf("scraper.page_delay must be >= 0")
	}
	if cfg.Scraper.MaxPagesLimit < 1 {
		return fmt.Errorf("scraper.max_pages_limit must be >= 1, got %d", cfg.Scraper.MaxPagesLimit)
	}
	if cfg.Scraper.MaxPages < 1 || cfg.Scraper.MaxPages > cfg.Scraper.MaxPagesLimit {
		return fmt.Errorf("scraper.max_pages must be 1-%d, got %d", cfg.Scraper.MaxPagesLimit, cfg.Scraper.MaxPages)
	}

	validStorageTypes := map[string]bool{
		"json": true, "jsonl": true, "csv": true, "mongodb": true,
	}
	for _, t := range strings.Split(cfg.Storage.Type, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if !validStorageTypes[t] {
			return fmt.Errorf("storage.type %q is not supported (valid: json, jsonl, csv, mongodb, or a comma-separated list)", cfg.Storage.Type)
		}
		if t == "mongodb" && cfg.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required for mongodb storage")
		}
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.RateRPS <= 0 || cfg.Server.RateBurst < 1 {
		return fmt.Errorf("server rate limit must be positive")
	}
	if cfg.Server.CacheSize < 1 {
		return fmt.Errorf("server.cache_size must be >= 1, got %d", cfg.Server.CacheSize)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stderr" && cfg.Logging.Output != "stdout" {
		return fmt.Errorf("logging.output must be 'stderr' or 'stdout', got %q", cfg.Logging.Output)
	}

	return nil
}

// ValidateListingURL checks that a listing template is an absolute http(s)
// URL carrying both placeholders.
func ValidateListingURL(template string) error {
	for _, ph := range []string{"{page}", "{product}"} {
		if !strings.Contains(template, ph) {
			return fmt.Errorf("template must contain %s", ph)
		}
	}
	probe := strings.NewReplacer("{page}", "1", "{product}", "RJ1").Replace(template)
	u, err := url.Parse(probe)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
