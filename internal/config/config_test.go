package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing page placeholder", func(c *Config) { c.Site.ListingURL = "https://example.com/{product}" }},
		{"non-http template", func(c *Config) { c.Site.ListingURL = "ftp://example.com/{page}/{product}" }},
		{"unknown fetcher", func(c *Config) { c.Fetcher.Type = "selenium" }},
		{"zero wait timeout", func(c *Config) { c.Scraper.WaitTimeout = 0 }},
		{"negative delay", func(c *Config) { c.Scraper.PageDelay = -time.Second }},
		{"max pages above limit", func(c *Config) { c.Scraper.MaxPages = 101 }},
		{"max pages zero", func(c *Config) { c.Scraper.MaxPages = 0 }},
		{"bad storage", func(c *Config) { c.Storage.Type = "xml" }},
		{"mongo without uri", func(c *Config) { c.Storage.Type = "mongodb" }},
		{"bad storage in list", func(c *Config) { c.Storage.Type = "csv,xml" }},
		{"mongo in list without uri", func(c *Config) { c.Storage.Type = "csv, mongodb" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestValidateStorageList(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Type = "csv, jsonl"
	if err := Validate(cfg); err != nil {
		t.Errorf("expected comma-separated storage types to be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reviewgoat.yaml")
	content := `
scraper:
  page_delay: 500ms
  max_pages: 3
fetcher:
  type: http
storage:
  type: jsonl
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scraper.PageDelay != 500*time.Millisecond {
		t.Errorf("expected 500ms delay, got %s", cfg.Scraper.PageDelay)
	}
	if cfg.Scraper.MaxPages != 3 {
		t.Errorf("expected 3 max pages, got %d", cfg.Scraper.MaxPages)
	}
	if cfg.Fetcher.Type != "http" {
		t.Errorf("expected http fetcher, got %q", cfg.Fetcher.Type)
	}
	if cfg.Storage.Type != "jsonl" {
		t.Errorf("expected jsonl storage, got %q", cfg.Storage.Type)
	}
	// Untouched values keep their defaults.
	if cfg.Scraper.WaitTimeout != 30*time.Second {
		t.Errorf("expected default wait timeout, got %s", cfg.Scraper.WaitTimeout)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("REVIEWGOAT_SERVER_PORT", "9999")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("expected env override 9999, got %d", cfg.Server.Port)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}
