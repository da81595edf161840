package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for ReviewGoat.
type Config struct {
	Site    SiteConfig    `mapstructure:"site"    yaml:"site"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Scraper ScraperConfig `mapstructure:"scraper" yaml:"scraper"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Server  ServerConfig  `mapstructure:"server"  yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// SiteConfig describes the review listing being scraped.
type SiteConfig struct {
	// ListingURL is the listing template with {page} and {product} placeholders.
	ListingURL   string `mapstructure:"listing_url"   yaml:"listing_url"`
	CookieName   string `mapstructure:"cookie_name"   yaml:"cookie_name"`
	CookieValue  string `mapstructure:"cookie_value"  yaml:"cookie_value"`
	CookieDomain string `mapstructure:"cookie_domain" yaml:"cookie_domain"`
}

// FetcherConfig controls the browser session.
type FetcherConfig struct {
	Type           string `mapstructure:"type"            yaml:"type"` // browser, http
	Headless       bool   `mapstructure:"headless"        yaml:"headless"`
	NoSandbox      bool   `mapstructure:"no_sandbox"      yaml:"no_sandbox"`
	Stealth        bool   `mapstructure:"stealth"         yaml:"stealth"`
	UserAgent      string `mapstructure:"user_agent"      yaml:"user_agent"`
	ViewportWidth  int    `mapstructure:"viewport_width"  yaml:"viewport_width"`
	ViewportHeight int    `mapstructure:"viewport_height" yaml:"viewport_height"`
	BrowserBin     string `mapstructure:"browser_bin"     yaml:"browser_bin"`
	MaxBodySize    int64  `mapstructure:"max_body_size"   yaml:"max_body_size"`
}

// ScraperConfig controls pagination.
type ScraperConfig struct {
	WaitTimeout   time.Duration `mapstructure:"wait_timeout"    yaml:"wait_timeout"`
	PageDelay     time.Duration `mapstructure:"page_delay"      yaml:"page_delay"`
	MaxPages      int           `mapstructure:"max_pages"       yaml:"max_pages"`
	MaxPagesLimit int           `mapstructure:"max_pages_limit" yaml:"max_pages_limit"`
}

// StorageConfig controls output/storage.
type StorageConfig struct {
	Type            string `mapstructure:"type"             yaml:"type"`
	OutputPath      string `mapstructure:"output_path"      yaml:"output_path"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// ServerConfig controls the web front-end.
type ServerConfig struct {
	Host      string        `mapstructure:"host"       yaml:"host"`
	Port      int           `mapstructure:"port"       yaml:"port"`
	Mode      string        `mapstructure:"mode"       yaml:"mode"` // debug, release, test
	RateRPS   float64       `mapstructure:"rate_rps"   yaml:"rate_rps"`
	RateBurst int           `mapstructure:"rate_burst" yaml:"rate_burst"`
	CacheSize int           `mapstructure:"cache_size" yaml:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"  yaml:"cache_ttl"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ListingURL:   "https://www.dlsite.com/maniax/work/reviewlist/=/page/{page}/product_id/{product}.html",
			CookieName:   "adultchecked",
			CookieValue:  "1",
			CookieDomain: ".dlsite.com",
		},
		Fetcher: FetcherConfig{
			Type:           "browser",
			Headless:       true,
			NoSandbox:      true,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			ViewportWidth:  1920,
			ViewportHeight: 1080,
			MaxBodySize:    10 * 1024 * 1024, // 10MB
		},
		Scraper: ScraperConfig{
			WaitTimeout:   30 * time.Second,
			PageDelay:     2 * time.Second,
			MaxPages:      10,
			MaxPagesLimit: 100,
		},
		Storage: StorageConfig{
			Type:            "csv",
			OutputPath:      "./output",
			MongoDatabase:   "reviewgoat",
			MongoCollection: "reviews",
		},
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8501,
			Mode:      "release",
			RateRPS:   0.2,
			RateBurst: 3,
			CacheSize: 32,
			CacheTTL:  30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
