package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
// CLI flags are applied by the caller on top of the result.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("REVIEWGOAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("reviewgoat")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".reviewgoat"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env overrides resolve.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("site.listing_url", cfg.Site.ListingURL)
	v.SetDefault("site.cookie_name", cfg.Site.CookieName)
	v.SetDefault("site.cookie_value", cfg.Site.CookieValue)
	v.SetDefault("site.cookie_domain", cfg.Site.CookieDomain)

	v.SetDefault("fetcher.type", cfg.Fetcher.Type)
	v.SetDefault("fetcher.headless", cfg.Fetcher.Headless)
	v.SetDefault("fetcher.no_sandbox", cfg.Fetcher.NoSandbox)
	v.SetDefault("fetcher.stealth", cfg.Fetcher.Stealth)
	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)
	v.SetDefault("fetcher.viewport_width", cfg.Fetcher.ViewportWidth)
	v.SetDefault("fetcher.viewport_height", cfg.Fetcher.ViewportHeight)
	v.SetDefault("fetcher.browser_bin", cfg.Fetcher.BrowserBin)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)

	v.SetDefault("scraper.wait_timeout", cfg.Scraper.WaitTimeout)
	v.SetDefault("scraper.page_delay", cfg.Scraper.PageDelay)
	v.SetDefault("scraper.max_pages", cfg.Scraper.MaxPages)
	v.SetDefault("scraper.max_pages_limit", cfg.Scraper.MaxPagesLimit)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.output_path", cfg.Storage.OutputPath)
	v.SetDefault("storage.mongo_uri", cfg.Storage.MongoURI)
	v.SetDefault("storage.mongo_database", cfg.Storage.MongoDatabase)
	v.SetDefault("storage.mongo_collection", cfg.Storage.MongoCollection)

	v.SetDefault("server.host", cfg.Server.Host)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.mode", cfg.Server.Mode)
	v.SetDefault("server.rate_rps", cfg.Server.RateRPS)
	v.SetDefault("server.rate_burst", cfg.Server.RateBurst)
	v.SetDefault("server.cache_size", cfg.Server.CacheSize)
	v.SetDefault("server.cache_ttl", cfg.Server.CacheTTL)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
