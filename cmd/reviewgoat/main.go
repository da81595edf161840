package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/IshaanNene/ReviewGoat/internal/config"
	"github.com/IshaanNene/ReviewGoat/internal/types"
)

var (
	cfgFile     string
	verbose     bool
	outputPath  string
	outputType  string
	fetcherType string
	maxPages    int
	pageNumber  int
	port        int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reviewgoat",
		Short: "ReviewGoat: DLsite review collector",
		Long: `ReviewGoat collects the user reviews of a DLsite work and exports them.

Features:
  • Headless Chrome (go-rod) or plain HTTP page loading
  • Two generations of review markup supported
  • CSV, JSON, JSONL and MongoDB export
  • Web dashboard with rating chart and CSV download
  • Prometheus metrics endpoint`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&fetcherType, "fetcher", "", "page loader: browser or http")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(pageCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads, overrides and validates the config, then builds the logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	applyCLIOverrides(cfg)

	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, setupLogger(cfg.Logging), nil
}

// checkMaxPages rejects page caps outside 1..limit.
func checkMaxPages(n, limit int) error {
	if n < 1 || n > limit {
		return fmt.Errorf("%w: must be 1-%d, got %d", types.ErrInvalidMaxPages, limit, n)
	}
	return nil
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ReviewGoat %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			applyCLIOverrides(cfg)

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}

// setupLogger creates a structured logger from the logging config.
func setupLogger(lc config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stderr
	if lc.Output == "stdout" {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if fetcherType != "" {
		cfg.Fetcher.Type = strings.ToLower(fetcherType)
	}
	if outputType != "" {
		cfg.Storage.Type = strings.ToLower(outputType)
	}
	if port > 0 {
		cfg.Server.Port = port
	}
}
