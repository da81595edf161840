package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/IshaanNene/ReviewGoat/internal/engine"
	"github.com/IshaanNene/ReviewGoat/internal/fetcher"
	"github.com/IshaanNene/ReviewGoat/internal/observability"
	"github.com/IshaanNene/ReviewGoat/internal/parser"
	"github.com/IshaanNene/ReviewGoat/internal/storage"
	"github.com/IshaanNene/ReviewGoat/internal/types"
)

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [product-id]",
		Short: "Collect every review of a product",
		Long:  "Walk the review listing of the given product (e.g. RJ323439) page by page and export all reviews.",
		Args:  cobra.ExactArgs(1),
		RunE:  runScrape,
	}

	cmd.Flags().IntVarP(&maxPages, "max-pages", "m", 0, "maximum listing pages to visit (0 = config default)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (default <output_path>/<product>_reviews.<format>)")
	cmd.Flags().StringVarP(&outputType, "format", "f", "", "output format: csv, json, jsonl, mongodb, or a comma-separated list")

	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	id, err := types.ParseProductID(args[0])
	if err != nil {
		return err
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if maxPages == 0 {
		maxPages = cfg.Scraper.MaxPages
	}
	if err := checkMaxPages(maxPages, cfg.Scraper.MaxPagesLimit); err != nil {
		return err
	}

	launcher, err := fetcher.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	scraper := engine.NewScraper(launcher, cfg, observability.NewMetrics(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting scrape",
		"product", id,
		"max_pages", maxPages,
		"fetcher", launcher.Type(),
		"format", cfg.Storage.Type,
	)

	res, err := scraper.ScrapeAll(ctx, id, maxPages)
	if err != nil {
		logger.Error("scrape failed", "product", id, "error", err)
	}
	if res.Empty() {
		return fmt.Errorf("no reviews found for %s, check the product ID", id)
	}

	store, err := storage.New(&cfg.Storage, id, outputPath, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	if err := store.Store(res.Reviews); err != nil {
		_ = store.Close()
		return fmt.Errorf("store reviews: %w", err)
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}

	var dests []string
	for _, kind := range storage.Types(&cfg.Storage) {
		if kind == "mongodb" {
			dests = append(dests, cfg.Storage.MongoDatabase+"."+cfg.Storage.MongoCollection)
			continue
		}
		dests = append(dests, storage.FilePath(&cfg.Storage, id, outputPath, kind))
	}

	printSummary(res, strings.Join(dests, "\n"))
	return nil
}

// pageCmd creates the "page" subcommand for inspecting a single listing page.
func pageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page [product-id]",
		Short: "Fetch one listing page and print its reviews",
		Args:  cobra.ExactArgs(1),
		RunE:  runPage,
	}
	cmd.Flags().IntVarP(&pageNumber, "page", "p", 1, "listing page number")
	return cmd
}

func runPage(cmd *cobra.Command, args []string) error {
	id, err := types.ParseProductID(args[0])
	if err != nil {
		return err
	}
	if pageNumber < 1 {
		return fmt.Errorf("--page must be >= 1, got %d", pageNumber)
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	launcher, err := fetcher.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	page, hasNext, err := fetcher.NewPageFetcher(launcher, cfg, nil, logger).Fetch(ctx, id, pageNumber)
	if err != nil {
		return err
	}
	if page == nil {
		return fmt.Errorf("no reviews found on page %d of %s", pageNumber, id)
	}

	doc, err := page.Document()
	if err != nil {
		return err
	}
	reviews := parser.NewExtractor(logger).ExtractAll(doc)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("%s page %d", id, pageNumber))
	t.AppendHeader(table.Row{"#", "Title", "Rate", "Date", "Author", "Purchased"})
	for i, r := range reviews {
		t.AppendRow(table.Row{i + 1, r.Title, r.Rate, r.Date, r.Author, r.Purchased})
	}
	t.AppendFooter(table.Row{"", "", "", "", "next page", hasNext})
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

// printSummary renders the scrape outcome and rating distribution.
func printSummary(res *types.Result, dest string) {
	total := "unknown"
	if res.Total.Known {
		total = fmt.Sprintf("%d", res.Total.N)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Product", "Reviews", "Total", "Pages", "Stopped", "Elapsed", "Output"})
	t.AppendRow(table.Row{
		res.ProductID,
		len(res.Reviews),
		total,
		fmt.Sprintf("%d/%d", res.PagesVisited(), res.RequiredPages),
		res.StopReason,
		res.Duration().Round(time.Millisecond),
		dest,
	})
	t.SetStyle(table.StyleRounded)
	t.Render()

	dist := res.RatingDistribution()
	if len(dist) == 0 {
		return
	}
	rates := make([]int, 0, len(dist))
	for r := range dist {
		rates = append(rates, r)
	}
	sort.Ints(rates)

	d := table.NewWriter()
	d.SetOutputMirror(os.Stdout)
	d.AppendHeader(table.Row{"Rate", "Reviews"})
	for _, r := range rates {
		d.AppendRow(table.Row{r, dist[r]})
	}
	d.SetStyle(table.StyleRounded)
	d.Render()
}
