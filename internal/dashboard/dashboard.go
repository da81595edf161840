// Package dashboard serves the web front-end: a scrape form, the result
// table with a rating chart, and CSV downloads.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/IshaanNene/ReviewGoat/internal/config"
	"github.com/IshaanNene/ReviewGoat/internal/engine"
	"github.com/IshaanNene/ReviewGoat/internal/observability"
	"github.com/IshaanNene/ReviewGoat/internal/types"
)

// Runner runs multi-page scrapes.
type Runner interface {
	ScrapeAll(ctx context.Context, id types.ProductID, maxPages int) (*types.Result, error)
	State() engine.State
}

// Dashboard serves the scrape form and results.
type Dashboard struct {
	cfg     *config.Config
	runner  Runner
	metrics *observability.Metrics
	results *expirable.LRU[string, *types.Result]
	sem     chan struct{}
	started time.Time
	logger  *slog.Logger
}

// NewDashboard creates a new dashboard server.
func NewDashboard(cfg *config.Config, runner Runner, metrics *observability.Metrics, logger *slog.Logger) *Dashboard {
	return &Dashboard{
		cfg:     cfg,
		runner:  runner,
		metrics: metrics,
		results: expirable.NewLRU[string, *types.Result](cfg.Server.CacheSize, nil, cfg.Server.CacheTTL),
		sem:     make(chan struct{}, 1),
		started: time.Now(),
		logger:  logger.With("component", "dashboard"),
	}
}

// Router builds the gin engine with all routes and middleware.
//
//	Global:  Recovery → request log
//	Scrape:  RateLimit
func (d *Dashboard) Router() *gin.Engine {
	gin.SetMode(d.cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(d.logger))
	r.SetHTMLTemplate(template.Must(template.New("page").Funcs(templateFuncs).Parse(pageHTML)))

	limited := RateLimit(d.cfg.Server.RateRPS, d.cfg.Server.RateBurst)

	r.GET("/", d.handleIndex)
	r.POST("/scrape", limited, d.handleScrape)
	r.GET("/download/:key", d.handleDownload)

	api := r.Group("/api")
	api.GET("/health", d.handleHealth)
	api.GET("/scrape", limited, d.handleAPIScrape)

	if d.cfg.Metrics.Enabled && d.metrics != nil {
		r.GET(d.cfg.Metrics.Path, gin.WrapH(d.metrics.Handler()))
	}

	return r
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (d *Dashboard) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", d.cfg.Server.Host, d.cfg.Server.Port),
		Handler:           d.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		d.logger.Info("dashboard starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	d.logger.Info("dashboard shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// run executes one scrape at a time. It returns ctx.Err() if ctx ends while
// waiting for a running scrape to finish.
func (d *Dashboard) run(ctx context.Context, id types.ProductID, maxPages int) (*types.Result, error) {
	select {
	case d.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-d.sem }()

	return d.runner.ScrapeAll(ctx, id, maxPages)
}
