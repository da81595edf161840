package dashboard

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IshaanNene/ReviewGoat/internal/storage"
	"github.com/IshaanNene/ReviewGoat/internal/types"
)

const defaultProductID = "RJ323439"

// chartBar is one bar of the rating distribution chart.
type chartBar struct {
	Rate    int
	Count   int
	Percent float64
}

// pageData is the template model for the single page.
type pageData struct {
	ProductID     string
	MaxPages      int
	MaxPagesLimit int

	Error    string
	NotFound bool

	Result      *types.Result
	Chart       []chartBar
	DownloadURL string
	Filename    string
}

func (d *Dashboard) newPageData(productID string, maxPages int) pageData {
	if maxPages < 1 {
		maxPages = d.cfg.Scraper.MaxPages
	}
	return pageData{
		ProductID:     productID,
		MaxPages:      maxPages,
		MaxPagesLimit: d.cfg.Scraper.MaxPagesLimit,
	}
}

func (d *Dashboard) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "page", d.newPageData(defaultProductID, d.cfg.Scraper.MaxPages))
}

func (d *Dashboard) handleScrape(c *gin.Context) {
	rawID := c.PostForm("product_id")
	rawMax := c.PostForm("max_pages")

	id, maxPages, err := d.parseInput(rawID, rawMax)
	data := d.newPageData(strings.TrimSpace(rawID), maxPages)
	if err != nil {
		data.Error = d.inputMessage(err)
		c.HTML(http.StatusBadRequest, "page", data)
		return
	}

	res, err := d.run(c.Request.Context(), id, maxPages)
	if err != nil {
		d.logger.Error("scrape failed", "product", id, "error", err)
	}
	if res.Empty() {
		data.NotFound = true
		c.HTML(http.StatusNotFound, "page", data)
		return
	}

	key := d.remember(res)
	data.Result = res
	data.Chart = ratingChart(res)
	data.DownloadURL = "/download/" + key
	data.Filename = storage.DefaultFilename(id, "csv")
	c.HTML(http.StatusOK, "page", data)
}

func (d *Dashboard) handleDownload(c *gin.Context) {
	res, ok := d.results.Get(c.Param("key"))
	if !ok {
		c.String(http.StatusNotFound, "download expired, please run the scrape again")
		return
	}

	filename := storage.DefaultFilename(res.ProductID, "csv")
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)
	if err := storage.WriteCSV(c.Writer, res.Reviews); err != nil {
		d.logger.Error("csv download failed", "product", res.ProductID, "error", err)
	}
}

// scrapeResponse is the JSON body of GET /api/scrape.
type scrapeResponse struct {
	ProductID          types.ProductID  `json:"product_id"`
	Count              int              `json:"count"`
	Total              int              `json:"total"`
	TotalKnown         bool             `json:"total_known"`
	RequiredPages      int              `json:"required_pages"`
	PagesVisited       int              `json:"pages_visited"`
	StopReason         types.StopReason `json:"stop_reason"`
	DurationMs         int64            `json:"duration_ms"`
	RatingDistribution map[string]int   `json:"rating_distribution"`
	DownloadURL        string           `json:"download_url"`
	Reviews            []types.Review   `json:"reviews"`
}

func (d *Dashboard) handleAPIScrape(c *gin.Context) {
	id, maxPages, err := d.parseInput(c.Query("product_id"), c.DefaultQuery("max_pages", strconv.Itoa(d.cfg.Scraper.MaxPages)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": d.inputMessage(err)})
		return
	}

	res, err := d.run(c.Request.Context(), id, maxPages)
	if err != nil {
		d.logger.Error("scrape failed", "product", id, "error", err)
	}
	if res.Empty() {
		c.JSON(http.StatusNotFound, gin.H{"error": "no reviews found, check the product ID"})
		return
	}

	dist := make(map[string]int)
	for rate, n := range res.RatingDistribution() {
		dist[strconv.Itoa(rate)] = n
	}

	c.JSON(http.StatusOK, scrapeResponse{
		ProductID:          res.ProductID,
		Count:              len(res.Reviews),
		Total:              res.Total.N,
		TotalKnown:         res.Total.Known,
		RequiredPages:      res.RequiredPages,
		PagesVisited:       res.PagesVisited(),
		StopReason:         res.StopReason,
		DurationMs:         res.Duration().Milliseconds(),
		RatingDistribution: dist,
		DownloadURL:        "/download/" + d.remember(res),
		Reviews:            res.Reviews,
	})
}

func (d *Dashboard) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"state":   d.runner.State().String(),
		"uptime":  time.Since(d.started).Round(time.Second).String(),
		"cached":  d.results.Len(),
		"metrics": d.metrics.Snapshot(),
	})
}

// parseInput validates the product ID and page cap before any network
// activity. An unparsable page cap is returned as 0 alongside the error.
func (d *Dashboard) parseInput(rawID, rawMax string) (types.ProductID, int, error) {
	maxPages, convErr := strconv.Atoi(strings.TrimSpace(rawMax))

	id, err := types.ParseProductID(rawID)
	if err != nil {
		return "", maxPages, err
	}
	if convErr != nil || maxPages < 1 || maxPages > d.cfg.Scraper.MaxPagesLimit {
		return "", maxPages, fmt.Errorf("%w: must be 1-%d", types.ErrInvalidMaxPages, d.cfg.Scraper.MaxPagesLimit)
	}
	return id, maxPages, nil
}

func (d *Dashboard) inputMessage(err error) string {
	switch {
	case errors.Is(err, types.ErrInvalidProductID):
		return "Invalid product ID. Enter \"RJ\" followed by digits, e.g. RJ323439."
	case errors.Is(err, types.ErrInvalidMaxPages):
		return fmt.Sprintf("Max pages must be between 1 and %d.", d.cfg.Scraper.MaxPagesLimit)
	default:
		return "Invalid input."
	}
}

// remember caches res for download and returns its key.
func (d *Dashboard) remember(res *types.Result) string {
	key := uuid.NewString()
	d.results.Add(key, res)
	return key
}

// ratingChart builds bars for each numeric rating in ascending order.
// It returns nil when no review has a numeric rating.
func ratingChart(res *types.Result) []chartBar {
	dist := res.RatingDistribution()
	if len(dist) == 0 {
		return nil
	}

	peak := 0
	rates := make([]int, 0, len(dist))
	for rate, n := range dist {
		rates = append(rates, rate)
		peak = max(peak, n)
	}
	sort.Ints(rates)

	bars := make([]chartBar, len(rates))
	for i, rate := range rates {
		bars[i] = chartBar{
			Rate:    rate,
			Count:   dist[rate],
			Percent: float64(dist[rate]) * 100 / float64(peak),
		}
	}
	return bars
}
