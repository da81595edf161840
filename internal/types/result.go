package types

import "time"

// StopReason explains why pagination ended.
type StopReason string

const (
	StopCompleted  StopReason = "completed"
	StopTimeout    StopReason = "timeout"
	StopNoReviews  StopReason = "no_reviews"
	StopFetchError StopReason = "fetch_error"
	StopCanceled   StopReason = "canceled"
)

// Result is the outcome of a multi-page scrape.
type Result struct {
	ProductID ProductID `json:"product_id"`

	// Reviews holds every extracted review in page-then-document order.
	Reviews []Review `json:"reviews"`

	// Total is the count read from the first page title.
	Total ReviewCount `json:"total"`

	// MaxPages is the caller-supplied page cap.
	MaxPages int `json:"max_pages"`

	// RequiredPages is min(MaxPages, pages implied by Total), or MaxPages when Total is unknown.
	RequiredPages int `json:"required_pages"`

	// PageCounts holds the number of review elements found on each visited page.
	PageCounts []int `json:"page_counts"`

	StopReason StopReason `json:"stop_reason"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
}

// PagesVisited returns how many pages yielded reviews.
func (r *Result) PagesVisited() int {
	return len(r.PageCounts)
}

// Empty reports whether nothing was extracted.
func (r *Result) Empty() bool {
	return r == nil || len(r.Reviews) == 0
}

// Duration returns the wall time of the scrape.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RatingDistribution counts reviews per numeric rating.
// Reviews without a numeric rating are skipped.
func (r *Result) RatingDistribution() map[int]int {
	dist := make(map[int]int)
	for _, rv := range r.Reviews {
		if n, ok := rv.NumericRate(); ok {
			dist[n]++
		}
	}
	return dist
}
