package types

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ReviewCount is the total review count read from a listing page title.
// Known is false when the title did not carry a count.
type ReviewCount struct {
	N     int  `json:"n"`
	Known bool `json:"known"`
}

// Pages returns the number of listing pages needed to show every review.
func (c ReviewCount) Pages() int {
	if !c.Known || c.N <= 0 {
		return 0
	}
	return (c.N + ReviewsPerPage - 1) / ReviewsPerPage
}

// Page is a rendered review listing page.
type Page struct {
	// URL is the listing URL that was loaded.
	URL string

	// Number is the 1-based listing page number.
	Number int

	// HTML is the rendered document markup.
	HTML string

	// Title is the document title as reported by the session.
	Title string

	// Total is the review count parsed from Title.
	Total ReviewCount

	// Doc is a parsed goquery document (lazily loaded).
	Doc *goquery.Document

	// FetchDuration is how long loading and waiting took.
	FetchDuration time.Duration

	// FetchedAt is when the document was read.
	FetchedAt time.Time
}

// Document returns a parsed goquery document, lazily initializing it.
func (p *Page) Document() (*goquery.Document, error) {
	if p.Doc != nil {
		return p.Doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.HTML))
	if err != nil {
		return nil, err
	}
	p.Doc = doc
	return doc, nil
}

// HasNext reports whether the listing continues past this page.
// It is false whenever the total is unknown.
func (p *Page) HasNext() bool {
	return p.Number < p.Total.Pages()
}
