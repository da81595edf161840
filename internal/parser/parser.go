// Package parser extracts review records from rendered review listing markup.
package parser

import (
	"github.com/PuerkitoBio/goquery"
)

// Review element selectors. The listing has used two markup structures over
// time; the primary one is tried first.
const (
	ReviewItemSelector   = "div.review_item"
	ReviewLegacySelector = "div.review_contents"

	// ContentSelector matches either structure and is what fetchers wait for.
	ContentSelector = ReviewItemSelector + ", " + ReviewLegacySelector
)

// ReviewElements selects the review elements of a listing document.
// It falls back to the legacy structure when the primary one matches nothing
// and reports whether the fallback was used.
func ReviewElements(doc *goquery.Document) (*goquery.Selection, bool) {
	if doc == nil {
		return nil, false
	}
	sel := doc.Find(ReviewItemSelector)
	if sel.Length() > 0 {
		return sel, false
	}
	return doc.Find(ReviewLegacySelector), true
}
