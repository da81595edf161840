package parser

import (
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/ReviewGoat/internal/types"
)

// Field strategies, primary markup first and the legacy variant second.
var (
	titleField  = FirstMatch(Text(".reveiw_title_item"), Text(".review_title"))
	rateField   = FirstMatch(RateToken(".rate.type_review"), RateToken(".review_star .rate"))
	dateField   = FirstMatch(Text(".reveiw_date_item"), Text(".review_date p"))
	authorField = FirstMatch(AuthorName(".reveiw_author_item"), AuthorName(".review_author span"))
	bodyField   = MultilineText("p.review_desc")
	genreField  = Joined(".review_select_genre_item", "a.btn_default", ";")

	purchasedFlag = Present(".icon_purchased, .reveiw_purchased")
	attentionFlag = Visible(".review_attention")
)

// Extractor turns review elements into records.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates a new review field extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{
		logger: logger.With("component", "extractor"),
	}
}

// Extract builds a record from one review element. It never fails: a field
// whose extraction panics is left at its zero value and the rest are still
// filled in.
func (e *Extractor) Extract(sel *goquery.Selection) types.Review {
	return types.Review{
		Title:       e.text("title", sel, titleField),
		Rate:        e.text("rate", sel, rateField),
		Date:        e.text("date", sel, dateField),
		Author:      e.text("author", sel, authorField),
		Purchased:   e.flag("purchased", sel, purchasedFlag),
		Attention:   e.flag("attention", sel, attentionFlag),
		Review:      e.text("review", sel, bodyField),
		SelectGenre: e.text("select_genre", sel, genreField),
	}
}

// ExtractAll extracts every review element of doc in document order.
func (e *Extractor) ExtractAll(doc *goquery.Document) []types.Review {
	elements, legacy := ReviewElements(doc)
	if elements == nil || elements.Length() == 0 {
		return nil
	}
	if legacy {
		e.logger.Debug("using legacy review selector", "selector", ReviewLegacySelector, "count", elements.Length())
	}

	reviews := make([]types.Review, 0, elements.Length())
	elements.Each(func(_ int, sel *goquery.Selection) {
		reviews = append(reviews, e.Extract(sel))
	})
	return reviews
}

// text runs a string strategy, recovering from panics.
func (e *Extractor) text(field string, sel *goquery.Selection, s Strategy) (v string) {
	defer e.recoverField(field, func() { v = "" })
	v, _ = s(sel)
	return v
}

// flag runs a presence check, recovering from panics.
func (e *Extractor) flag(field string, sel *goquery.Selection, f func(*goquery.Selection) bool) (v bool) {
	defer e.recoverField(field, func() { v = false })
	return f(sel)
}

func (e *Extractor) recoverField(field string, reset func()) {
	if r := recover(); r != nil {
		reset()
		e.logger.Warn("field extraction failed",
			"error", &types.ParseError{Field: field, Err: fmt.Errorf("%v", r)},
		)
	}
}
