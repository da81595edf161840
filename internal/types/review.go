package types

import (
	"strconv"
)

// Review represents a single review extracted from a listing page.
type Review struct {
	// Title is the review headline.
	Title string `json:"title" bson:"title"`

	// Rate is the star rating as digits taken from the "rateNN" class token.
	// It is empty when no such token is present.
	Rate string `json:"rate" bson:"rate"`

	// Date is the site-formatted posting date.
	Date string `json:"date" bson:"date"`

	// Author is the reviewer name with the honorific suffix stripped.
	Author string `json:"author" bson:"author"`

	// Purchased reports whether the reviewer bought the product.
	Purchased bool `json:"purchased" bson:"purchased"`

	// Attention reports a visible spoiler/content warning.
	Attention bool `json:"attention" bson:"attention"`

	// Review is the body text. Line breaks are preserved as "\n".
	Review string `json:"review" bson:"review"`

	// SelectGenre is the ";"-joined list of genre labels the reviewer picked.
	SelectGenre string `json:"select_genre" bson:"select_genre"`
}

// ReviewFields is the ordered list of exported column names.
var ReviewFields = []string{
	"title",
	"rate",
	"date",
	"author",
	"purchased",
	"attention",
	"review",
	"select_genre",
}

// Row returns the review as a flat row ordered like ReviewFields.
func (r Review) Row() []string {
	return []string{
		r.Title,
		r.Rate,
		r.Date,
		r.Author,
		strconv.FormatBool(r.Purchased),
		strconv.FormatBool(r.Attention),
		r.Review,
		r.SelectGenre,
	}
}

// NumericRate returns the rating as an int when it is a valid number.
func (r Review) NumericRate() (int, bool) {
	if r.Rate == "" {
		return 0, false
	}
	n, err := strconv.Atoi(r.Rate)
	if err != nil {
		return 0, false
	}
	return n, true
}
