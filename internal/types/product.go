package types

import (
	"fmt"
	"regexp"
	"strings"
)

// ReviewsPerPage is the number of reviews the listing shows per page.
const ReviewsPerPage = 10

var productIDPattern = regexp.MustCompile(`^RJ\d+$`)

// ProductID is a validated marketplace item code ("RJ" followed by digits).
type ProductID string

// ParseProductID validates raw and returns it as a ProductID. The whole
// input must match; whitespace and lower-case prefixes are rejected.
func ParseProductID(raw string) (ProductID, error) {
	if !productIDPattern.MatchString(raw) {
		return "", fmt.Errorf("%w: %q", ErrInvalidProductID, raw)
	}
	return ProductID(raw), nil
}

// String implements fmt.Stringer.
func (p ProductID) String() string {
	return string(p)
}

// ListingURL expands a listing URL template for the given page.
// The template uses {product} and {page} placeholders.
func (p ProductID) ListingURL(template string, page int) string {
	return strings.NewReplacer(
		"{product}", string(p),
		"{page}", fmt.Sprintf("%d", page),
	).Replace(template)
}
