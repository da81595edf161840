package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"

	"github.com/IshaanNene/ReviewGoat/internal/types"
)

var totalCountPattern = regexp.MustCompile(`\((\d+)\)`)

// ParseTotalCount reads the review total from a listing title such as
// "Reviews of Foo (42)". The first parenthesized integer wins.
// A title without one yields an unknown count.
func ParseTotalCount(title string) types.ReviewCount {
	m := totalCountPattern.FindStringSubmatch(title)
	if m == nil {
		return types.ReviewCount{}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return types.ReviewCount{}
	}
	return types.ReviewCount{N: n, Known: true}
}

// TitleFromHTML returns the trimmed text of the document's <title>, or ""
// when there is none.
func TitleFromHTML(markup string) (string, error) {
	doc, err := htmlquery.Parse(strings.NewReader(markup))
	if err != nil {
		return "", &types.ParseError{Field: "title", Selector: "//title", Err: err}
	}
	node := htmlquery.FindOne(doc, "//title")
	if node == nil {
		return "", nil
	}
	return strings.TrimSpace(htmlquery.InnerText(node)), nil
}
