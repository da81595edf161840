package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Strategy extracts one field value from a review element.
// It reports false when its selector matched nothing, so the next
// strategy in a FirstMatch chain gets a chance.
type Strategy func(sel *goquery.Selection) (string, bool)

// FirstMatch combines strategies in order; the first one that matches wins.
func FirstMatch(strategies ...Strategy) Strategy {
	return func(sel *goquery.Selection) (string, bool) {
		for _, s := range strategies {
			if v, ok := s(sel); ok {
				return v, true
			}
		}
		return "", false
	}
}

// Text returns the trimmed text of the first element matching selector.
func Text(selector string) Strategy {
	return func(sel *goquery.Selection) (string, bool) {
		el := sel.Find(selector).First()
		if el.Length() == 0 {
			return "", false
		}
		return strings.TrimSpace(el.Text()), true
	}
}

var rateTokenPattern = regexp.MustCompile(`^rate(\d+)$`)

// RateToken locates the star element and returns the digits of its first
// "rateNN" class token. The bare "rate" token never matches, so an element
// without a numeric token yields "".
func RateToken(selector string) Strategy {
	return func(sel *goquery.Selection) (string, bool) {
		el := sel.Find(selector).First()
		if el.Length() == 0 {
			return "", false
		}
		class, _ := el.Attr("class")
		for _, token := range strings.Fields(class) {
			if m := rateTokenPattern.FindStringSubmatch(token); m != nil {
				return m[1], true
			}
		}
		return "", true
	}
}

const honorific = "さん"

// AuthorName locates the author container and reads the nested name
// element, falling back to the container's own text. The trailing
// honorific is stripped.
func AuthorName(container string) Strategy {
	return func(sel *goquery.Selection) (string, bool) {
		el := sel.Find(container).First()
		if el.Length() == 0 {
			return "", false
		}
		text := el.Text()
		if name := el.Find("span[itemprop='name'], a").First(); name.Length() > 0 {
			text = name.Text()
		}
		return StripHonorific(text), true
	}
}

// StripHonorific trims s and removes a trailing "さん".
func StripHonorific(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, honorific)
	return strings.TrimSpace(s)
}

// MultilineText returns the trimmed text of the first element matching
// selector with every <br> turned into "\n". The document is not modified.
func MultilineText(selector string) Strategy {
	return func(sel *goquery.Selection) (string, bool) {
		el := sel.Find(selector).First()
		if el.Length() == 0 {
			return "", false
		}
		body := el.Clone()
		body.Find("br").Each(func(_ int, br *goquery.Selection) {
			br.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: "\n"})
		})
		return strings.TrimSpace(body.Text()), true
	}
}

// Joined collects the text of the first link matching link inside every
// item matching item, in document order, joined with sep.
func Joined(item, link, sep string) Strategy {
	return func(sel *goquery.Selection) (string, bool) {
		items := sel.Find(item)
		if items.Length() == 0 {
			return "", false
		}
		var parts []string
		items.Each(func(_ int, it *goquery.Selection) {
			a := it.Find(link).First()
			if a.Length() > 0 {
				parts = append(parts, strings.TrimSpace(a.Text()))
			}
		})
		return strings.Join(parts, sep), true
	}
}

// Present reports whether any element matches selector.
func Present(selector string) func(*goquery.Selection) bool {
	return func(sel *goquery.Selection) bool {
		return sel.Find(selector).Length() > 0
	}
}

// Visible reports whether an element matching selector exists and its
// immediate parent is not inline-hidden with exactly "display: none;".
// An element without a parent counts as visible.
func Visible(selector string) func(*goquery.Selection) bool {
	return func(sel *goquery.Selection) bool {
		el := sel.Find(selector).First()
		if el.Length() == 0 {
			return false
		}
		parent := el.Parent()
		if parent.Length() == 0 {
			return true
		}
		style, _ := parent.Attr("style")
		return style != "display: none;"
	}
}
