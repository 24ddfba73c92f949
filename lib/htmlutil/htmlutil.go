package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// CleanText turns non-printable runes into spaces, trims the ends and
// collapses inner runs of whitespace down to a single space. Mapping to
// spaces instead of dropping keeps words apart when markup splits them
// with newlines.
func CleanText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return ' '
	}, s)
	s = strings.TrimSpace(s)
	return innerWhitespace.ReplaceAllString(s, " ")
}

// CellText returns the cleaned text content of a selection, typically a
// single <td> in a stats table.
func CellText(sel *goquery.Selection) string {
	return CleanText(sel.Text())
}

// FirstHref returns the href of the first anchor under sel. The second
// return is false when the selection contains no anchor with an href
// attribute.
func FirstHref(sel *goquery.Selection) (string, bool) {
	href, ok := sel.Find("a[href]").First().Attr("href")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(href), true
}
