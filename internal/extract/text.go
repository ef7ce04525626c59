// Package extract holds the pattern matchers site adapters use to turn
// loosely structured HTML into entry fields. Every matcher is best effort:
// a miss yields an empty value, never an error.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Blocks is the selector scanned for "Label: value" lines.
const Blocks = "p, li, div, span, strong, b"

var whitespace = regexp.MustCompile(`\s+`)

// Text normalizes s: compatibility-folds Unicode (non-breaking spaces,
// full-width forms), collapses whitespace runs and trims.
func Text(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(norm.NFKC.String(s), " "))
}

// NodeText returns the normalized text of every node in sel, joining text
// fragments with a space so adjacent inline elements stay separated.
func NodeText(sel *goquery.Selection) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return Text(strings.Join(parts, " "))
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		*parts = append(*parts, n.Data)
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" || n.Data == "noscript" {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// ownText returns the normalized text held directly by the first node of
// sel, ignoring descendants.
func ownText(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	var b strings.Builder
	for c := sel.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteByte(' ')
		}
	}
	return Text(b.String())
}

// Truncate shortens s to at most n runes without adding a marker.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
