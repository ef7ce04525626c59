package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const containers = "p, li, div"

// Matcher pulls one candidate value out of a document. It returns "" on a miss.
type Matcher func(doc *goquery.Document) string

// First runs matchers in order and returns the first non-empty result,
// or fallback when every matcher misses.
func First(doc *goquery.Document, fallback string, matchers ...Matcher) string {
	for _, m := range matchers {
		if v := Text(m(doc)); v != "" {
			return v
		}
	}
	return fallback
}

// Meta matches the content of <meta property="prop">.
func Meta(prop string) Matcher {
	return func(doc *goquery.Document) string {
		return MetaContent(doc.Selection, prop)
	}
}

// MetaContent returns the content attribute of <meta property="prop">.
func MetaContent(sel *goquery.Selection, prop string) string {
	v, _ := sel.Find(`meta[property="` + prop + `"][content]`).First().Attr("content")
	return Text(v)
}

// Heading matches the text of the first element selected by selector.
func Heading(selector string) Matcher {
	return func(doc *goquery.Document) string {
		return NodeText(doc.Find(selector).First())
	}
}

// TitleTag matches the <title> text with strip removed, when strip is non-nil.
func TitleTag(strip *regexp.Regexp) Matcher {
	return func(doc *goquery.Document) string {
		t := NodeText(doc.Find("title").First())
		if strip != nil {
			t = strip.ReplaceAllString(t, "")
		}
		return t
	}
}

// LabelValue scans Blocks under sel in document order for a "label: value"
// line whose label matches re, and returns the first non-empty value.
// Containers of other paragraphs and blocks without a colon are skipped,
// and only the first colon splits.
func LabelValue(sel *goquery.Selection, re *regexp.Regexp) string {
	var out string
	sel.Find(Blocks).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Find(containers).Length() > 0 {
			return true
		}
		if v, ok := splitLabel(NodeText(s), re); ok {
			out = v
			return false
		}
		return true
	})
	return out
}

// DefinitionValue looks for a <dt> whose text matches re and returns the
// text of its following <dd>.
func DefinitionValue(sel *goquery.Selection, re *regexp.Regexp) string {
	var out string
	sel.Find("dt").EachWithBreak(func(_ int, dt *goquery.Selection) bool {
		label := strings.TrimSuffix(NodeText(dt), ":")
		if !re.MatchString(strings.TrimSpace(label)) {
			return true
		}
		if v := NodeText(dt.NextFiltered("dd")); v != "" {
			out = v
			return false
		}
		return true
	})
	return out
}

func splitLabel(text string, re *regexp.Regexp) (string, bool) {
	label, value, found := strings.Cut(text, ":")
	if !found {
		return "", false
	}
	if !re.MatchString(strings.TrimSpace(label)) {
		return "", false
	}
	value = Text(value)
	return value, value != ""
}

// LabelRe compiles a case-insensitive pattern anchored to the whole label.
func LabelRe(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^\s*(?:` + pattern + `)\s*$`)
}

// FirstParagraph returns the text of the first <p> under sel matching re.
func FirstParagraph(sel *goquery.Selection, re *regexp.Regexp) string {
	var out string
	sel.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if t := NodeText(p); re.MatchString(t) {
			out = t
			return false
		}
		return true
	})
	return out
}

// AfterHeading finds the first heading (h3, h4) whose text matches re and
// returns the text of the next p, div or li that follows it in the document.
func AfterHeading(sel *goquery.Selection, re *regexp.Regexp) string {
	var out string
	found := false
	sel.Find("h3, h4, p, div, li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name := goquery.NodeName(s)
		if !found {
			if (name == "h3" || name == "h4") && re.MatchString(NodeText(s)) {
				found = true
			}
			return true
		}
		if name == "h3" || name == "h4" {
			return true
		}
		out = NodeText(s)
		return false
	})
	return out
}
