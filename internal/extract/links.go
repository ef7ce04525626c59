package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Anchor is a resolved link and its visible text.
type Anchor struct {
	Text string
	Href string
}

// Resolve returns href resolved against base, or "" when href is empty or
// unparseable.
func Resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	return u.String()
}

// SameSite reports whether host belongs to domain or one of its subdomains.
func SameSite(host, domain string) bool {
	host = strings.ToLower(host)
	domain = strings.ToLower(strings.TrimPrefix(domain, "www."))
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// ExternalAnchors returns the http(s) anchors under sel whose resolved host
// is outside domain, in document order.
func ExternalAnchors(sel *goquery.Selection, base *url.URL, domain string) []Anchor {
	var out []Anchor
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs := Resolve(base, href)
		if abs == "" {
			return
		}
		u, err := url.Parse(abs)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return
		}
		if SameSite(u.Hostname(), domain) {
			return
		}
		out = append(out, Anchor{Text: NodeText(a), Href: abs})
	})
	return out
}

// FirstExternalLink returns the first anchor leaving domain.
func FirstExternalLink(sel *goquery.Selection, base *url.URL, domain string) string {
	anchors := ExternalAnchors(sel, base, domain)
	if len(anchors) == 0 {
		return ""
	}
	return anchors[0].Href
}

// Scorer weights an anchor by its text.
type Scorer func(text string) int

// BestExternalLink returns the highest scoring anchor leaving domain. Ties
// go to the earliest anchor.
func BestExternalLink(sel *goquery.Selection, base *url.URL, domain string, score Scorer) string {
	best, bestScore := "", -1
	for _, a := range ExternalAnchors(sel, base, domain) {
		if s := score(a.Text); s > bestScore {
			best, bestScore = a.Href, s
		}
	}
	return best
}

// KeywordScorer adds weight for every pattern matching the anchor text.
func KeywordScorer(weights map[*regexp.Regexp]int) Scorer {
	return func(text string) int {
		total := 0
		for re, w := range weights {
			if re.MatchString(text) {
				total += w
			}
		}
		return total
	}
}

// LinkNearText finds the first element whose own text matches re and
// returns the link it is, or the first link it contains.
func LinkNearText(sel *goquery.Selection, base *url.URL, re *regexp.Regexp) string {
	var out string
	sel.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !re.MatchString(ownText(s)) {
			return true
		}
		a := s
		if goquery.NodeName(s) != "a" || s.AttrOr("href", "") == "" {
			a = s.Find("a[href]").First()
		}
		if href := Resolve(base, a.AttrOr("href", "")); href != "" {
			out = href
			return false
		}
		return true
	})
	return out
}

// FirstLink returns the first anchor matching selector, resolved against base.
func FirstLink(sel *goquery.Selection, base *url.URL, selector string) string {
	var out string
	sel.Find(selector).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		out = Resolve(base, a.AttrOr("href", ""))
		return out == ""
	})
	return out
}

// imageAttrs lists where lazy loaders keep the real image address.
var imageAttrs = []string{"src", "data-src", "data-lazy-src"}

// ImageURL returns og:image, falling back to the first http(s) image under
// scope. Inline data: placeholders are skipped.
func ImageURL(doc *goquery.Document, scope *goquery.Selection, base *url.URL) string {
	if v := Resolve(base, MetaContent(doc.Selection, "og:image")); IsWebURL(v) {
		return v
	}
	if scope == nil {
		return ""
	}
	var out string
	scope.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		for _, attr := range imageAttrs {
			if v := Resolve(base, img.AttrOr(attr, "")); IsWebURL(v) {
				out = v
				return false
			}
		}
		return true
	})
	return out
}

// IsWebURL reports whether raw is an absolute http or https URL.
func IsWebURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
