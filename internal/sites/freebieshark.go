package sites

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sweep_radar/internal/extract"
	"sweep_radar/internal/model"
)

// FreebieSharkBase is the production root of FreebieShark.
const FreebieSharkBase = "https://www.freebieshark.com"

const freebieSharkCategory = "/category/sweepstakes"

var (
	sharkPrize       = extract.LabelRe(`prizes?`)
	sharkEntry       = extract.LabelRe(`entry`)
	sharkEligibility = extract.LabelRe(`eligibility`)
	sharkStart       = extract.LabelRe(`start\s*date`)
	sharkEnd         = extract.LabelRe(`end\s*date`)
	sharkRulesText   = regexp.MustCompile(`(?i)\brules\b`)
)

// FreebieShark scrapes the FreebieShark sweepstakes category. Posts carry
// upper-case "LABEL: value" lines; month-only end dates mean the last day.
type FreebieShark struct {
	fetch  PageFetcher
	base   *url.URL
	domain string
}

// NewFreebieShark creates the adapter rooted at base.
func NewFreebieShark(f PageFetcher, base string) *FreebieShark {
	u := mustParse(base)
	return &FreebieShark{fetch: f, base: u, domain: strings.TrimPrefix(u.Hostname(), "www.")}
}

// Discover walks up to pages category pages collecting post links.
func (a *FreebieShark) Discover(ctx context.Context, limit, pages int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	set := newURLSet(limit)
	for n := 1; n <= max(1, pages); n++ {
		listing := page(a.base, freebieSharkCategory)
		if n > 1 {
			listing = page(a.base, fmt.Sprintf("%s/page/%d", freebieSharkCategory, n))
		}
		doc, err := a.fetch.Document(ctx, listing)
		if err != nil {
			return set.urls, fmt.Errorf("fetch category page %d: %w", n, err)
		}
		doc.Find(`a:contains("Read more"), h2 a, h3 a`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href := extract.Resolve(a.base, s.AttrOr("href", ""))
			if href == "" || strings.Contains(href, "/category/") {
				return true
			}
			return !set.add(href)
		})
		if set.full() {
			break
		}
	}
	return set.urls, nil
}

// Extract parses a post page.
func (a *FreebieShark) Extract(ctx context.Context, rawURL string) (model.Entry, error) {
	doc, err := a.fetch.Document(ctx, rawURL)
	if err != nil {
		return model.Entry{}, fmt.Errorf("fetch post: %w", err)
	}

	e := newEntry("freebieshark", rawURL)
	e.Title = extract.First(doc, defaultTitle,
		extract.Meta("og:title"),
		extract.Heading("h1"),
		extract.TitleTag(nil),
	)
	e.ImageURL = extract.MetaContent(doc.Selection, "og:image")

	e.PrizeSummary = extract.LabelValue(doc.Selection, sharkPrize)
	e.EntryFrequency = extract.LabelValue(doc.Selection, sharkEntry)
	e.Eligibility = extract.LabelValue(doc.Selection, sharkEligibility)
	e.StartDate = extract.ParseDate(extract.LabelValue(doc.Selection, sharkStart), extract.PreferLastDay)
	e.EndDate = extract.ParseDate(extract.LabelValue(doc.Selection, sharkEnd), extract.PreferLastDay)

	content, _ := contentScope(doc, "article .entry-content", ".entry-content")
	for _, anchor := range extract.ExternalAnchors(content, a.base, a.domain) {
		if sharkRulesText.MatchString(anchor.Text) {
			if e.RulesLink == "" {
				e.RulesLink = anchor.Href
			}
			continue
		}
		if e.EntryLink == "" {
			e.EntryLink = anchor.Href
		}
	}
	return e, nil
}
