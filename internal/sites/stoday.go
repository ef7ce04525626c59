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

// SweepstakesTodayBase is the production root of SweepstakesToday.
const SweepstakesTodayBase = "https://www.sweepstakestoday.com"

var (
	stodayTitleSuffix  = regexp.MustCompile(`(?i)\s*\|\s*Sweepstakes\s*Today.*$`)
	stodayPrizeHeading = regexp.MustCompile(`(?i)\bPrize\s+Details\b`)
	stodayEnterHere    = regexp.MustCompile(`(?i)\bEnter\s*Here\b`)
	stodayRulesPage    = regexp.MustCompile(`(?i)\bRules\s*Page\b`)
	stodayExpires      = extract.LabelRe(`expires\s*on`)
	stodayFrequency    = extract.LabelRe(`frequency`)
)

// SweepstakesToday scrapes the "new sweeps" listing of SweepstakesToday.
// Headings on detail pages often carry banner text, so the title prefers
// metadata and the <title> tag over headings.
type SweepstakesToday struct {
	fetch  PageFetcher
	base   *url.URL
	domain string
}

// NewSweepstakesToday creates the adapter rooted at base.
func NewSweepstakesToday(f PageFetcher, base string) *SweepstakesToday {
	u := mustParse(base)
	return &SweepstakesToday{fetch: f, base: u, domain: strings.TrimPrefix(u.Hostname(), "www.")}
}

// Discover returns detail links from the newest listing. pages is unused;
// the listing is a single page.
func (a *SweepstakesToday) Discover(ctx context.Context, limit, _ int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	doc, err := a.fetch.Document(ctx, page(a.base, "/sweeps/new"))
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	set := newURLSet(limit)
	doc.Find(`a[href*="/sweeps/details/"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		return !set.add(extract.Resolve(a.base, s.AttrOr("href", "")))
	})
	return set.urls, nil
}

// Extract parses a details page.
func (a *SweepstakesToday) Extract(ctx context.Context, rawURL string) (model.Entry, error) {
	doc, err := a.fetch.Document(ctx, rawURL)
	if err != nil {
		return model.Entry{}, fmt.Errorf("fetch details: %w", err)
	}

	e := newEntry("stoday", rawURL)
	e.Title = extract.First(doc, defaultTitle,
		extract.Meta("og:title"),
		extract.TitleTag(stodayTitleSuffix),
		extract.Heading("h1 a, h2 a, h3 a"),
		extract.Heading("h3, h2, h1"),
	)

	e.PrizeSummary = extract.AfterHeading(doc.Selection, stodayPrizeHeading)
	if e.PrizeSummary == "" {
		e.PrizeSummary = extract.FirstParagraph(doc.Selection, prizeParagraph)
	}
	e.EntryFrequency = extract.LabelValue(doc.Selection, stodayFrequency)
	e.EndDate = extract.ParseDate(extract.LabelValue(doc.Selection, stodayExpires), extract.PreferFirstDay)

	e.EntryLink = extract.LinkNearText(doc.Selection, a.base, stodayEnterHere)
	if e.EntryLink == "" {
		e.EntryLink = extract.FirstExternalLink(doc.Selection, a.base, a.domain)
	}
	e.RulesLink = extract.LinkNearText(doc.Selection, a.base, stodayRulesPage)
	if e.RulesLink == "" {
		e.RulesLink = extract.FirstLink(doc.Selection, a.base, `a[href*="rules"]`)
	}
	e.ImageURL = extract.ImageURL(doc, doc.Selection, a.base)
	return e, nil
}
