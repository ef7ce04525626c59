package sites

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"sweep_radar/internal/extract"
	"sweep_radar/internal/model"
)

// FanaticsBase is the production root of SweepstakesFanatics.
const FanaticsBase = "https://sweepstakesfanatics.com"

var (
	fanaticsFrequency   = extract.LabelRe(`(?:entry\s*)?frequency`)
	fanaticsEligibility = extract.LabelRe(`eligibility`)
	fanaticsStart       = extract.LabelRe(`start\s*date|begins|open\s*from`)
	fanaticsEnd         = extract.LabelRe(`end\s*date|ends|deadline`)

	fanaticsLinkScore = extract.KeywordScorer(map[*regexp.Regexp]int{
		regexp.MustCompile(`(?i)\b(?:enter|official|submit|click here)\b`): 5,
		regexp.MustCompile(`(?i)sweep|contest|giveaway|promo|win`):          2,
	})
)

// Fanatics scrapes SweepstakesFanatics. Discovery reads the RSS feed since
// the HTML home page is routinely blocked.
type Fanatics struct {
	fetch  PageFetcher
	base   *url.URL
	domain string
}

// NewFanatics creates the adapter rooted at base.
func NewFanatics(f PageFetcher, base string) *Fanatics {
	u := mustParse(base)
	return &Fanatics{fetch: f, base: u, domain: strings.TrimPrefix(u.Hostname(), "www.")}
}

// Discover returns the newest item links from the site feed. pages is unused.
func (a *Fanatics) Discover(ctx context.Context, limit, _ int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	feed, err := a.fetch.Feed(ctx, page(a.base, "/feed/"))
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	set := newURLSet(limit)
	for _, it := range feed.Items {
		if set.add(strings.TrimSpace(it.Link)) {
			break
		}
	}
	return set.urls, nil
}

// Extract parses a post page.
func (a *Fanatics) Extract(ctx context.Context, rawURL string) (model.Entry, error) {
	doc, err := a.fetch.Document(ctx, rawURL)
	if err != nil {
		return model.Entry{}, fmt.Errorf("fetch post: %w", err)
	}

	e := newEntry("fanatics", rawURL)
	e.Title = extract.First(doc, defaultTitle,
		extract.Meta("og:title"),
		extract.Heading("h1.entry-title"),
		extract.Heading("h1"),
		extract.TitleTag(nil),
	)

	content, scoped := contentScope(doc, "article .entry-content", ".entry-content")

	e.PrizeSummary = extract.FirstParagraph(content, prizeParagraph)
	if e.PrizeSummary == "" {
		e.PrizeSummary = extract.Truncate(extract.NodeText(content), 400)
	}

	labeled := func(re *regexp.Regexp) string {
		if v := extract.LabelValue(content, re); v != "" {
			return v
		}
		return extract.DefinitionValue(content, re)
	}
	e.EntryFrequency = labeled(fanaticsFrequency)
	e.Eligibility = labeled(fanaticsEligibility)
	e.StartDate = extract.ParseDate(labeled(fanaticsStart), extract.PreferFirstDay)
	e.EndDate = extract.ParseDate(labeled(fanaticsEnd), extract.PreferFirstDay)

	e.EntryLink = extract.BestExternalLink(content, a.base, a.domain, fanaticsLinkScore)

	if scoped {
		e.ImageURL = extract.ImageURL(doc, content, a.base)
	} else {
		e.ImageURL = extract.ImageURL(doc, nil, a.base)
	}
	return e, nil
}
