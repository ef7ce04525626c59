// Package sites implements one adapter per sweepstakes listing site and the
// static registry that maps site keys to them.
package sites

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"sweep_radar/internal/model"
)

// ErrUnknownSite is returned for a site key that is not registered.
var ErrUnknownSite = errors.New("unknown site")

const defaultTitle = "Sweepstakes"

var prizeParagraph = regexp.MustCompile(`(?i)(\$\d|\b(?:winners?|prize|cash|gift|card)\b)`)

// PageFetcher is the subset of the fetcher adapters depend on.
type PageFetcher interface {
	Document(ctx context.Context, rawURL string) (*goquery.Document, error)
	Feed(ctx context.Context, rawURL string) (*gofeed.Feed, error)
}

// Adapter discovers detail pages on one site and extracts entries from them.
type Adapter interface {
	// Discover returns at most limit unique detail URLs, newest first.
	// pages bounds how many listing pages are crawled where that applies.
	Discover(ctx context.Context, limit, pages int) ([]string, error)
	// Extract builds an entry from a detail page. Only fetch failures are
	// errors; fields the page lacks are left empty.
	Extract(ctx context.Context, rawURL string) (model.Entry, error)
}

// Site is a registered adapter and its display name.
type Site struct {
	Key     string
	Name    string
	Adapter Adapter
}

// Registry resolves site keys to adapters. It is built once and not mutated.
type Registry struct {
	sites   map[string]Site
	order   []string
	aliases map[string]string
}

// NewRegistry registers sites in the given order.
func NewRegistry(sites ...Site) *Registry {
	r := &Registry{
		sites:   make(map[string]Site, len(sites)),
		aliases: map[string]string{},
	}
	for _, s := range sites {
		r.sites[s.Key] = s
		r.order = append(r.order, s.Key)
	}
	return r
}

// Default returns the registry of every supported site.
func Default(f PageFetcher) *Registry {
	r := NewRegistry(
		Site{Key: "fanatics", Name: "SweepstakesFanatics", Adapter: NewFanatics(f, FanaticsBase)},
		Site{Key: "freebieshark", Name: "FreebieShark", Adapter: NewFreebieShark(f, FreebieSharkBase)},
		Site{Key: "stoday", Name: "SweepstakesToday", Adapter: NewSweepstakesToday(f, SweepstakesTodayBase)},
	)
	r.aliases = map[string]string{"sf": "fanatics", "fs": "freebieshark", "st": "stoday"}
	return r
}

// Keys returns the canonical site keys in registration order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.order...)
}

// Lookup returns the site registered under key or one of its aliases.
func (r *Registry) Lookup(key string) (Site, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if canonical, ok := r.aliases[key]; ok {
		key = canonical
	}
	s, ok := r.sites[key]
	if !ok {
		return Site{}, fmt.Errorf("%w %q, use one of: %s, all", ErrUnknownSite, key, strings.Join(r.order, ", "))
	}
	return s, nil
}

// Resolve expands a site selection: "all" (or "both") yields every site in
// registration order, anything else must name a single site.
func (r *Registry) Resolve(selection string) ([]Site, error) {
	switch strings.ToLower(strings.TrimSpace(selection)) {
	case "all", "both":
		out := make([]Site, 0, len(r.order))
		for _, k := range r.order {
			out = append(out, r.sites[k])
		}
		return out, nil
	}
	s, err := r.Lookup(selection)
	if err != nil {
		return nil, err
	}
	return []Site{s}, nil
}

func newEntry(site, rawURL string) model.Entry {
	return model.Entry{
		ID:     model.EntryID(rawURL),
		Site:   site,
		Source: rawURL,
		Title:  defaultTitle,
	}
}

// urlSet collects unique URLs up to a limit, preserving insertion order.
type urlSet struct {
	limit int
	seen  map[string]bool
	urls  []string
}

func newURLSet(limit int) *urlSet {
	return &urlSet{limit: limit, seen: map[string]bool{}}
}

// add records u and reports whether the set is full.
func (s *urlSet) add(u string) bool {
	if u != "" && !s.seen[u] && len(s.urls) < s.limit {
		s.seen[u] = true
		s.urls = append(s.urls, u)
	}
	return s.full()
}

func (s *urlSet) full() bool {
	return len(s.urls) >= s.limit
}

func mustParse(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("invalid base url %q: %v", raw, err))
	}
	return u
}

// contentScope narrows a document to its article body. It falls back to
// the whole document and reports false when no selector matched.
func contentScope(doc *goquery.Document, selectors ...string) (*goquery.Selection, bool) {
	for _, s := range selectors {
		if sel := doc.Find(s).First(); sel.Length() > 0 {
			return sel, true
		}
	}
	return doc.Selection, false
}

// page resolves an absolute path against the site root.
func page(base *url.URL, path string) string {
	return base.ResolveReference(&url.URL{Path: path}).String()
}
