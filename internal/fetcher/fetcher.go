// Package fetcher downloads listing pages and feeds the way a browser would:
// randomized headers, polite jitter, retries on transient failures and a
// Cloudflare-bypass retry when a site answers 403.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
)

// maxBodySize caps how much of a response body is read; the rest is dropped.
const maxBodySize = 5 * 1024 * 1024

// UserAgents is the read-only pool request headers are drawn from.
var UserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
}

// StatusError reports a non-2xx response that survived all retries.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.Code, e.URL)
}

// Options tunes the fetcher. Zero values are replaced by DefaultOptions.
type Options struct {
	Timeout      time.Duration
	RetryCount   int
	RetryWait    time.Duration
	MaxRetryWait time.Duration
	// JitterMin and JitterMax bound the pause taken before every fetch.
	JitterMin time.Duration
	JitterMax time.Duration
	// Fallback is the transport used to retry a 403. Nil selects the
	// Cloudflare-bypass transport.
	Fallback http.RoundTripper
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		Timeout:      25 * time.Second,
		RetryCount:   3,
		RetryWait:    800 * time.Millisecond,
		MaxRetryWait: 5 * time.Second,
		JitterMin:    350 * time.Millisecond,
		JitterMax:    time.Second,
	}
}

// Fetcher retrieves HTML documents and syndication feeds.
type Fetcher struct {
	client   *resty.Client
	fallback *resty.Client
	opts     Options
	log      *slog.Logger
}

// New creates a Fetcher.
func New(opts Options, log *slog.Logger) *Fetcher {
	def := DefaultOptions()
	if opts.Timeout == 0 {
		opts.Timeout = def.Timeout
	}
	if opts.RetryWait == 0 {
		opts.RetryWait = def.RetryWait
	}
	if opts.MaxRetryWait == 0 {
		opts.MaxRetryWait = def.MaxRetryWait
	}

	fallback := opts.Fallback
	if fallback == nil {
		fallback = cloudflarebp.AddCloudFlareByPass(newHTTPTransport())
	}

	return &Fetcher{
		client:   newClient(opts, newHTTPTransport()),
		fallback: newClient(opts, fallback),
		opts:     opts,
		log:      log,
	}
}

func newClient(opts Options, transport http.RoundTripper) *resty.Client {
	return resty.New().
		SetTransport(limitBody(transport, maxBodySize)).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.MaxRetryWait).
		AddRetryCondition(retryable)
}

func retryable(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	switch resp.StatusCode() {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Document fetches rawURL and parses it as HTML.
func (f *Fetcher) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if u, err := url.Parse(rawURL); err == nil {
		doc.Url = u
	}
	return doc, nil
}

// Feed fetches rawURL and parses it as an RSS or Atom feed.
func (f *Fetcher) Feed(ctx context.Context, rawURL string) (*gofeed.Feed, error) {
	body, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := f.pause(ctx); err != nil {
		return nil, err
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeaders(browserHeaders()).
		Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}

	if resp.StatusCode() == http.StatusForbidden {
		f.log.Debug("blocked, retrying through fallback transport", "url", rawURL)
		resp, err = f.fallback.R().
			SetContext(ctx).
			SetHeaders(browserHeaders()).
			Get(rawURL)
		if err != nil {
			return nil, fmt.Errorf("http get (fallback): %w", err)
		}
	}

	f.log.Debug("fetched", "url", rawURL, "status", resp.StatusCode(), "attempts", resp.Request.Attempt)

	if !resp.IsSuccess() {
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode()}
	}

	return resp.Body(), nil
}

type limitedBody struct {
	io.Reader
	io.Closer
}

type limitTransport struct {
	next  http.RoundTripper
	limit int64
}

// limitBody wraps next so no response body yields more than limit bytes.
func limitBody(next http.RoundTripper, limit int64) http.RoundTripper {
	return limitTransport{next: next, limit: limit}
}

func (t limitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	resp.Body = limitedBody{Reader: io.LimitReader(resp.Body, t.limit), Closer: resp.Body}
	return resp, nil
}

func (f *Fetcher) pause(ctx context.Context) error {
	d := f.opts.JitterMin
	if span := f.opts.JitterMax - f.opts.JitterMin; span > 0 {
		d += rand.N(span)
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func browserHeaders() map[string]string {
	return map[string]string{
		"User-Agent":                UserAgents[rand.IntN(len(UserAgents))],
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Cache-Control":             "no-cache",
		"Pragma":                    "no-cache",
		"Upgrade-Insecure-Requests": "1",
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
}
